package types

type RunMode string

const (
	// ModeLocal runs the API server, the temporal worker and the simulated processors in one process
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running just the API server
	ModeAPI RunMode = "api"
	// ModeTemporalWorker is the mode for running just the temporal worker
	ModeTemporalWorker RunMode = "temporal_worker"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)

// PublishDestination selects the transport the event publisher writes to
type PublishDestination string

const (
	PublishToMemory PublishDestination = "memory"
	PublishToKafka  PublishDestination = "kafka"
)
