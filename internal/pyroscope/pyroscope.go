package pyroscope

import (
	"context"
	"strings"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"
)

type Service struct {
	cfg      *config.Configuration
	logger   *logger.Logger
	profiler *pyroscope.Profiler
}

var profileTypesByName = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// Module provides fx options for Pyroscope
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewPyroscopeService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks registers lifecycle hooks for Pyroscope
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.Start()
		},
		OnStop: func(ctx context.Context) error {
			return svc.Stop()
		},
	})
}

// NewPyroscopeService creates a new Pyroscope service
func NewPyroscopeService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

// Start begins continuous profiling when enabled
func (s *Service) Start() error {
	if !s.cfg.Pyroscope.Enabled {
		s.logger.Info("Pyroscope profiling is disabled")
		return nil
	}

	profileTypes := s.profileTypes()
	pyroscopeConfig := pyroscope.Config{
		ApplicationName: s.cfg.Pyroscope.ApplicationName,
		ServerAddress:   s.cfg.Pyroscope.ServerAddress,
		ProfileTypes:    profileTypes,
		SampleRate:      s.cfg.Pyroscope.SampleRate,
		DisableGCRuns:   s.cfg.Pyroscope.DisableGCRuns,
		Logger:          s,
		Tags: map[string]string{
			"mode": string(s.cfg.Deployment.Mode),
		},
	}

	if s.cfg.Pyroscope.BasicAuthUser != "" {
		pyroscopeConfig.BasicAuthUser = s.cfg.Pyroscope.BasicAuthUser
		pyroscopeConfig.BasicAuthPassword = s.cfg.Pyroscope.BasicAuthPass
	}

	profiler, err := pyroscope.Start(pyroscopeConfig)
	if err != nil {
		s.logger.Errorw("Failed to initialize Pyroscope", "error", err)
		return err
	}
	s.logger.Infow("Pyroscope profiling initialized successfully",
		"application_name", s.cfg.Pyroscope.ApplicationName,
		"server_address", s.cfg.Pyroscope.ServerAddress,
		"sample_rate", s.cfg.Pyroscope.SampleRate,
	)

	s.profiler = profiler
	return nil
}

// Stop flushes and stops the profiler if it was started
func (s *Service) Stop() error {
	if s.profiler == nil {
		return nil
	}
	s.logger.Info("Stopping Pyroscope profiling")
	return s.profiler.Stop()
}

// IsEnabled returns whether Pyroscope profiling is enabled
func (s *Service) IsEnabled() bool {
	return s.cfg.Pyroscope.Enabled
}

// TagWrapper adds profiling labels to a function execution
func (s *Service) TagWrapper(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if !s.IsEnabled() {
		fn(ctx)
		return
	}

	labelPairs := make([]string, 0, len(labels)*2)
	for key, value := range labels {
		labelPairs = append(labelPairs, key, value)
	}

	pyroscope.TagWrapper(ctx, pyroscope.Labels(labelPairs...), fn)
}

// Debugf is silenced, pyroscope is chatty at debug level
func (s *Service) Debugf(format string, args ...interface{}) {}

func (s *Service) Infof(format string, args ...interface{}) {
	s.logger.Infof("[Pyroscope] "+format, args...)
}

func (s *Service) Errorf(format string, args ...interface{}) {
	s.logger.Errorf("[Pyroscope] "+format, args...)
}

func (s *Service) profileTypes() []pyroscope.ProfileType {
	if len(s.cfg.Pyroscope.ProfileTypes) == 0 {
		return []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileGoroutines,
		}
	}

	types := make([]pyroscope.ProfileType, 0, len(s.cfg.Pyroscope.ProfileTypes))
	for _, name := range s.cfg.Pyroscope.ProfileTypes {
		pt, ok := profileTypesByName[strings.ToLower(name)]
		if !ok {
			s.logger.Warnw("Unknown profile type", "type", name)
			continue
		}
		types = append(types, pt)
	}
	return types
}
