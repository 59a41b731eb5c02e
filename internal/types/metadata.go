package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata represents a JSONB field for storing key-value pairs
type Metadata map[string]string

// Scan implements the sql.Scanner interface for Metadata
func (m *Metadata) Scan(value interface{}) error {
	result := make(Metadata)
	if err := scanJSONB(value, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// Value implements the driver.Valuer interface for Metadata
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(Metadata))
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for RoutingContext
func (r *RoutingContext) Scan(value interface{}) error {
	result := RoutingContext{}
	if err := scanJSONB(value, &result); err != nil {
		return err
	}
	*r = result
	return nil
}

// Value implements the driver.Valuer interface for RoutingContext
func (r RoutingContext) Value() (driver.Value, error) {
	if r == nil {
		return json.Marshal(RoutingContext{})
	}
	return json.Marshal(r)
}

// RetryTraceData records where a scheduled retry came from
type RetryTraceData struct {
	SourcePaymentID string            `json:"source_payment_id"`
	SourceCode      PaymentStatusCode `json:"source_code"`
	SourceBucket    AgingBucket       `json:"source_bucket"`
	TotalRetryCnt   int               `json:"total_retry_cnt"`
}

// Scan implements the sql.Scanner interface for RetryTraceData
func (t *RetryTraceData) Scan(value interface{}) error {
	return scanJSONB(value, t)
}

// Value implements the driver.Valuer interface for RetryTraceData
func (t RetryTraceData) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func scanJSONB(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	return json.Unmarshal(bytes, dest)
}
