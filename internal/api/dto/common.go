package dto

import "time"

// ReferenceDateRequest is the optional body of lifecycle and cron calls.
// Operations run against the server clock when ReferenceDate is empty.
type ReferenceDateRequest struct {
	ReferenceDate *time.Time `json:"reference_date,omitempty"`
}

// Resolve returns the reference date or now, in UTC
func (r ReferenceDateRequest) Resolve(now time.Time) time.Time {
	if r.ReferenceDate != nil && !r.ReferenceDate.IsZero() {
		return r.ReferenceDate.UTC()
	}
	return now.UTC()
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
}
