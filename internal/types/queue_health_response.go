package types

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
)

// QueueHealthResponse queue health response
type QueueHealthResponse struct {

	// healthy
	// Required: true
	Healthy *bool `json:"healthy"`

	// error
	Error string `json:"error,omitempty"`

	// duration ms
	// Required: true
	DurationMs *int64 `json:"duration_ms"`

	// timestamp
	// Required: true
	// Format: date-time
	Timestamp *strfmt.DateTime `json:"timestamp"`
}

// Validate validates this queue health response
func (m *QueueHealthResponse) Validate(formats strfmt.Registry) error {
	if m.Healthy == nil {
		return fmt.Errorf("healthy in body is required")
	}

	if m.DurationMs == nil {
		return fmt.Errorf("duration_ms in body is required")
	}
	if swag.Int64Value(m.DurationMs) < 0 {
		return fmt.Errorf("duration_ms in body should be greater than or equal to 0")
	}

	if m.Timestamp == nil {
		return fmt.Errorf("timestamp in body is required")
	}
	if !formats.Validates("date-time", m.Timestamp.String()) {
		return fmt.Errorf("timestamp in body must be of type date-time: %q", m.Timestamp.String())
	}

	return nil
}

// MarshalBinary interface implementation
func (m *QueueHealthResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

// UnmarshalBinary interface implementation
func (m *QueueHealthResponse) UnmarshalBinary(b []byte) error {
	var res QueueHealthResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
