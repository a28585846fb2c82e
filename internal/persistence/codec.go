package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"

	"analyticsadmin/internal/analytics"
	"analyticsadmin/internal/errs"
)

const classKey = "__class"

// Codec converts driver options to and from the JSON stored in the options column
type Codec struct {
	registry *analytics.Registry
}

func NewCodec(registry *analytics.Registry) *Codec {
	return &Codec{registry: registry}
}

// Encode serializes options tagged with their class. File references are
// written as proxy objects by analytics.File.
func (c *Codec) Encode(options analytics.Options) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s options: %w", options.DriverName(), err)
	}

	var fields map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil {
		return "", fmt.Errorf("failed to encode %s options: %w", options.DriverName(), err)
	}
	fields[classKey] = options.Class()

	encoded, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s options: %w", options.DriverName(), err)
	}
	return string(encoded), nil
}

// Decode restores options by their class. Rows written before options were
// tagged hold the submitted form values and are decoded by the driver named
// in driverColumn.
func (c *Codec) Decode(data, driverColumn string) (analytics.Options, error) {
	var probe map[string]any
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return nil, fmt.Errorf("%w: failed to decode options: %v", errs.ErrInvalidOptions, err)
	}

	if class, ok := probe[classKey].(string); ok && class != "" {
		driver, err := c.registry.ForClass(class)
		if err != nil {
			return nil, err
		}
		return driver.UnmarshalOptions([]byte(data))
	}

	driver, err := c.registry.Load(driverColumn)
	if err != nil {
		return nil, err
	}
	return driver.DecodeOptions(probe)
}
