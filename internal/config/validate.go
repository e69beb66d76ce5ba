package config

import (
	"encoding/json"
	"fmt"
)

// Validate checks raw against the embedded configuration schema. It is
// split out from Load so callers (and tests) can validate a candidate
// config document without decoding it.
func Validate(raw []byte) error {
	sch, err := compiledConfigSchema()
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("config: invalid JSON: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config: schema validation failed: %w", err)
	}
	return nil
}
