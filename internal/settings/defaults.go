package settings

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed default_settings.json
var defaultJSON []byte

// DefaultJSON returns the bundled settings.json template
func DefaultJSON() []byte {
	out := make([]byte, len(defaultJSON))
	copy(out, defaultJSON)
	return out
}

// Default returns the bundled settings
func Default() (*Settings, error) {
	s := &Settings{}
	if err := json.Unmarshal(defaultJSON, s); err != nil {
		return nil, fmt.Errorf("bundled settings are invalid: %w", err)
	}
	return s, nil
}
