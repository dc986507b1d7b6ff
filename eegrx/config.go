package eegrx

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadConfig reads a JSON config over the defaults, so files only need the
// fields they change.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
