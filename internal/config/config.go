package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Config is the broker's own runtime configuration: network address,
// where to load VSS metadata from, authorization settings, and a
// couple of tuning knobs the spec leaves as implementation details
// (subscriber queue depth, housekeeping cadence).
type Config struct {
	Address string `json:"address"`
	Port    int    `json:"port"`

	MetadataFiles []string `json:"metadataFiles"`
	DummyMetadata bool     `json:"dummyMetadata"`

	DisableAuthentication bool   `json:"disableAuthentication"`
	JWTPublicKeyFile      string `json:"jwtPublicKeyFile"`

	// SubscriberQueueDepth is the bounded capacity of every subscriber's
	// channel. The spec calls for "depth ≈ 10"; this is exposed so an
	// operator can raise it for bursty providers without a rebuild.
	SubscriberQueueDepth int `json:"subscriberQueueDepth"`

	// HousekeepingInterval is the cadence of the subscription cleanup
	// sweep. The spec calls for once per second.
	HousekeepingInterval string `json:"housekeepingInterval"`

	LogLevel    string `json:"logLevel"`
	LogDateTime bool   `json:"logDateTime"`
}

// Default returns the configuration the broker falls back to when no
// config file is given, matching spec.md §6's default address and
// port.
func Default() Config {
	return Config{
		Address:              "127.0.0.1",
		Port:                 55555,
		SubscriberQueueDepth: 10,
		HousekeepingInterval: "1s",
		LogLevel:             "info",
	}
}

// Load reads and validates the JSON configuration file at path against
// the embedded schema, then decodes it over Default(), rejecting
// unknown fields the same way the teacher's config.Init does. A
// missing file is not an error; Default() is returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := Validate(raw); err != nil {
		return Config{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}
