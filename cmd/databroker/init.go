package main

import (
	"os"
	"strconv"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/config"
)

// dummyMetadataJSON is the three-node ABS example from spec.md §9,
// registered when --dummy-metadata is passed instead of a metadata
// file, so the broker can be started without any external input.
const dummyMetadataJSON = `{
	"Vehicle": {
		"type": "branch",
		"children": {
			"ADAS": {
				"type": "branch",
				"children": {
					"ABS": {
						"type": "branch",
						"children": {
							"Error": {
								"type": "sensor",
								"datatype": "bool",
								"description": "Indicates if ABS incurred an error condition."
							},
							"IsActive": {
								"type": "sensor",
								"datatype": "bool",
								"description": "Indicates if ABS is currently regulating brake pressure."
							},
							"IsEngaged": {
								"type": "actuator",
								"datatype": "bool",
								"description": "Indicates if ABS is enabled."
							}
						}
					}
				}
			}
		}
	}
}`

// resolveConfig layers the optional config file, environment variables,
// and command-line flags, in that order of increasing precedence, the
// same layering the teacher's main.go applies to its own ProgramConfig.
func resolveConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfigFile)
	if err != nil {
		return config.Config{}, err
	}

	if v := os.Getenv("KUKSA_DATA_BROKER_ADDR"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("KUKSA_DATA_BROKER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("KUKSA_DATA_BROKER_METADATA_FILE"); v != "" {
		cfg.MetadataFiles = append(cfg.MetadataFiles, v)
	}

	if flagAddress != "" {
		cfg.Address = flagAddress
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if flagMetadata != "" {
		cfg.MetadataFiles = append(cfg.MetadataFiles, splitCSV(flagMetadata)...)
	}
	if flagJWTPublicKeyFile != "" {
		cfg.JWTPublicKeyFile = flagJWTPublicKeyFile
	}
	if flagDummyMetadata {
		cfg.DummyMetadata = true
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogDateTime {
		cfg.LogDateTime = true
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
