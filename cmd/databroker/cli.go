package main

import "flag"

var (
	flagAddress          string
	flagPort             int
	flagMetadata         string
	flagJWTPublicKeyFile string
	flagDummyMetadata    bool
	flagConfigFile       string
	flagGops             bool
	flagLogLevel         string
	flagLogDateTime      bool
)

// cliInit registers and parses the command-line flags from spec.md §6:
// --address, --port, --metadata, --jwt-public-key, --dummy-metadata,
// plus the --config/--gops/--loglevel ambient flags the teacher's
// cmd/cc-backend exposes for every one of its entrypoints.
func cliInit() {
	flag.StringVar(&flagAddress, "address", "", "Address to listen on, e.g. 127.0.0.1 (default \"127.0.0.1\", or KUKSA_DATA_BROKER_ADDR when set; the flag takes precedence)")
	flag.IntVar(&flagPort, "port", 0, "Port to listen on (default 55555, or KUKSA_DATA_BROKER_PORT when set; the flag takes precedence)")
	flag.StringVar(&flagMetadata, "metadata", "", "Comma-separated list of VSS metadata `FILE`s to load at startup")
	flag.StringVar(&flagJWTPublicKeyFile, "jwt-public-key", "", "Path to a base64-encoded ed25519 public key `FILE` used to validate bearer tokens")
	flag.BoolVar(&flagDummyMetadata, "dummy-metadata", false, "Register a small built-in signal tree instead of loading a metadata file")
	flag.StringVar(&flagConfigFile, "config", "", "Path to a JSON configuration `FILE` (see internal/config for the schema)")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.StringVar(&flagLogLevel, "loglevel", "", "Sets the logging level: `[debug, info, warn, err, fatal]`")
	flag.BoolVar(&flagLogDateTime, "logdate", false, "Add date and time to log messages")
	flag.Parse()
}
