// Package config parses and validates the broker's own JSON
// configuration file: network address, metadata sources, subscriber
// queue depth, and authorization settings.
//
// Grounded on the teacher's config.Init pattern — an
// encoding/json.Decoder with DisallowUnknownFields, preceded by
// santhosh-tekuri/jsonschema/v5 validation against an embedded schema —
// adapted from the teacher's cluster/UI-defaults config shape to the
// broker's own small set of runtime knobs.
package config

import (
	"embed"
	"fmt"
	"io"
	"net/url"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*
var schemaFiles embed.FS

func loadEmbedded(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(u.Path)
}

func init() {
	jsonschema.Loaders["embedFS"] = loadEmbedded
}

var configSchema *jsonschema.Schema

func compiledConfigSchema() (*jsonschema.Schema, error) {
	if configSchema != nil {
		return configSchema, nil
	}
	s, err := jsonschema.Compile("embedFS://schemas/config.schema.json")
	if err != nil {
		return nil, fmt.Errorf("config: compiling config schema: %w", err)
	}
	configSchema = s
	return configSchema, nil
}
