// Package vss is the external VSS JSON metadata loader: it parses a
// vehicle signal tree in VSS shape and calls the store's registration
// API for each leaf, the same external-loader boundary the
// specification draws around schema discovery.
//
// Grounded on the teacher's embedded-schema validation pattern: a
// go:embed'd schema file plus a custom jsonschema.Loaders scheme so the
// schema compiles without touching the filesystem at runtime.
package vss

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

var treeSchema *jsonschema.Schema

func compiledTreeSchema() (*jsonschema.Schema, error) {
	if treeSchema != nil {
		return treeSchema, nil
	}
	s, err := jsonschema.Compile("embedFS://schemas/vss-tree.schema.json")
	if err != nil {
		return nil, fmt.Errorf("vss: compiling metadata schema: %w", err)
	}
	treeSchema = s
	return treeSchema, nil
}
