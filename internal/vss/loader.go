package vss

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// Node is one element of a VSS JSON metadata tree: a leaf (sensor,
// actuator, attribute) or a branch recursing via Children.
type Node struct {
	Type        string          `json:"type"`
	Datatype    string          `json:"datatype,omitempty"`
	Description string          `json:"description,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Default     json.RawMessage `json:"default,omitempty"`
	Children    map[string]Node `json:"children,omitempty"`
}

// Registrar is the subset of the store's API the loader needs; the
// entry store satisfies it directly.
type Registrar interface {
	Register(path string, dataType signal.DataType, changeType signal.ChangeType, entryType signal.EntryType, description string) (int32, error)
}

// Load validates data against the VSS tree schema and registers every
// leaf it describes against reg, returning the number of entries
// registered (existing paths re-registered idempotently still count).
func Load(data []byte, reg Registrar) (int, error) {
	schema, err := compiledTreeSchema()
	if err != nil {
		return 0, err
	}

	var generic interface{}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&generic); err != nil {
		return 0, fmt.Errorf("vss: decoding metadata: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return 0, fmt.Errorf("vss: metadata does not match VSS tree shape: %w", err)
	}

	var tree map[string]Node
	if err := json.Unmarshal(data, &tree); err != nil {
		return 0, fmt.Errorf("vss: decoding metadata: %w", err)
	}

	count := 0
	for name, node := range tree {
		n, err := registerNode(reg, name, node)
		if err != nil {
			return count, err
		}
		count += n
	}
	return count, nil
}

func registerNode(reg Registrar, path string, n Node) (int, error) {
	if n.Type == "branch" {
		count := 0
		for name, child := range n.Children {
			n, err := registerNode(reg, path+"."+name, child)
			if err != nil {
				return count, err
			}
			count += n
		}
		return count, nil
	}

	entryType, ok := entryTypeOf(n.Type)
	if !ok {
		return 0, fmt.Errorf("%w: %q at %s", ErrUnknownType, n.Type, path)
	}
	dataType, ok := signal.ParseDataType(n.Datatype)
	if !ok {
		return 0, fmt.Errorf("%w: %q at %s", ErrUnknownDataType, n.Datatype, path)
	}

	// VSS does not carry an explicit change-type facet; every loaded
	// leaf defaults to OnChange, matching the behaviour an unconfigured
	// signal sees from a provider that writes the same value repeatedly.
	if _, err := reg.Register(path, dataType, signal.OnChange, entryType, n.Description); err != nil {
		return 0, fmt.Errorf("vss: registering %s: %w", path, err)
	}
	return 1, nil
}

func entryTypeOf(vssType string) (signal.EntryType, bool) {
	switch vssType {
	case "sensor":
		return signal.Sensor, true
	case "actuator":
		return signal.Actuator, true
	case "attribute":
		return signal.Attribute, true
	default:
		return 0, false
	}
}
