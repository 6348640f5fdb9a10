package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"montage/internal/record"
	"montage/internal/services"
)

type fileReader struct {
	path   string
	decode func([]byte) ([]record.Record, error)
}

func (f fileReader) Records(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "load", "read records", f.path, err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "load", "read records", f.path, err)
	}
	records, err := f.decode(data)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "load", "decode records", f.path, err)
	}
	return records, nil
}

func (fileReader) Close() error { return nil }

func decodeJSON(data []byte) ([]record.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var store map[string]map[string]any
	if err := dec.Decode(&store); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse json: trailing data after record object")
	}
	return record.FromStore(store)
}

// decodeYAML walks the node tree so numeric scalars keep their literal text.
func decodeYAML(data []byte) ([]record.Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse yaml: line %d: expected a mapping of record key to fields", root.Line)
	}
	records := make([]record.Record, 0, len(root.Content)/2)
	seen := make(map[string]struct{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := strings.TrimSpace(root.Content[i].Value)
		if key == "" {
			return nil, fmt.Errorf("parse yaml: line %d: record key is empty", root.Content[i].Line)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("parse yaml: line %d: duplicate record %q", root.Content[i].Line, key)
		}
		seen[key] = struct{}{}
		fields, err := yamlFields(root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}
		records = append(records, record.Record{Key: key, Fields: fields})
	}
	return record.Canonicalize(records), nil
}

func yamlFields(node *yaml.Node) (map[string]record.Value, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a field mapping", node.Line)
	}
	fields := make(map[string]record.Value, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		v, err := yamlValue(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields[name] = v
	}
	return fields, nil
}

func yamlValue(node *yaml.Node) (record.Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!int", "!!float":
			if v, err := record.NumberLiteral(node.Value); err == nil {
				return v, nil
			}
		case "!!timestamp":
			return record.String(node.Value), nil
		case "!!null":
			return record.Value{}, fmt.Errorf("line %d: %w: null", node.Line, record.ErrUnsupportedValue)
		}
		var raw any
		if err := node.Decode(&raw); err != nil {
			return record.Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return record.FromAny(raw)
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := yamlValue(child)
			if err != nil {
				return record.Value{}, err
			}
			if item.Kind() == record.KindList {
				return record.Value{}, fmt.Errorf("line %d: %w: nested list", child.Line, record.ErrUnsupportedValue)
			}
			items = append(items, item.Text())
		}
		return record.List(items...), nil
	default:
		return record.Value{}, fmt.Errorf("line %d: %w: mapping", node.Line, record.ErrUnsupportedValue)
	}
}
