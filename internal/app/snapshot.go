package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/sheetcalc/internal/coord"
	"github.com/specialistvlad/sheetcalc/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Snapshot encodings understood by DecodeSnapshot.
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

// StdinPath is the snapshot path that reads from standard input.
const StdinPath = "-"

// LoadSnapshot reads a snapshot from a .json, .yaml or .yml file, or from
// stdin when path is StdinPath. Standard input is parsed as YAML, which also
// accepts JSON.
func LoadSnapshot(ctx context.Context, path string, stdin io.Reader) (map[string]string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading snapshot.", "path", path)

	if path == StdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("error reading snapshot from stdin: %w", err)
		}
		return DecodeSnapshot(data, EncodingYAML)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("snapshot path is a directory: %s", path)
	}

	var encoding string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		encoding = EncodingJSON
	case ".yaml", ".yml":
		encoding = EncodingYAML
	default:
		return nil, fmt.Errorf("unsupported snapshot file type %q: expected .json, .yaml or .yml", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot %s: %w", path, err)
	}

	snapshot, err := DecodeSnapshot(data, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot '%s': %w", path, err)
	}
	logger.Debug("Snapshot loaded.", "path", path, "cells", len(snapshot))
	return snapshot, nil
}

// DecodeSnapshot parses a mapping of coordinate to raw cell text. Numbers and
// booleans are kept as they were written and null becomes an empty cell.
func DecodeSnapshot(data []byte, encoding string) (map[string]string, error) {
	var (
		snapshot map[string]string
		err      error
	)
	switch encoding {
	case EncodingJSON:
		snapshot, err = decodeJSON(data)
	case EncodingYAML:
		snapshot, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported snapshot encoding %q", encoding)
	}
	if err != nil {
		return nil, err
	}

	for key := range snapshot {
		if err := coord.ValidateKey(key); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

func decodeJSON(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON snapshot: %w", err)
	}

	snapshot := make(map[string]string, len(raw))
	for key, v := range raw {
		switch tv := v.(type) {
		case string:
			snapshot[key] = tv
		case json.Number:
			snapshot[key] = tv.String()
		case bool:
			snapshot[key] = strconv.FormatBool(tv)
		case nil:
			snapshot[key] = ""
		default:
			return nil, fmt.Errorf("cell %q: value must be a string, number, boolean or null", key)
		}
	}
	return snapshot, nil
}

func decodeYAML(data []byte) (map[string]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML snapshot: %w", err)
	}

	snapshot := make(map[string]string)
	// An empty document is an empty snapshot.
	if len(doc.Content) == 0 {
		return snapshot, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("snapshot must be a mapping of coordinate to cell text (line %d)", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if _, dup := snapshot[key.Value]; dup {
			return nil, fmt.Errorf("duplicate cell %q (line %d)", key.Value, key.Line)
		}
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("cell %q: value must be a scalar (line %d)", key.Value, val.Line)
		}
		if val.Tag == "!!null" {
			snapshot[key.Value] = ""
			continue
		}
		snapshot[key.Value] = val.Value
	}
	return snapshot, nil
}
