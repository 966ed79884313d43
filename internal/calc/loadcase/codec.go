// Package loadcase reads and writes load-case snapshots and weight tables.
package loadcase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json", case-insensitively. Empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	}
	return "", calcerr.New(calcerr.InvalidInput, "snapshot", "unknown snapshot format %q", s)
}

// FormatOf guesses the format from a file name.
func FormatOf(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return YAML
}

func (f Format) ContentType() string {
	if f == JSON {
		return "application/json"
	}
	return "application/yaml"
}

// Marshal writes a snapshot document. Unmarshal of the result gives back an
// identical load case.
func Marshal(lc vessel.LoadCase, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return json.MarshalIndent(lc, "", "  ")
	case YAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(lc); err != nil {
			return nil, fmt.Errorf("encoding snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, calcerr.New(calcerr.InvalidInput, "snapshot", "unknown snapshot format %q", f)
}

// Unmarshal reads a snapshot document. Unknown fields are rejected so that a
// misspelt key does not silently fall back to a default.
func Unmarshal(data []byte, f Format) (vessel.LoadCase, error) {
	var lc vessel.LoadCase
	var err error
	switch f {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&lc)
	case YAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&lc)
	default:
		return lc, calcerr.New(calcerr.InvalidInput, "snapshot", "unknown snapshot format %q", f)
	}
	if err != nil {
		return vessel.LoadCase{}, calcerr.New(calcerr.InvalidInput, "snapshot", "%v", err)
	}
	return lc, nil
}
