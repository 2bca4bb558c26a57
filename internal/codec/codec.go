// Package codec holds the JSON codec used for request and response bodies.
// sonic is used on amd64/arm64 and encoding/json everywhere else.
package codec

import (
	"bytes"
	stdjson "encoding/json"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v any) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v any) error

	usingSonic bool
)

func init() {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		Marshal = sonic.ConfigStd.Marshal
		Unmarshal = sonic.ConfigStd.Unmarshal
		usingSonic = true
		return
	}
	Marshal = stdjson.Marshal
	Unmarshal = stdjson.Unmarshal
}

// IsUsingSonic reports whether sonic backs Marshal and Unmarshal.
func IsUsingSonic() bool { return usingSonic }

// Valid reports whether data is a single well-formed JSON value.
func Valid(data []byte) bool {
	return stdjson.Valid(bytes.TrimSpace(data))
}

// Pretty re-indents raw JSON with two spaces, keeping object keys in source order. Numbers keep
// their source spelling, so 1.0 stays 1.0 and 1e2 stays 1e2. Empty input renders as "null".
func Pretty(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
