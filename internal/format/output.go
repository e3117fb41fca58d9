// Package format renders command results for scripts: strict JSON by default, EDN on request.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type Format string

const (
	JSON Format = "json"
	EDN  Format = "edn"
)

// Parse accepts "json" (the default for an empty string) or "edn".
func Parse(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(JSON):
		return JSON, nil
	case string(EDN):
		return EDN, nil
	default:
		return "", fmt.Errorf("unknown format: %s (want json|edn)", s)
	}
}

// Envelope is the top-level shape of every successful command result.
type Envelope struct {
	Data any `json:"data"`
}

// Write renders v in format f followed by a newline.
func Write(w io.Writer, v any, f Format, pretty bool) error {
	switch f {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
