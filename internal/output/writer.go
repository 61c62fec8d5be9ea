// Package output serializes comparison results for files and stdout.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format represents output format types.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Writer serializes a comparison result.
type Writer interface {
	// Write outputs a single result.
	Write(data any) error

	// Close flushes any buffered output.
	Close() error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON, "":
		return &jsonWriter{w: bufio.NewWriter(w)}, nil
	case FormatYAML:
		return &yamlWriter{w: bufio.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type jsonWriter struct {
	w *bufio.Writer
}

func (jw *jsonWriter) Write(data any) error {
	enc := json.NewEncoder(jw.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (jw *jsonWriter) Close() error {
	return jw.w.Flush()
}

type yamlWriter struct {
	w *bufio.Writer
}

func (yw *yamlWriter) Write(data any) error {
	enc := yaml.NewEncoder(yw.w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (yw *yamlWriter) Close() error {
	return yw.w.Flush()
}
