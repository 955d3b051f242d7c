// Package output writes accepted items to files and databases.
package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/wikisift/internal/model"
)

// JSONLWriter writes one JSON object per line.
type JSONLWriter struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONLWriter creates (or truncates) path.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{file: f, buf: buf, enc: enc}, nil
}

// Write appends item and flushes so partial runs leave usable output.
func (w *JSONLWriter) Write(ctx context.Context, item *model.Item) error {
	if err := w.enc.Encode(item); err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (w *JSONLWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return w.file.Close()
}

// ReadItems reads items written by JSONLWriter.
func ReadItems(r io.Reader) ([]model.Item, error) {
	var items []model.Item
	dec := json.NewDecoder(r)
	for {
		var item model.Item
		err := dec.Decode(&item)
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode item %d: %w", len(items)+1, err)
		}
		items = append(items, item)
	}
}
