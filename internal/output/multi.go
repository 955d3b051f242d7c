package output

import (
	"context"
	"errors"

	"github.com/ppiankov/wikisift/internal/model"
)

// Sink receives accepted items.
type Sink interface {
	Write(ctx context.Context, item *model.Item) error
	Close() error
}

// MultiSink fans items out to several sinks.
type MultiSink []Sink

// Write writes item to every sink, stopping at the first error.
func (m MultiSink) Write(ctx context.Context, item *model.Item) error {
	for _, s := range m {
		if err := s.Write(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
