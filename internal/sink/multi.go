package sink

import (
	"context"
	"errors"
)

// Multi fans one event out to several sinks. Every sink sees every
// event even when an earlier one fails.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
