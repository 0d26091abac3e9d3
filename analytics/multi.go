package analytics

import (
	"context"
	"errors"

	"github.com/hupe1980/folio/core"
)

// Multi fans an event out to several sinks and joins their errors.
type Multi []core.AnalyticsSink

var _ core.AnalyticsSink = Multi(nil)

// Write implements core.AnalyticsSink. Every sink is attempted.
func (m Multi) Write(ctx context.Context, ev core.AnalyticsEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Write(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
