package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carbonaccess/plategate/internal/plategate/store"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

const DayLayout = "2006-01-02"

// ReportFilter bounds a report. Both ends are inclusive; nil is unbounded.
type ReportFilter struct {
	From *time.Time
	To   *time.Time
}

type ReportService struct {
	eventStore store.AccessEventStore
}

func NewReportService(es store.AccessEventStore) *ReportService {
	return &ReportService{eventStore: es}
}

// AccessEvents lists access events in the filter range, newest first.
func (s *ReportService) AccessEvents(ctx context.Context, f ReportFilter) ([]types.AccessReportRow, error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("report range: from %s is after to %s",
			f.From.Format(time.RFC3339), f.To.Format(time.RFC3339))
	}
	return s.eventStore.ListEvents(ctx, store.EventFilter{From: f.From, To: f.To})
}

// ParseDayRange turns YYYY-MM-DD bounds into an inclusive range in loc:
// from the first instant of the from day to the last millisecond of the to
// day. Empty bounds stay open.
func ParseDayRange(from, to string, loc *time.Location) (ReportFilter, error) {
	if loc == nil {
		loc = time.UTC
	}

	var f ReportFilter
	if from = strings.TrimSpace(from); from != "" {
		d, err := time.ParseInLocation(DayLayout, from, loc)
		if err != nil {
			return ReportFilter{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		d = d.UTC()
		f.From = &d
	}
	if to = strings.TrimSpace(to); to != "" {
		d, err := time.ParseInLocation(DayLayout, to, loc)
		if err != nil {
			return ReportFilter{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		// AddDate keeps DST days correct; the range ends 1ms before the
		// next local midnight.
		end := d.AddDate(0, 0, 1).Add(-time.Millisecond).UTC()
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return ReportFilter{}, fmt.Errorf("from %s is after to %s", from, to)
	}
	return f, nil
}
