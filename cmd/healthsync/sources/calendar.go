package sources

import (
	"context"
	"errors"
	"time"

	"github.com/lifepulse-app/lifepulse/cmd/healthsync/permission"
	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"go.uber.org/zap"
)

// CalendarAdapter fetches calendar events across all calendars of the user.
type CalendarAdapter struct {
	store       CalendarStore
	perms       *permission.Cache
	calendarIDs []string
	timeout     time.Duration
}

// NewCalendarAdapter wires a CalendarAdapter over the given store. An empty
// calendarIDs list means all calendars.
func NewCalendarAdapter(store CalendarStore, perms *permission.Cache, calendarIDs []string) *CalendarAdapter {
	return &CalendarAdapter{
		store:       store,
		perms:       perms,
		calendarIDs: calendarIDs,
		timeout:     DefaultFetchTimeout,
	}
}

func (a *CalendarAdapter) Name() string {
	return "calendar"
}

func (a *CalendarAdapter) Kinds() []datamodel.MetricKind {
	return []datamodel.MetricKind{datamodel.CalendarEvent}
}

func (a *CalendarAdapter) Fetch(ctx context.Context, kind datamodel.MetricKind, r datamodel.TimeRange) FetchResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if !a.perms.IsAuthorized(kind) {
		granted, err := a.store.RequestPermission(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return empty(kind, ReasonUnavailable, nil)
			}
			zap.S().Warnf("Calendar permission request failed: %s", err)
			return empty(kind, ReasonError, err)
		}
		if !granted {
			zap.S().Warnf("Calendar permission denied")
			return empty(kind, ReasonDenied, nil)
		}
		a.perms.MarkAuthorized(kind)
	}

	rows, err := a.store.ListEvents(ctx, a.calendarIDs, r)
	if err != nil {
		switch {
		case errors.Is(err, ErrPermissionDenied):
			return empty(kind, ReasonDenied, nil)
		case errors.Is(err, ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
			return empty(kind, ReasonUnavailable, nil)
		default:
			zap.S().Warnf("Listing calendar events failed: %s", err)
			return empty(kind, ReasonError, err)
		}
	}

	samples := make([]datamodel.Sample, 0, len(rows))
	for _, row := range rows {
		end := row.EndDate
		if end.Before(row.StartDate) || end.IsZero() {
			end = row.StartDate
		}
		samples = append(samples, datamodel.Sample{
			Kind:  kind,
			Start: row.StartDate,
			End:   end,
			Calendar: &datamodel.CalendarPayload{
				ID:       row.ID,
				Title:    row.Title,
				AllDay:   row.AllDay,
				Location: row.Location,
				Notes:    row.Notes,
			},
		})
	}
	return FetchResult{Kind: kind, Samples: samples, Reason: ReasonOK}
}
