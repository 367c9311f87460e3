package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/wrenfield/cadence/internal/timetable/domain"
	"github.com/wrenfield/cadence/pkg/observability"
)

// Publisher pushes a Schedule's assignments to a CalDAV server (Apple
// Calendar, Fastmail, Nextcloud, or any RFC 4791 implementation), one
// VEVENT object per assignment so later runs can update or remove
// individual sessions without touching the rest of the calendar.
type Publisher struct {
	baseURL      string
	username     string
	password     string
	calendarPath string
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewPublisher creates a CalDAV publisher against baseURL, authenticating
// with username/password (an app-specific password for providers like
// Apple Calendar that require one).
func NewPublisher(baseURL, username, password string, logger *slog.Logger, metrics observability.Metrics) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Publisher{
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
		metrics:  metrics,
	}
}

// WithCalendarPath pins publishing to a specific calendar collection
// instead of the server's default.
func (p *Publisher) WithCalendarPath(path string) *Publisher {
	p.calendarPath = path
	return p
}

// Publish uploads one VEVENT per schedule assignment and returns the
// count of events written.
func (p *Publisher) Publish(ctx context.Context, schedule *domain.Schedule, slots []domain.TimeSlot, opts Options) (int, error) {
	client, err := p.getClient()
	if err != nil {
		return 0, err
	}

	calPath, err := p.findCalendarPath(ctx, client)
	if err != nil {
		return 0, fmt.Errorf("export: find calendar: %w", err)
	}

	idx := indexSlots(slots)
	written := 0
	for _, a := range schedule.Assignments() {
		event, err := buildEvent(a, idx, opts)
		if err != nil {
			return written, err
		}

		single := ical.NewCalendar()
		single.Props.SetText(ical.PropVersion, "2.0")
		single.Props.SetText(ical.PropProductID, "-//Cadence//Optimization Core//EN")
		single.Children = append(single.Children, event.Component)

		eventPath := fmt.Sprintf("%s%s.ics", calPath, a.Session.Key)
		if _, err := client.PutCalendarObject(ctx, eventPath, single); err != nil {
			p.logger.Warn("caldav publish failed", "event_path", eventPath, "error", err)
			continue
		}
		written++
	}

	p.metrics.Counter(observability.MetricExportEvents, int64(written))
	return written, nil
}

func (p *Publisher) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, p.username, p.password), p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}
	return client, nil
}

func (p *Publisher) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if p.calendarPath != "" {
		return p.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}
	return cals[0].Path, nil
}
