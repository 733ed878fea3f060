package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/content"
)

// Delta reports that a refresh grew the gallery. It is only emitted when
// the gallery was already non-empty, so the initial load stays silent.
type Delta struct {
	Source   string
	Previous int
	Current  int
	Added    int
}

// Notice is a user-facing report of a failed refresh.
type Notice struct {
	Source  string
	Message string
	Err     error
	At      time.Time
}

func newNotice(sourceName string, err error, at time.Time) Notice {
	var msg string
	var cfgErr *content.ConfigurationError
	var fetchErr *content.FetchError
	switch {
	case errors.As(err, &cfgErr):
		msg = fmt.Sprintf("%s is not configured: %s %s", sourceName, cfgErr.Field, cfgErr.Reason)
	case errors.As(err, &fetchErr):
		msg = fmt.Sprintf("could not load %s: %s", sourceName, fetchErr.Error())
	default:
		msg = fmt.Sprintf("could not load %s: %v", sourceName, err)
	}
	return Notice{Source: sourceName, Message: msg, Err: err, At: at}
}

// Every returns a schedule that fires every d. Unlike cron.Every it keeps
// sub-second precision.
func Every(d time.Duration) cron.Schedule {
	return interval(d)
}

type interval time.Duration

func (i interval) Next(t time.Time) time.Time {
	return t.Add(time.Duration(i))
}

// ParseSchedule returns the cron schedule for spec, or an interval
// schedule of every when spec is empty.
func ParseSchedule(every time.Duration, spec string) (cron.Schedule, error) {
	if spec == "" {
		if every <= 0 {
			return nil, fmt.Errorf("poll interval must be positive, got %s", every)
		}
		return Every(every), nil
	}
	sched, err := config.CronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse poll schedule %q: %w", spec, err)
	}
	return sched, nil
}
