// Package period resolves symbolic time-window tokens into absolute ranges.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Token is a symbolic time-window selector
type Token string

const (
	Latest     Token = "latest"
	Day        Token = "day"
	Week       Token = "week"
	TwoWeeks   Token = "2weeks"
	ThreeWeeks Token = "3weeks"
	Month      Token = "month"
	Custom     Token = "custom"
)

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrMissingStart  = errors.New("custom period requires a start date")
	ErrInvalidRange  = errors.New("period start is after its end")
)

var lookback = map[Token]time.Duration{
	Latest:     24 * time.Hour,
	Day:        24 * time.Hour,
	Week:       7 * 24 * time.Hour,
	TwoWeeks:   14 * 24 * time.Hour,
	ThreeWeeks: 21 * 24 * time.Hour,
	Month:      30 * 24 * time.Hour,
}

var labels = map[Token]string{
	Latest:     "Latest",
	Day:        "Daily",
	Week:       "Weekly",
	TwoWeeks:   "Fortnightly",
	ThreeWeeks: "3-Week",
	Month:      "Monthly",
	Custom:     "Custom",
}

// Window is a resolved, inclusive time range
type Window struct {
	Token Token     `json:"period"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Parse validates a period token. An empty string defaults to a week.
func Parse(s string) (Token, error) {
	t := Token(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return Week, nil
	}
	if _, ok := labels[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	return t, nil
}

// Resolve turns a token into an absolute window ending at now. Custom
// windows take start and end from the caller; end defaults to now.
func Resolve(token Token, now time.Time, start, end *time.Time) (Window, error) {
	now = now.UTC()

	if token == Custom {
		if start == nil {
			return Window{}, ErrMissingStart
		}
		w := Window{Token: Custom, Start: start.UTC(), End: now}
		if end != nil {
			w.End = end.UTC()
		}
		if w.Start.After(w.End) {
			return Window{}, ErrInvalidRange
		}
		return w, nil
	}

	back, ok := lookback[token]
	if !ok {
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, token)
	}
	return Window{Token: token, Start: now.Add(-back), End: now}, nil
}

// ParseAndResolve combines Parse and Resolve for request handling
func ParseAndResolve(s string, now time.Time, start, end *time.Time) (Window, error) {
	token, err := Parse(s)
	if err != nil {
		return Window{}, err
	}
	return Resolve(token, now, start, end)
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Label returns the human name of the window's cadence
func (w Window) Label() string {
	return labels[w.Token]
}

// Title builds the default digest title, e.g.
// "Weekly Digest - Jan 02 to Jan 09, 2026".
func (w Window) Title() string {
	return fmt.Sprintf("%s Digest - %s to %s", w.Label(), w.Start.Format("Jan 02"), w.End.Format("Jan 02, 2006"))
}

// Describe renders the window for failure causes and progress text
func (w Window) Describe() string {
	return fmt.Sprintf("%s and %s", w.Start.Format("Jan 02, 2006"), w.End.Format("Jan 02, 2006"))
}
