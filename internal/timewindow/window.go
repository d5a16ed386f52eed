package timewindow

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("endAt must be after startAt")

// Window is a half-open interval [StartAt, EndAt) in absolute time.
// Both bounds are normalized to UTC so comparisons are never affected
// by the offset the caller happened to send.
type Window struct {
	StartAt time.Time
	EndAt   time.Time
}

func New(startAt, endAt time.Time) (Window, error) {
	if startAt.IsZero() || endAt.IsZero() {
		return Window{}, ErrInvalidRange
	}
	startAt = startAt.UTC()
	endAt = endAt.UTC()
	if !endAt.After(startAt) {
		return Window{}, ErrInvalidRange
	}
	return Window{StartAt: startAt, EndAt: endAt}, nil
}

// Parse builds a Window from two RFC 3339 timestamps.
func Parse(startAt, endAt string) (Window, error) {
	start, err := time.Parse(time.RFC3339, startAt)
	if err != nil {
		return Window{}, fmt.Errorf("invalid startAt: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endAt)
	if err != nil {
		return Window{}, fmt.Errorf("invalid endAt: %w", err)
	}
	return New(start, end)
}

// Overlaps reports whether the two half-open intervals intersect.
// Touching windows (a.EndAt == b.StartAt) do not overlap, so
// back-to-back bookings are legal.
func (w Window) Overlaps(o Window) bool {
	return w.StartAt.Before(o.EndAt) && o.StartAt.Before(w.EndAt)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.StartAt) && t.Before(w.EndAt)
}

func (w Window) Duration() time.Duration {
	return w.EndAt.Sub(w.StartAt)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.StartAt.Format(time.RFC3339), w.EndAt.Format(time.RFC3339))
}
