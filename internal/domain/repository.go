package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a lookup ID does not exist upstream.
	ErrNotFound = errors.New("neo not found")
	// ErrInvalidRange is returned for a date window the feed cannot serve.
	ErrInvalidRange = errors.New("invalid date range")
)

// NeoRepository fetches and normalizes NEO records.
type NeoRepository interface {
	// Feed returns every object with a close approach between start and end, inclusive.
	Feed(ctx context.Context, start, end time.Time) (Feed, error)

	// Lookup returns a single object by its NeoWs ID.
	Lookup(ctx context.Context, id string) (NeoRecord, error)
}

// DefaultWindow returns the inclusive window of the given number of days
// ending today (UTC). Fewer than one day is treated as one.
func DefaultWindow(days int) (time.Time, time.Time) {
	end := truncateDay(clock.Now())
	return windowEndingAt(end, days), end
}

func windowEndingAt(end time.Time, days int) time.Time {
	return end.AddDate(0, 0, -(max(days, 1) - 1))
}

// ParseWindow parses YYYY-MM-DD bounds. Empty bounds fall back to the default
// window of the given size; an empty start with an explicit end counts back from end.
func ParseWindow(startStr, endStr string, defaultDays int) (time.Time, time.Time, error) {
	start, end := DefaultWindow(defaultDays)

	if endStr != "" {
		t, err := time.Parse(DateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %q", ErrInvalidRange, endStr)
		}
		end = t
		start = windowEndingAt(end, defaultDays)
	}
	if startStr != "" {
		t, err := time.Parse(DateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date %q", ErrInvalidRange, startStr)
		}
		start = t
	}

	if err := ValidateWindow(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ValidateWindow checks that end is not before start and the span fits the feed limit.
func ValidateWindow(start, end time.Time) error {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidRange, end.Format(DateLayout), start.Format(DateLayout))
	}
	if end.Sub(start) > MaxFeedDays*24*time.Hour {
		return fmt.Errorf("%w: window exceeds %d days", ErrInvalidRange, MaxFeedDays)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
