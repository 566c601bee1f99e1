package window

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// Length is the fixed duration of every reservation window.
	Length = 15 * time.Minute
	// PastTolerance is how far in the past a start may lie and still be accepted.
	PastTolerance = 5 * time.Minute

	dateLayout = "2006-01-02"
)

var (
	ErrInvalidDate  = errors.New("window: invalid date")
	ErrInvalidClock = errors.New("window: invalid start time")
	ErrStartInPast  = errors.New("window: start time is in the past")
)

var clockLayouts = []string{"15:04", "15:04:05"}

// Window is an absolute reservation interval expressed in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// FromStart builds the window beginning at start.
func FromStart(start time.Time) Window {
	start = start.UTC()
	return Window{Start: start, End: start.Add(Length)}
}

// Calculator turns wall-clock input in the driver's location into windows.
type Calculator struct {
	loc *time.Location
	now func() time.Time
}

// NewCalculator returns a calculator for loc. A nil loc means time.Local and a nil now
// means time.Now.
func NewCalculator(loc *time.Location, now func() time.Time) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Calculator{loc: loc, now: now}
}

// Location returns the driver's location.
func (c *Calculator) Location() *time.Location {
	return c.loc
}

// Start resolves a date ("2006-01-02") and clock ("15:04") to an absolute instant.
func (c *Calculator) Start(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	var hm time.Time
	parsed := false
	for _, layout := range clockLayouts {
		if hm, err = time.Parse(layout, strings.TrimSpace(clock)); err == nil {
			parsed = true
			break
		}
	}
	if !parsed {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), hm.Second(), 0, c.loc), nil
}

// Derive resolves the input and returns the window without validating it.
func (c *Calculator) Derive(date, clock string) (Window, error) {
	start, err := c.Start(date, clock)
	if err != nil {
		return Window{}, err
	}
	return FromStart(start), nil
}

// Validate rejects windows starting earlier than now minus PastTolerance.
func (c *Calculator) Validate(w Window) error {
	earliest := c.now().Add(-PastTolerance)
	if w.Start.Before(earliest) {
		return fmt.Errorf("%w: %s", ErrStartInPast, w.Start.In(c.loc).Format("2006-01-02 15:04"))
	}
	return nil
}
