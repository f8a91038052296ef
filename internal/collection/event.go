package collection

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const eventDateLayout = "2006-01-02"

// Event is a named date range used to annotate items, e.g. a holiday whose
// photos should land in their own destination folder.
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewEvent parses start/end dates (YYYY-MM-DD, inclusive) and validates the
// range.
func NewEvent(name, start, end string) (Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Event{}, errors.New("event name must not be empty")
	}
	startDate, err := time.ParseInLocation(eventDateLayout, strings.TrimSpace(start), time.Local)
	if err != nil {
		return Event{}, fmt.Errorf("start date: %w", err)
	}
	endDate, err := time.ParseInLocation(eventDateLayout, strings.TrimSpace(end), time.Local)
	if err != nil {
		return Event{}, fmt.Errorf("end date: %w", err)
	}
	if endDate.Before(startDate) {
		return Event{}, fmt.Errorf("event %q ends before it starts", name)
	}
	return Event{Name: name, Start: startDate, End: endDate}, nil
}

// IsDateValid reports whether value parses as an event date.
func IsDateValid(value string) bool {
	_, err := time.ParseInLocation(eventDateLayout, strings.TrimSpace(value), time.Local)
	return err == nil
}

// Contains reports whether the timestamp falls inside the event range.
// The end date is inclusive through the end of its day.
func (e *Event) Contains(t time.Time) bool {
	if t.Before(e.Start) {
		return false
	}
	return t.Before(e.End.AddDate(0, 0, 1))
}

// StartString and EndString format the range for display and persistence.
func (e *Event) StartString() string { return e.Start.Format(eventDateLayout) }

func (e *Event) EndString() string { return e.End.Format(eventDateLayout) }
