package appointment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hackgods/petcare-booking/internal/records"
)

const (
	DayLayout = "2006-01-02"

	// storedDateLayout matches JavaScript's Date.prototype.toISOString.
	storedDateLayout = "2006-01-02T15:04:05.000Z"
	localDateTime    = "2006-01-02T15:04:05"
)

// TimeSet is a set of HH:MM strings.
type TimeSet map[string]struct{}

func (s TimeSet) Has(t string) bool {
	_, ok := s[t]
	return ok
}

func (s TimeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Engine answers which times of a day are taken. It holds no state besides
// the business location, so every call reflects the appointments passed in.
type Engine struct {
	loc *time.Location
}

func NewEngine(loc *time.Location) Engine {
	if loc == nil {
		loc = time.UTC
	}
	return Engine{loc: loc}
}

func (e Engine) Location() *time.Location {
	return e.loc
}

// DayKey returns the calendar date (YYYY-MM-DD) an appointment's date field
// refers to. Timestamps are read in the business location so an appointment
// saved at local midnight does not slide to the previous day.
func (e Engine) DayKey(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if t, err := time.Parse(DayLayout, raw); err == nil {
		return t.Format(DayLayout), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(e.loc).Format(DayLayout), true
	}
	if t, err := time.ParseInLocation(localDateTime, raw, e.loc); err == nil {
		return t.Format(DayLayout), true
	}
	return "", false
}

// ParseDay reads user input into midnight of that date in the business
// location.
func (e Engine) ParseDay(raw string) (time.Time, error) {
	key, ok := e.DayKey(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
	}
	t, err := time.ParseInLocation(DayLayout, key, e.loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// StoredDate renders day the way the browser stored appointment dates.
func (e Engine) StoredDate(day time.Time) string {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.loc).UTC().Format(storedDateLayout)
}

// BookedTimes returns the times held by non-cancelled appointments on the
// calendar date of day (taken in day's own location).
func (e Engine) BookedTimes(day time.Time, appts []records.Appointment) TimeSet {
	target := day.Format(DayLayout)
	booked := make(TimeSet)

	for _, a := range appts {
		if a.Status == records.StatusCancelled {
			continue
		}
		key, ok := e.DayKey(a.Date)
		if !ok || key != target {
			continue
		}
		booked[clockKey(a.Time)] = struct{}{}
	}

	return booked
}

func (e Engine) IsSlotAvailable(day time.Time, slot string, appts []records.Appointment) bool {
	return !e.BookedTimes(day, appts).Has(clockKey(slot))
}

// Slots lists every configured slot for day, sorted by time.
func (e Engine) Slots(day time.Time, slots []records.TimeSlot, appts []records.Appointment) []SlotView {
	booked := e.BookedTimes(day, appts)

	out := make([]SlotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotView{
			ID:        s.ID,
			Time:      s.Time,
			Available: s.Available,
			Booked:    booked.Has(clockKey(s.Time)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out
}

// clockKey is the HH:MM form of t. Stored values that do not parse are
// compared as written.
func clockKey(t string) string {
	if hhmm, err := records.NormalizeTime(t); err == nil {
		return hhmm
	}
	return strings.TrimSpace(t)
}
