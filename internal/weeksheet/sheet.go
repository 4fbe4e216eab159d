package weeksheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoAnchor        = errors.New("week start date is not set")
	ErrDayOutOfRange   = errors.New("day index must be between 0 and 6")
	ErrEntryOutOfRange = errors.New("entry index out of range")
	ErrUnknownField    = errors.New("unknown entry field")
)

// Field names accepted by UpdateEntry. They match the wire names.
type Field string

const (
	FieldProject  Field = "projectId"
	FieldHours    Field = "hours"
	FieldTaskType Field = "taskType"
	FieldNotes    Field = "notes"
)

// Entry is one row of the grid. Hours stays as typed so a half-entered
// value survives until validation.
type Entry struct {
	ID        string
	ProjectID string
	Day       DayIndex
	Date      time.Time
	Hours     string
	TaskType  TaskType
	Notes     string
}

// Persisted reports whether the entry has been saved before.
func (e Entry) Persisted() bool { return e.ID != "" }

// HoursValue parses Hours; blank, malformed or non-finite input counts as 0.
func (e Entry) HoursValue() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(e.Hours), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Used is true once the row has positive hours.
func (e Entry) Used() bool { return e.HoursValue() > 0 }

func blankEntry(anchor time.Time, day DayIndex) Entry {
	return Entry{
		Day:      day,
		Date:     DayDate(anchor, day),
		TaskType: TaskBillable,
	}
}

// Sheet is the in-memory week being edited. It is owned by one editing
// session and is not safe for concurrent use.
type Sheet struct {
	ID      string
	Anchor  time.Time
	Entries []Entry
}

// PersistedEntry is an entry as returned by the backend.
type PersistedEntry struct {
	ID        string
	ProjectID string
	EntryDate string
	Hours     float64
	TaskType  TaskType
	Notes     string
}

// PersistedRecord is a saved week as returned by the backend.
type PersistedRecord struct {
	ID         string
	AnchorDate string
	Entries    []PersistedEntry
}

// New starts a fresh sheet on the week containing now.
func New(now time.Time) *Sheet {
	s := &Sheet{}
	s.reset(NormalizeToAnchor(now))
	return s
}

func (s *Sheet) reset(anchor time.Time) {
	s.Anchor = anchor
	s.Entries = make([]Entry, 0, 7)
	for d := Monday; d <= Sunday; d++ {
		s.Entries = append(s.Entries, blankEntry(anchor, d))
	}
}

// SetAnchor replaces the sheet with seven blank days anchored on the week of
// raw. Blank or unparseable input clears the anchor and leaves no entries.
func (s *Sheet) SetAnchor(raw string) {
	t, err := ParseDate(raw)
	if strings.TrimSpace(raw) == "" || err != nil {
		s.Anchor = time.Time{}
		s.Entries = nil
		return
	}
	s.reset(NormalizeToAnchor(t))
}

// HasAnchor reports whether a week start is set.
func (s *Sheet) HasAnchor() bool { return !s.Anchor.IsZero() }

// Load regroups a persisted record into the grid, Monday first. Same-day
// entries keep their persisted order and an empty day gets one blank row.
// Entries dated outside the week have no cell and are dropped.
func Load(rec PersistedRecord) (*Sheet, error) {
	anchor, err := ParseDate(rec.AnchorDate)
	if err != nil {
		return nil, fmt.Errorf("invalid week start date %q: %w", rec.AnchorDate, err)
	}

	s := &Sheet{ID: rec.ID, Anchor: anchor}
	for d := Monday; d <= Sunday; d++ {
		date := DayDate(anchor, d)
		matched := 0
		for _, pe := range rec.Entries {
			entryDate, err := ParseDate(pe.EntryDate)
			if err != nil || !entryDate.Equal(date) {
				continue
			}
			taskType := pe.TaskType
			if taskType == "" {
				taskType = TaskBillable
			}
			s.Entries = append(s.Entries, Entry{
				ID:        pe.ID,
				ProjectID: pe.ProjectID,
				Day:       d,
				Date:      date,
				Hours:     strconv.FormatFloat(pe.Hours, 'f', -1, 64),
				TaskType:  taskType,
				Notes:     pe.Notes,
			})
			matched++
		}
		if matched == 0 {
			s.Entries = append(s.Entries, blankEntry(anchor, d))
		}
	}
	return s, nil
}

// EntriesForDay returns the indices of the rows on day, in order.
func (s *Sheet) EntriesForDay(day DayIndex) []int {
	var idx []int
	for i, e := range s.Entries {
		if e.Day == day {
			idx = append(idx, i)
		}
	}
	return idx
}

// AddEntry inserts a blank row right after the day's last row, or at the end
// when the day has none.
func (s *Sheet) AddEntry(day DayIndex) error {
	if !day.Valid() {
		return ErrDayOutOfRange
	}
	if !s.HasAnchor() {
		return ErrNoAnchor
	}

	at := len(s.Entries)
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if s.Entries[i].Day == day {
			at = i + 1
			break
		}
	}

	s.Entries = append(s.Entries, Entry{})
	copy(s.Entries[at+1:], s.Entries[at:])
	s.Entries[at] = blankEntry(s.Anchor, day)
	return nil
}

// RemoveEntry drops row i. The last unsaved row of a day is cleared in place
// instead, so the day keeps one row. Removing a saved row only deletes it on
// the server once the next save omits it.
func (s *Sheet) RemoveEntry(i int) error {
	if i < 0 || i >= len(s.Entries) {
		return ErrEntryOutOfRange
	}

	e := s.Entries[i]
	if len(s.EntriesForDay(e.Day)) == 1 && !e.Persisted() {
		s.Entries[i] = Entry{Day: e.Day, Date: e.Date, TaskType: TaskBillable}
		return nil
	}

	s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
	return nil
}

// UpdateEntry sets one field of row i. Choosing PTO or sick leave clears the
// project.
func (s *Sheet) UpdateEntry(i int, field Field, value string) error {
	if i < 0 || i >= len(s.Entries) {
		return ErrEntryOutOfRange
	}

	e := &s.Entries[i]
	switch field {
	case FieldProject:
		e.ProjectID = strings.TrimSpace(value)
	case FieldHours:
		e.Hours = value
	case FieldNotes:
		e.Notes = value
	case FieldTaskType:
		t, err := ParseTaskType(value)
		if err != nil {
			return err
		}
		e.TaskType = t
		if t.ForbidsProject() {
			e.ProjectID = ""
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// TotalHours sums every parseable hours value. Recomputed on each call.
func (s *Sheet) TotalHours() float64 {
	var total float64
	for _, e := range s.Entries {
		total += e.HoursValue()
	}
	return total
}

// Row is a read-only view of one grid line for rendering.
type Row struct {
	Index      int
	Day        DayIndex
	Date       time.Time
	FirstOfDay bool
	Entry      Entry
}

// Rows lists the grid Monday→Sunday.
func (s *Sheet) Rows() []Row {
	rows := make([]Row, 0, len(s.Entries))
	for d := Monday; d <= Sunday; d++ {
		for n, i := range s.EntriesForDay(d) {
			rows = append(rows, Row{
				Index:      i,
				Day:        d,
				Date:       s.Entries[i].Date,
				FirstOfDay: n == 0,
				Entry:      s.Entries[i],
			})
		}
	}
	return rows
}
