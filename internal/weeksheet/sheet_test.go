package weeksheet

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNormalizeToAnchor(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), "2024-06-09"},
		{time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC), "2024-06-09"},
		{time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC), "2024-06-09"},
		{time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC), "2024-06-16"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-02-25"},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2024-12-29"},
	}
	for _, tc := range cases {
		got := NormalizeToAnchor(tc.in)
		assert.Equal(t, tc.want, FormatDate(got), "input %s", tc.in)
		assert.Equal(t, time.Sunday, got.Weekday())
		assert.Equal(t, got, NormalizeToAnchor(got), "idempotent")
		assert.False(t, got.After(tc.in))
	}
}

func TestDayDates(t *testing.T) {
	anchor := date(t, "2024-06-09")
	dates := DayDates(anchor)

	assert.Equal(t, "2024-06-10", FormatDate(dates[Monday]))
	assert.Equal(t, "2024-06-15", FormatDate(dates[Saturday]))
	assert.Equal(t, "2024-06-09", FormatDate(dates[Sunday]))

	seen := map[string]bool{}
	for i := 0; i < 7; i++ {
		seen[FormatDate(anchor.AddDate(0, 0, i))] = true
	}
	for _, d := range dates {
		assert.True(t, seen[FormatDate(d)], "%s outside the week", FormatDate(d))
		delete(seen, FormatDate(d))
	}
	assert.Empty(t, seen, "seven distinct consecutive days")

	for d := Monday; d <= Sunday; d++ {
		got, ok := DayOf(anchor, dates[d])
		require.True(t, ok)
		assert.Equal(t, d, got)
	}
	_, ok := DayOf(anchor, date(t, "2024-06-16"))
	assert.False(t, ok)
	assert.False(t, InWeek(anchor, date(t, "2024-06-08")))
}

func TestNew(t *testing.T) {
	s := New(time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-06-09", FormatDate(s.Anchor))
	require.Len(t, s.Entries, 7)
	for i, e := range s.Entries {
		assert.Equal(t, DayIndex(i), e.Day)
		assert.Equal(t, DayDate(s.Anchor, e.Day), e.Date)
		assert.Equal(t, TaskBillable, e.TaskType)
		assert.Empty(t, e.Hours)
		assert.False(t, e.Persisted())
	}
}

func TestSetAnchor(t *testing.T) {
	s := New(date(t, "2024-06-09"))
	require.NoError(t, s.UpdateEntry(0, FieldHours, "8"))

	s.SetAnchor("2024-06-19")
	assert.Equal(t, "2024-06-16", FormatDate(s.Anchor))
	require.Len(t, s.Entries, 7)
	assert.Empty(t, s.Entries[0].Hours, "entries are discarded")
	assert.Equal(t, "2024-06-17", FormatDate(s.Entries[0].Date))

	s.SetAnchor("")
	assert.False(t, s.HasAnchor())
	assert.Empty(t, s.Entries)

	s.SetAnchor("2024-06-16")
	s.SetAnchor("not-a-date")
	assert.False(t, s.HasAnchor())
	assert.Empty(t, s.Entries)
}

func TestLoad(t *testing.T) {
	rec := PersistedRecord{
		ID:         "ts-1",
		AnchorDate: "2024-06-09",
		Entries: []PersistedEntry{
			{ID: "e-1", ProjectID: "p-1", EntryDate: "2024-06-10", Hours: 4, TaskType: TaskBillable, Notes: "a"},
			{ID: "e-2", EntryDate: "2024-06-09", Hours: 2, TaskType: TaskNonBillable},
			{ID: "e-3", ProjectID: "p-2", EntryDate: "2024-06-10", Hours: 3.5, TaskType: TaskBillable, Notes: "b"},
			{ID: "e-4", EntryDate: "2024-06-30", Hours: 1, TaskType: TaskPTO},
		},
	}

	s, err := Load(rec)
	require.NoError(t, err)
	assert.Equal(t, "ts-1", s.ID)

	// Monday x2, Tuesday..Saturday placeholders, Sunday x1.
	require.Len(t, s.Entries, 8)
	assert.Equal(t, "e-1", s.Entries[0].ID)
	assert.Equal(t, "e-3", s.Entries[1].ID)
	assert.Equal(t, "3.5", s.Entries[1].Hours)
	for i := 2; i <= 6; i++ {
		assert.False(t, s.Entries[i].Persisted())
		assert.Empty(t, s.Entries[i].Hours)
	}
	assert.Equal(t, "e-2", s.Entries[7].ID)
	assert.Equal(t, Sunday, s.Entries[7].Day)

	for d := Monday; d <= Sunday; d++ {
		assert.NotEmpty(t, s.EntriesForDay(d))
	}
}

func TestLoad_BadAnchor(t *testing.T) {
	_, err := Load(PersistedRecord{AnchorDate: "06/09/2024"})
	assert.Error(t, err)
}

func TestAddEntry(t *testing.T) {
	s := New(date(t, "2024-06-09"))

	require.NoError(t, s.AddEntry(Monday))
	require.Len(t, s.Entries, 8)
	assert.Equal(t, Monday, s.Entries[1].Day)
	assert.Equal(t, Tuesday, s.Entries[2].Day)

	require.NoError(t, s.AddEntry(Monday))
	assert.Equal(t, []int{0, 1, 2}, s.EntriesForDay(Monday))

	assert.ErrorIs(t, s.AddEntry(7), ErrDayOutOfRange)
	assert.ErrorIs(t, s.AddEntry(-1), ErrDayOutOfRange)
}

func TestAddEntry_DayWithoutRows(t *testing.T) {
	s, err := Load(PersistedRecord{
		AnchorDate: "2024-06-09",
		Entries:    []PersistedEntry{{ID: "e-1", EntryDate: "2024-06-11", Hours: 1, TaskType: TaskNonBillable}},
	})
	require.NoError(t, err)
	require.NoError(t, s.RemoveEntry(s.EntriesForDay(Tuesday)[0]))
	assert.Empty(t, s.EntriesForDay(Tuesday))

	require.NoError(t, s.AddEntry(Tuesday))
	last := s.Entries[len(s.Entries)-1]
	assert.Equal(t, Tuesday, last.Day)
	assert.Equal(t, "2024-06-11", FormatDate(last.Date))
}

func TestAddEntry_NoAnchor(t *testing.T) {
	s := &Sheet{}
	assert.ErrorIs(t, s.AddEntry(Monday), ErrNoAnchor)
}

func TestRemoveEntry(t *testing.T) {
	t.Run("sole unsaved row is cleared", func(t *testing.T) {
		s := New(date(t, "2024-06-09"))
		require.NoError(t, s.UpdateEntry(0, FieldHours, "8"))
		require.NoError(t, s.UpdateEntry(0, FieldTaskType, string(TaskNonBillable)))
		require.NoError(t, s.UpdateEntry(0, FieldNotes, "x"))

		require.NoError(t, s.RemoveEntry(0))
		require.Len(t, s.Entries, 7)
		assert.Empty(t, s.Entries[0].Hours)
		assert.Empty(t, s.Entries[0].Notes)
		assert.Equal(t, TaskBillable, s.Entries[0].TaskType)
		assert.Equal(t, Monday, s.Entries[0].Day)

		require.NoError(t, s.RemoveEntry(0))
		assert.Len(t, s.EntriesForDay(Monday), 1, "never below one row")
	})

	t.Run("one of several rows is removed", func(t *testing.T) {
		s := New(date(t, "2024-06-09"))
		require.NoError(t, s.AddEntry(Friday))
		require.Len(t, s.EntriesForDay(Friday), 2)

		require.NoError(t, s.RemoveEntry(s.EntriesForDay(Friday)[1]))
		assert.Len(t, s.EntriesForDay(Friday), 1)
		assert.Len(t, s.Entries, 7)
	})

	t.Run("sole saved row is removed", func(t *testing.T) {
		s, err := Load(PersistedRecord{
			AnchorDate: "2024-06-09",
			Entries:    []PersistedEntry{{ID: "e-1", EntryDate: "2024-06-12", Hours: 1, TaskType: TaskNonBillable}},
		})
		require.NoError(t, err)
		require.NoError(t, s.RemoveEntry(s.EntriesForDay(Wednesday)[0]))
		assert.Empty(t, s.EntriesForDay(Wednesday))
	})

	t.Run("out of range", func(t *testing.T) {
		s := New(date(t, "2024-06-09"))
		assert.ErrorIs(t, s.RemoveEntry(7), ErrEntryOutOfRange)
	})
}

func TestUpdateEntry(t *testing.T) {
	s := New(date(t, "2024-06-09"))
	require.NoError(t, s.UpdateEntry(2, FieldProject, "7"))
	require.NoError(t, s.UpdateEntry(2, FieldHours, "3"))

	require.NoError(t, s.UpdateEntry(2, FieldTaskType, string(TaskPTO)))
	assert.Empty(t, s.Entries[2].ProjectID)

	require.NoError(t, s.UpdateEntry(2, FieldProject, "7"))
	require.NoError(t, s.UpdateEntry(2, FieldTaskType, string(TaskSickLeave)))
	assert.Empty(t, s.Entries[2].ProjectID)

	require.NoError(t, s.UpdateEntry(2, FieldProject, "7"))
	require.NoError(t, s.UpdateEntry(2, FieldTaskType, string(TaskNonBillable)))
	assert.Equal(t, "7", s.Entries[2].ProjectID, "non-billable keeps its project")

	assert.ErrorIs(t, s.UpdateEntry(2, "colour", "red"), ErrUnknownField)
	assert.Error(t, s.UpdateEntry(2, FieldTaskType, "HOLIDAY"))
	assert.ErrorIs(t, s.UpdateEntry(99, FieldNotes, "x"), ErrEntryOutOfRange)
}

func TestValidate(t *testing.T) {
	t.Run("missing anchor short-circuits", func(t *testing.T) {
		s := New(date(t, "2024-06-09"))
		require.NoError(t, s.UpdateEntry(0, FieldHours, "5"))
		s.Anchor = time.Time{}

		errs := s.Validate()
		assert.Equal(t, ValidationErrors{KeyWeekStart: "Week start date must be a Sunday"}, errs)
	})

	t.Run("non-Sunday anchor", func(t *testing.T) {
		s, err := Load(PersistedRecord{AnchorDate: "2024-06-10"})
		require.NoError(t, err)
		errs := s.Validate()
		require.Len(t, errs, 1)
		assert.Contains(t, errs, KeyWeekStart)
	})

	t.Run("billable without project", func(t *testing.T) {
		s := New(date(t, "2024-06-09"))
		require.NoError(t, s.UpdateEntry(3, FieldHours, "5"))

		errs := s.Validate()
		assert.Equal(t, ValidationErrors{"entry-3-project": MsgProjectRequired}, errs)
	})

	t.Run("blank and zero hours are exempt", func(t *testing.T) {
		s := New(date(t, "2024-06-09"))
		require.NoError(t, s.UpdateEntry(0, FieldHours, "0"))
		require.NoError(t, s.UpdateEntry(1, FieldHours, "abc"))
		assert.Empty(t, s.Validate())
	})

	t.Run("leave needs no project", func(t *testing.T) {
		s := New(date(t, "2024-06-09"))
		require.NoError(t, s.UpdateEntry(0, FieldTaskType, string(TaskPTO)))
		require.NoError(t, s.UpdateEntry(0, FieldHours, "8"))
		assert.Empty(t, s.Validate())
	})
}

func TestToSubmission(t *testing.T) {
	s, err := Load(PersistedRecord{
		ID:         "ts-1",
		AnchorDate: "2024-06-09",
		Entries: []PersistedEntry{
			{ID: "e-1", ProjectID: "p-1", EntryDate: "2024-06-10", Hours: 8, TaskType: TaskBillable},
		},
	})
	require.NoError(t, err)
	require.NoError(t, s.UpdateEntry(1, FieldHours, "2.25"))
	require.NoError(t, s.UpdateEntry(1, FieldTaskType, string(TaskNonBillable)))

	sub := s.ToSubmission()
	assert.Equal(t, "2024-06-09", sub.AnchorDate)
	require.Len(t, sub.Entries, 2)

	first := sub.Entries[0]
	require.NotNil(t, first.ID)
	assert.Equal(t, "e-1", *first.ID)
	require.NotNil(t, first.ProjectID)
	assert.Equal(t, "p-1", *first.ProjectID)
	assert.Equal(t, "2024-06-10", first.EntryDate)
	assert.Equal(t, 8.0, first.Hours)

	second := sub.Entries[1]
	assert.Nil(t, second.ID)
	assert.Nil(t, second.ProjectID)
	assert.Equal(t, "2024-06-11", second.EntryDate)
	assert.Equal(t, 2.25, second.Hours)
	assert.Equal(t, "", second.Notes)
}

func TestToSubmission_NonFiniteHoursSkipped(t *testing.T) {
	s := New(date(t, "2024-06-09"))
	require.NoError(t, s.UpdateEntry(0, FieldTaskType, string(TaskNonBillable)))
	require.NoError(t, s.UpdateEntry(0, FieldHours, "Inf"))
	require.NoError(t, s.UpdateEntry(1, FieldTaskType, string(TaskNonBillable)))
	require.NoError(t, s.UpdateEntry(1, FieldHours, "NaN"))
	require.NoError(t, s.UpdateEntry(2, FieldTaskType, string(TaskNonBillable)))
	require.NoError(t, s.UpdateEntry(2, FieldHours, "8"))

	assert.Empty(t, s.Validate())
	sub := s.ToSubmission()
	require.Len(t, sub.Entries, 1)
	assert.Equal(t, 8.0, sub.Entries[0].Hours)
	assert.Equal(t, "2024-06-12", sub.Entries[0].EntryDate)

	_, err := json.Marshal(sub)
	require.NoError(t, err)
}

func TestToSubmission_NothingLogged(t *testing.T) {
	s := New(date(t, "2024-06-09"))
	assert.Equal(t, 0.0, s.TotalHours())
	assert.True(t, s.ToSubmission().Empty())
}

func TestLoadSubmissionRoundTrip(t *testing.T) {
	rec := PersistedRecord{
		ID:         "ts-9",
		AnchorDate: "2024-06-09",
		Entries: []PersistedEntry{
			{ID: "a", ProjectID: "p-1", EntryDate: "2024-06-10", Hours: 8, TaskType: TaskBillable, Notes: "build"},
			{ID: "b", ProjectID: "p-2", EntryDate: "2024-06-10", Hours: 1.5, TaskType: TaskBillable},
			{ID: "c", EntryDate: "2024-06-14", Hours: 8, TaskType: TaskPTO},
			{EntryDate: "2024-06-09", Hours: 0.25, TaskType: TaskNonBillable, Notes: "email"},
		},
	}

	s, err := Load(rec)
	require.NoError(t, err)
	require.Empty(t, s.Validate())

	type tuple struct {
		id, date, project, notes string
		hours                    float64
		task                     TaskType
	}
	want := map[tuple]bool{}
	for _, e := range rec.Entries {
		want[tuple{e.ID, e.EntryDate, e.ProjectID, e.Notes, e.Hours, e.TaskType}] = true
	}

	sub := s.ToSubmission()
	require.Len(t, sub.Entries, len(rec.Entries))
	for _, se := range sub.Entries {
		got := tuple{date: se.EntryDate, notes: se.Notes, hours: se.Hours, task: se.TaskType}
		if se.ID != nil {
			got.id = *se.ID
		}
		if se.ProjectID != nil {
			got.project = *se.ProjectID
		}
		assert.True(t, want[got], "unexpected %+v", got)
	}
}

func TestTotalHours(t *testing.T) {
	s := New(date(t, "2024-06-09"))
	require.NoError(t, s.UpdateEntry(0, FieldHours, "7.5"))
	require.NoError(t, s.UpdateEntry(1, FieldHours, " 0.25 "))
	require.NoError(t, s.UpdateEntry(2, FieldHours, "n/a"))
	require.NoError(t, s.UpdateEntry(3, FieldHours, ""))
	require.NoError(t, s.UpdateEntry(4, FieldHours, "NaN"))
	require.NoError(t, s.UpdateEntry(5, FieldHours, "Inf"))
	require.NoError(t, s.UpdateEntry(6, FieldHours, "-Infinity"))
	assert.InDelta(t, 7.75, s.TotalHours(), 1e-9)
}

func TestRows(t *testing.T) {
	s := New(date(t, "2024-06-09"))
	require.NoError(t, s.AddEntry(Sunday))
	require.NoError(t, s.AddEntry(Monday))

	rows := s.Rows()
	require.Len(t, rows, 9)
	assert.Equal(t, Monday, rows[0].Day)
	assert.True(t, rows[0].FirstOfDay)
	assert.Equal(t, Monday, rows[1].Day)
	assert.False(t, rows[1].FirstOfDay)
	assert.Equal(t, Sunday, rows[8].Day)
	assert.False(t, rows[8].FirstOfDay)
}
