package weeksheet

// SubmissionEntry is one normalized row handed to the backend.
type SubmissionEntry struct {
	ID        *string
	ProjectID *string
	EntryDate string
	Hours     float64
	TaskType  TaskType
	Notes     string
}

// Submission is the flat payload for a save.
type Submission struct {
	AnchorDate string
	Entries    []SubmissionEntry
}

// Empty is true when no row carries hours; callers reject such a save.
func (s Submission) Empty() bool { return len(s.Entries) == 0 }

// ToSubmission keeps the rows with positive hours. Call Validate first and
// abort the save on any error.
func (s *Sheet) ToSubmission() Submission {
	out := Submission{
		AnchorDate: FormatDate(s.Anchor),
		Entries:    make([]SubmissionEntry, 0, len(s.Entries)),
	}
	for _, e := range s.Entries {
		if !e.Used() {
			continue
		}
		se := SubmissionEntry{
			EntryDate: FormatDate(e.Date),
			Hours:     e.HoursValue(),
			TaskType:  e.TaskType,
			Notes:     e.Notes,
		}
		if e.ID != "" {
			id := e.ID
			se.ID = &id
		}
		if e.ProjectID != "" {
			pid := e.ProjectID
			se.ProjectID = &pid
		}
		out.Entries = append(out.Entries, se)
	}
	return out
}
