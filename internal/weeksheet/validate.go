package weeksheet

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// KeyWeekStart is the error key for the anchor rule.
	KeyWeekStart = "weekStartDate"

	MsgProjectRequired = "Project is required for billable entries"
)

// EntryProjectKey is the error key for a billable row without a project.
func EntryProjectKey(i int) string { return fmt.Sprintf("entry-%d-project", i) }

// ValidationErrors maps a rule key to its message. Empty means valid.
type ValidationErrors map[string]string

// Error renders the messages in key order.
func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return strings.Join(parts, "; ")
}

// Validate checks the sheet before submission. A bad anchor short-circuits
// with that single error. Rows without positive hours are not checked.
func (s *Sheet) Validate() ValidationErrors {
	errs := ValidationErrors{}

	if err := ValidateAnchor(s.Anchor); err != nil {
		errs[KeyWeekStart] = err.Error()
		return errs
	}

	for i, e := range s.Entries {
		if !e.Used() {
			continue
		}
		if e.TaskType.RequiresProject() && e.ProjectID == "" {
			errs[EntryProjectKey(i)] = MsgProjectRequired
		}
	}
	return errs
}
