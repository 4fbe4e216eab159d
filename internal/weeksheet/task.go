package weeksheet

import "fmt"

// TaskType classifies a time entry.
type TaskType string

const (
	TaskBillable    TaskType = "BILLABLE"
	TaskNonBillable TaskType = "NON_BILLABLE"
	TaskPTO         TaskType = "PTO"
	TaskSickLeave   TaskType = "SICK_LEAVE"
)

// TaskTypes lists every task type in display order.
var TaskTypes = []TaskType{TaskBillable, TaskNonBillable, TaskPTO, TaskSickLeave}

// ParseTaskType accepts the wire names only.
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown task type %q", s)
	}
	return t, nil
}

func (t TaskType) Valid() bool {
	switch t {
	case TaskBillable, TaskNonBillable, TaskPTO, TaskSickLeave:
		return true
	}
	return false
}

// RequiresProject is true for billable work once hours are logged.
func (t TaskType) RequiresProject() bool { return t == TaskBillable }

// ForbidsProject is true for leave types; their project is always cleared.
func (t TaskType) ForbidsProject() bool { return t == TaskPTO || t == TaskSickLeave }
