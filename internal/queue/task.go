package queue

type TaskType string

const (
	// TaskTypeOffboarding runs the full offboarding workflow for one
	// departing employee.
	TaskTypeOffboarding TaskType = "offboarding"
	// TaskTypeOrgScan sweeps every active user for undocumented-intensity
	// risk.
	TaskTypeOrgScan TaskType = "org_scan"
)

// Task is the unit of work handed to the producer. Employee fields are
// meaningful for offboarding tasks only; an org scan carries no payload
// beyond its type.
type Task struct {
	TaskType    TaskType
	EmployeeID  string
	TriggeredBy string
	Department  string
	Role        string
	TraceID     *string
	Attempt     int
}
