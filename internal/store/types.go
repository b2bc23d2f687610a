package store

// Status of a recorded search.
type Status string

const (
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	// StatusFailed marks a search in which every permutation faulted.
	StatusFailed Status = "failed"
)

// SearchParams describes a search about to run.
type SearchParams struct {
	ProgramHash string
	ProgramLen  int
	Stages      int
	Feedback    bool
	Workers     int
}

// SearchOutcome is the final state of a search.
type SearchOutcome struct {
	// BestOutput and BestPhases are nil when no permutation succeeded.
	BestOutput *int64
	BestPhases []int64
	Evaluated  int
	Faulted    int
	Status     Status
}

// Search is a recorded search.
type Search struct {
	ID string
	SearchParams
	SearchOutcome
	CreatedSeq int64
}

// Evaluation is one recorded permutation of a search.
type Evaluation struct {
	SearchID string
	Seq      int
	Phases   []int64
	// Output is nil when the evaluation faulted.
	Output *int64
	// Fault is the error text of a faulted evaluation, empty otherwise.
	Fault string
}
