package harness

// Trace is the observable outcome of a scenario run. It is what golden
// files record.
type Trace struct {
	Scenario string `json:"scenario"`

	// State is "halted" or "faulted" for a machine run and "searched" for
	// a network run.
	State string `json:"state"`

	// Fault is the fault code of a faulted run.
	Fault string `json:"fault,omitempty"`

	Outputs []int64 `json:"outputs,omitempty"`

	// Memory is the prefix of the final memory checked by expect.memory.
	Memory []int64 `json:"memory,omitempty"`

	Best *Best `json:"best,omitempty"`
}

// Best is the winning permutation of a network search.
type Best struct {
	Output    int64   `json:"output"`
	Phases    []int64 `json:"phases"`
	Evaluated int     `json:"evaluated"`
	Faulted   int     `json:"faulted"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	Trace Trace `json:"trace"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Pass:   true,
		Trace:  Trace{Scenario: name},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
