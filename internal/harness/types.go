package harness

// TraceEvent is one executed step in a scenario run.
type TraceEvent struct {
	Op    string            `json:"op"`
	Model string            `json:"model,omitempty"`
	ID    int64             `json:"id,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Value string            `json:"value,omitempty"`
	Error string            `json:"error,omitempty"`
	At    int64             `json:"at"` // scenario clock, unix seconds
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// RunToken identifies this execution in the trace.
	RunToken string `json:"run_token"`

	// Trace lists every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors collects expect and assertion mismatches. Empty when Pass.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates an empty passing result.
func NewResult(runToken string) *Result {
	return &Result{
		Pass:     true,
		RunToken: runToken,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError records a mismatch and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
