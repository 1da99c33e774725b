package ieee754

import "fmt"

// Step is one recorded stage of a conversion or arithmetic operation.
type Step struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Trace is an append-only record of the steps an operation took, in the
// order it took them. Each operation builds a fresh trace; recorded
// entries cannot be modified through the API.
type Trace struct {
	steps []Step
}

// NewTrace returns an empty trace.
func NewTrace() *Trace { return &Trace{} }

// Append adds one step to the trace.
func (t *Trace) Append(label, value string) {
	t.steps = append(t.steps, Step{Label: label, Value: value})
}

// Appendf adds one step with a fmt-formatted value.
func (t *Trace) Appendf(label, format string, args ...any) {
	t.Append(label, fmt.Sprintf(format, args...))
}

// Steps returns a copy of the recorded steps.
func (t *Trace) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Len returns the number of recorded steps.
func (t *Trace) Len() int { return len(t.steps) }
