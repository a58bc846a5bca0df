package cardcheck

import (
	"fmt"
	"io"
	"time"
)

// Check is one printed result of the run
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of one smoke test run
type Result struct {
	BaseURL    string    `json:"base_url"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Checks     []Check   `json:"checks"`

	// Err is the error that stopped the run, nil when every step completed
	Err error `json:"-"`

	// Screenshot is the path written after a failure, empty otherwise
	Screenshot string `json:"screenshot,omitempty"`
}

// Failed reports whether a step stopped the run
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Duration is how long the run took
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Check returns the named check and whether it was recorded
func (r *Result) Check(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// reporter prints progress lines and records checks into a Result
type reporter struct {
	out    io.Writer
	result *Result
}

func (p *reporter) line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// observe records a probe whose value is printed but not asserted
func (p *reporter) observe(name, label string, value bool) {
	p.result.Checks = append(p.result.Checks, Check{Name: name, Passed: value, Detail: fmt.Sprintf("visible=%t", value)})
	p.line("%s: %t", label, value)
}

// pass records a step that completed and prints its success line
func (p *reporter) pass(name, message string) {
	p.result.Checks = append(p.result.Checks, Check{Name: name, Passed: true})
	p.line("%s", message)
}

func (p *reporter) fail(err error) {
	p.result.Err = err
	p.line("Test failed: %v", err)
}
