package dq

// CriticalFailures returns the report rows that are critical and have at
// least one failing row, in report order.
func (r Report) CriticalFailures() []RuleResult {
	var out []RuleResult
	for _, res := range r {
		if res.Severity == SeverityCritical && res.FailedRows > 0 {
			out = append(out, res)
		}
	}
	return out
}

// ShouldFailRun decides whether the invoking pipeline must stop: true iff
// the report contains a critical rule with failures. An empty report never
// fails the run. The decision is a pure function of the report; no rules
// are re-evaluated.
func ShouldFailRun(r Report) bool {
	return len(r.CriticalFailures()) > 0
}
