package dq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldFailRun(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   bool
	}{
		{
			name:   "empty report",
			report: Report{},
			want:   false,
		},
		{
			name: "critical with failures",
			report: Report{
				{RuleID: "R001", Severity: SeverityCritical, FailedRows: 1},
			},
			want: true,
		},
		{
			name: "critical without failures",
			report: Report{
				{RuleID: "R001", Severity: SeverityCritical, FailedRows: 0},
			},
			want: false,
		},
		{
			name: "warnings only",
			report: Report{
				{RuleID: "R005", Severity: SeverityWarning, FailedRows: 100},
				{RuleID: "R010", Severity: SeverityWarning, FailedRows: 3},
			},
			want: false,
		},
		{
			name: "mixed",
			report: Report{
				{RuleID: "R005", Severity: SeverityWarning, FailedRows: 100},
				{RuleID: "R011", Severity: SeverityCritical, FailedRows: 1},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldFailRun(tt.report))
		})
	}
}

func TestCriticalFailuresKeepsReportOrder(t *testing.T) {
	report := Report{
		{RuleID: "R001", Severity: SeverityCritical, FailedRows: 2},
		{RuleID: "R005", Severity: SeverityWarning, FailedRows: 9},
		{RuleID: "R011", Severity: SeverityCritical, FailedRows: 1},
		{RuleID: "R012", Severity: SeverityCritical, FailedRows: 0},
	}

	got := report.CriticalFailures()
	assert.Len(t, got, 2)
	assert.Equal(t, "R001", got[0].RuleID)
	assert.Equal(t, "R011", got[1].RuleID)
}
