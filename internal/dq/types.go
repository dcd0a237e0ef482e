// Package dq implements the data-quality rule engine: a fixed catalog of
// checks over the raw orders and order_events tables, a bounded failure
// sampler, and the gate policy that decides whether critical violations
// must stop a pipeline run.
//
// The engine only sees in-memory tables with raw string values; reading
// source files and persisting results belongs to the caller. Timestamp
// columns must arrive unparsed, since the parseability rules need to see
// the parse failures themselves.
package dq

import (
	"strconv"

	"github.com/ordersight-labs/ordersight/internal/dataset"
)

// Severity classifies how a rule's failures affect the run.
type Severity string

const (
	// SeverityCritical rules gate the pipeline in prod mode.
	SeverityCritical Severity = "critical"
	// SeverityWarning rules are reported only.
	SeverityWarning Severity = "warning"
)

// RuleResult summarizes one rule execution.
type RuleResult struct {
	RuleID      string
	RuleName    string
	TableName   string
	Severity    Severity
	FailedRows  int
	TotalRows   int
	FailureRate float64
	SampleKeys  string
}

// newResult builds a RuleResult, deriving FailureRate from the two counts.
// The rate is 0.0 when the denominator is zero.
func newResult(id, name, table string, sev Severity, failed, total int, sampleKeys string) RuleResult {
	rate := 0.0
	if total > 0 {
		rate = float64(failed) / float64(total)
	}
	return RuleResult{
		RuleID:      id,
		RuleName:    name,
		TableName:   table,
		Severity:    sev,
		FailedRows:  failed,
		TotalRows:   total,
		FailureRate: rate,
		SampleKeys:  sampleKeys,
	}
}

// Report is the ordered sequence of rule results for one catalog run.
// It is built once per run and never mutated afterwards.
type Report []RuleResult

// ReportColumns is the column order of the tabular report.
var ReportColumns = []string{
	"rule_id", "rule_name", "table_name", "severity",
	"failed_rows", "total_rows", "failure_rate", "sample_keys",
}

// Table renders the report as a tabular dataset, one row per rule in
// catalog order.
func (r Report) Table() *dataset.Table {
	t := dataset.New(ReportColumns...)
	for _, res := range r {
		t.Append(dataset.Row{
			"rule_id":      res.RuleID,
			"rule_name":    res.RuleName,
			"table_name":   res.TableName,
			"severity":     string(res.Severity),
			"failed_rows":  strconv.Itoa(res.FailedRows),
			"total_rows":   strconv.Itoa(res.TotalRows),
			"failure_rate": strconv.FormatFloat(res.FailureRate, 'g', -1, 64),
			"sample_keys":  res.SampleKeys,
		})
	}
	return t
}

// Enums holds the closed value sets the allowed-value rules check against.
// They are fixed configuration for a run, not mutable process state.
type Enums struct {
	EventTypes    map[string]struct{}
	OrderStatuses map[string]struct{}
}

// DefaultEnums returns the event type and order status enumerations of the
// order lifecycle model.
func DefaultEnums() Enums {
	return Enums{
		EventTypes: map[string]struct{}{
			"order_created":     {},
			"payment_confirmed": {},
			"order_shipped":     {},
			"order_cancelled":   {},
		},
		OrderStatuses: map[string]struct{}{
			"completed": {},
			"cancelled": {},
			"refunded":  {},
		},
	}
}
