package dq

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ordersight-labs/ordersight/internal/dataset"
)

// checkFunc runs one rule against the two input tables.
type checkFunc func(orders, events *dataset.Table, enums Enums) (RuleResult, *dataset.Table, error)

// catalogEntry binds a rule id to its check and the column projection kept
// in the persisted failure sample.
type catalogEntry struct {
	id         string
	sampleCols []string
	check      checkFunc
}

// catalog returns the fixed rule catalog in report order. The order is a
// presentation contract: rules have no data dependency on each other.
func catalog() []catalogEntry {
	return []catalogEntry{
		{
			id:         "R001",
			sampleCols: []string{"event_id", "order_id", "event_type", "event_timestamp"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleDuplicatePK(events, "order_events", "event_id", "R001", SeverityCritical)
			},
		},
		{
			id:         "R002",
			sampleCols: []string{"order_id", "customer_id", "order_status", "order_amount"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleDuplicatePK(orders, "orders", "order_id", "R002", SeverityCritical)
			},
		},
		{
			id:         "R003",
			sampleCols: []string{"event_id", "order_id", "event_type", "event_timestamp"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleNotNull(events, "order_events",
					[]string{"event_id", "order_id", "event_type", "event_timestamp"}, "R003", SeverityCritical)
			},
		},
		{
			id:         "R004",
			sampleCols: []string{"order_id", "customer_id", "order_created_at", "order_amount", "order_status"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleNotNull(orders, "orders",
					[]string{"order_id", "customer_id", "order_created_at", "order_amount", "order_status"}, "R004", SeverityCritical)
			},
		},
		{
			id:         "R005",
			sampleCols: []string{"event_id", "order_id", "event_type"},
			check: func(orders, events *dataset.Table, enums Enums) (RuleResult, *dataset.Table, error) {
				return ruleAllowedValues(events, "order_events", "event_type", enums.EventTypes, "R005", SeverityWarning)
			},
		},
		{
			id:         "R006",
			sampleCols: []string{"order_id", "order_status"},
			check: func(orders, events *dataset.Table, enums Enums) (RuleResult, *dataset.Table, error) {
				return ruleAllowedValues(orders, "orders", "order_status", enums.OrderStatuses, "R006", SeverityWarning)
			},
		},
		{
			id:         "R007",
			sampleCols: []string{"order_id", "order_amount", "order_status"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleAmountNonNegative(orders, "R007", SeverityWarning)
			},
		},
		{
			id:         "R008",
			sampleCols: []string{"order_id", "order_status", "order_created_at"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleOrdersWithoutEvents(orders, events, "R008", SeverityWarning)
			},
		},
		{
			id:         "R009",
			sampleCols: []string{"event_id", "order_id", "event_type", "event_timestamp"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleEventsWithoutOrders(orders, events, "R009", SeverityWarning)
			},
		},
		{
			id:         "R010",
			sampleCols: []string{"order_id"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleCompletedWithoutPayment(orders, events, "R010", SeverityWarning)
			},
		},
		{
			id:         "R011",
			sampleCols: []string{"order_id", "order_created_at"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleTimestampParseable(orders, "orders", "order_created_at",
					[]string{"order_id"}, "R011", SeverityCritical)
			},
		},
		{
			id:         "R012",
			sampleCols: []string{"event_id", "order_id", "event_timestamp"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleTimestampParseable(events, "order_events", "event_timestamp",
					[]string{"order_id", "event_id"}, "R012", SeverityCritical)
			},
		},
		{
			id:         "R013",
			sampleCols: []string{"event_id", "order_id", "event_type", "event_timestamp"},
			check: func(orders, events *dataset.Table, _ Enums) (RuleResult, *dataset.Table, error) {
				return ruleEventNotBeforeOrderCreated(orders, events, "R013", SeverityWarning)
			},
		},
	}
}

// RunChecks executes the full rule catalog against the raw orders and
// order_events tables. Rules run concurrently; the report and the samples
// table are assembled in catalog order, so the output is deterministic for
// identical inputs.
//
// A schema-contract error from any rule aborts the whole run: a partial
// report would be misleading.
func RunChecks(orders, events *dataset.Table, enums Enums) (Report, *dataset.Table, error) {
	entries := catalog()

	results := make([]RuleResult, len(entries))
	failures := make([]*dataset.Table, len(entries))

	var g errgroup.Group
	for i, entry := range entries {
		g.Go(func() error {
			res, bad, err := entry.check(orders, events, enums)
			if err != nil {
				return fmt.Errorf("rule %s: %w", entry.id, err)
			}
			results[i] = res
			failures[i] = bad
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := Report(results)

	var samples []sampleEntry
	for i, entry := range entries {
		if failures[i].Len() == 0 {
			continue
		}
		samples = append(samples, takeSample(entry.id, failures[i], entry.sampleCols))
	}

	return report, buildSamples(samples), nil
}
