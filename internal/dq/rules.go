package dq

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ordersight-labs/ordersight/internal/dataset"
)

// Rule functions are pure: they read one or two tables, classify rows as
// pass/fail, and return a summary plus the failing subset. They never
// mutate their inputs and never fail on malformed cell values; the only
// error they can return is a schema-contract violation (a required column
// absent from the table).

// normalizeID coerces an identifier for cross-table comparison. Both sides
// of a join are normalized the same way so that formatting differences
// between source systems do not produce false orphans.
func normalizeID(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// idSet collects the normalized, non-null values of col into a set.
func idSet(t *dataset.Table, col string) map[string]struct{} {
	set := make(map[string]struct{}, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		if row.IsNull(col) {
			continue
		}
		set[normalizeID(row.Get(col))] = struct{}{}
	}
	return set
}

// ruleDuplicatePK flags every row whose primary key value occurs more than
// once, so two rows sharing one key both count as failures.
func ruleDuplicatePK(t *dataset.Table, table, pk, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	if err := t.Require(table, pk); err != nil {
		return RuleResult{}, nil, err
	}

	counts := make(map[string]int, t.Len())
	for i := 0; i < t.Len(); i++ {
		counts[t.Row(i).Get(pk)]++
	}
	bad := t.Filter(func(r dataset.Row) bool {
		return counts[r.Get(pk)] > 1
	})

	res := newResult(id, fmt.Sprintf("Duplicate primary key: %s", pk), table, sev,
		bad.Len(), t.Len(), sampleKeys(bad, []string{pk}))
	return res, bad, nil
}

// ruleNotNull flags rows with any required column null. A row missing
// several required columns still counts once.
func ruleNotNull(t *dataset.Table, table string, cols []string, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	if err := t.Require(table, cols...); err != nil {
		return RuleResult{}, nil, err
	}

	bad := t.Filter(func(r dataset.Row) bool {
		for _, c := range cols {
			if r.IsNull(c) {
				return true
			}
		}
		return false
	})

	keyCol := cols[0]
	if t.HasColumn("order_id") {
		keyCol = "order_id"
	}

	res := newResult(id, fmt.Sprintf("Missing required fields: %s", strings.Join(cols, ", ")), table, sev,
		bad.Len(), t.Len(), sampleKeys(bad, []string{keyCol}))
	return res, bad, nil
}

// ruleAllowedValues flags rows whose value in col is null or outside the
// closed enumeration. Null is a violation, not "not applicable".
func ruleAllowedValues(t *dataset.Table, table, col string, allowed map[string]struct{}, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	if err := t.Require(table, col); err != nil {
		return RuleResult{}, nil, err
	}

	bad := t.Filter(func(r dataset.Row) bool {
		if r.IsNull(col) {
			return true
		}
		_, ok := allowed[r.Get(col)]
		return !ok
	})

	keyCol := col
	if t.HasColumn("order_id") {
		keyCol = "order_id"
	}

	res := newResult(id, fmt.Sprintf("Invalid values in %s", col), table, sev,
		bad.Len(), t.Len(), sampleKeys(bad, []string{keyCol}))
	return res, bad, nil
}

// ruleAmountNonNegative flags orders whose amount is null, unparseable as a
// number, or negative.
func ruleAmountNonNegative(orders *dataset.Table, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	if err := orders.Require("orders", "order_id", "order_amount"); err != nil {
		return RuleResult{}, nil, err
	}

	bad := orders.Filter(func(r dataset.Row) bool {
		if r.IsNull("order_amount") {
			return true
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(r.Get("order_amount")), 64)
		return err != nil || amount < 0
	})

	res := newResult(id, "Order amount must be >= 0", "orders", sev,
		bad.Len(), orders.Len(), sampleKeys(bad, []string{"order_id"}))
	return res, bad, nil
}

// ruleOrdersWithoutEvents flags orders with no event referencing them.
func ruleOrdersWithoutEvents(orders, events *dataset.Table, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	if err := orders.Require("orders", "order_id"); err != nil {
		return RuleResult{}, nil, err
	}
	if err := events.Require("order_events", "order_id"); err != nil {
		return RuleResult{}, nil, err
	}

	eventOrderIDs := idSet(events, "order_id")
	bad := orders.Filter(func(r dataset.Row) bool {
		_, ok := eventOrderIDs[normalizeID(r.Get("order_id"))]
		return !ok
	})

	res := newResult(id, "Orders without any events", "orders", sev,
		bad.Len(), orders.Len(), sampleKeys(bad, []string{"order_id"}))
	return res, bad, nil
}

// ruleEventsWithoutOrders flags events whose order_id matches no order.
func ruleEventsWithoutOrders(orders, events *dataset.Table, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	if err := orders.Require("orders", "order_id"); err != nil {
		return RuleResult{}, nil, err
	}
	if err := events.Require("order_events", "order_id", "event_id"); err != nil {
		return RuleResult{}, nil, err
	}

	orderIDs := idSet(orders, "order_id")
	bad := events.Filter(func(r dataset.Row) bool {
		_, ok := orderIDs[normalizeID(r.Get("order_id"))]
		return !ok
	})

	res := newResult(id, "Events without matching order", "order_events", sev,
		bad.Len(), events.Len(), sampleKeys(bad, []string{"order_id", "event_id"}))
	return res, bad, nil
}

// ruleCompletedWithoutPayment flags completed orders that have no
// payment_confirmed event. The denominator is the completed subset only.
func ruleCompletedWithoutPayment(orders, events *dataset.Table, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	if err := orders.Require("orders", "order_id", "order_status"); err != nil {
		return RuleResult{}, nil, err
	}
	if err := events.Require("order_events", "order_id", "event_type"); err != nil {
		return RuleResult{}, nil, err
	}

	completed := orders.Filter(func(r dataset.Row) bool {
		return r.Get("order_status") == "completed"
	}).Select("order_id")

	paid := idSet(events.Filter(func(r dataset.Row) bool {
		return r.Get("event_type") == "payment_confirmed"
	}), "order_id")

	bad := completed.Filter(func(r dataset.Row) bool {
		_, ok := paid[normalizeID(r.Get("order_id"))]
		return !ok
	})

	res := newResult(id, "Completed orders missing payment_confirmed event", "orders", sev,
		bad.Len(), completed.Len(), sampleKeys(bad, []string{"order_id"}))
	return res, bad, nil
}

// ruleTimestampParseable flags rows whose raw value in col is missing or
// does not parse as a timestamp. This is a syntactic check only; temporal
// ordering is a separate rule.
func ruleTimestampParseable(t *dataset.Table, table, col string, keyCols []string, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	required := append(append([]string(nil), keyCols...), col)
	if err := t.Require(table, required...); err != nil {
		return RuleResult{}, nil, err
	}

	bad := t.Filter(func(r dataset.Row) bool {
		if r.IsNull(col) {
			return true
		}
		_, ok := parseTimestamp(r.Get(col))
		return !ok
	})

	res := newResult(id, fmt.Sprintf("Unparseable timestamp in %s", col), table, sev,
		bad.Len(), t.Len(), sampleKeys(bad, keyCols))
	return res, bad, nil
}

// ruleEventNotBeforeOrderCreated flags events whose timestamp is strictly
// earlier than the creation time of their order. Only rows where both
// timestamps parse and the order join succeeds are considered; join misses
// are left to the orphan rule and parse failures to the parseability
// rules, so nothing is double-reported here.
func ruleEventNotBeforeOrderCreated(orders, events *dataset.Table, id string, sev Severity) (RuleResult, *dataset.Table, error) {
	if err := orders.Require("orders", "order_id", "order_created_at"); err != nil {
		return RuleResult{}, nil, err
	}
	if err := events.Require("order_events", "event_id", "order_id", "event_type", "event_timestamp"); err != nil {
		return RuleResult{}, nil, err
	}

	createdAt := make(map[string]time.Time, orders.Len())
	for i := 0; i < orders.Len(); i++ {
		row := orders.Row(i)
		if row.IsNull("order_id") {
			continue
		}
		if ts, ok := parseTimestamp(row.Get("order_created_at")); ok {
			createdAt[normalizeID(row.Get("order_id"))] = ts
		}
	}

	bad := events.Filter(func(r dataset.Row) bool {
		eventTS, ok := parseTimestamp(r.Get("event_timestamp"))
		if !ok {
			return false
		}
		created, ok := createdAt[normalizeID(r.Get("order_id"))]
		if !ok {
			return false
		}
		return eventTS.Before(created)
	})

	res := newResult(id, "Event timestamp earlier than order_created_at", "order_events", sev,
		bad.Len(), events.Len(), sampleKeys(bad, []string{"order_id", "event_id"}))
	return res, bad, nil
}
