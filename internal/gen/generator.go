// Package gen produces synthetic orders and order_events tables for the
// raw layer. A profile controls whether typical data-quality defects are
// injected, so the downstream checks have something real to find.
package gen

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/ordersight-labs/ordersight/internal/dataset"
)

// OrderColumns is the column order of the generated orders table.
var OrderColumns = []string{
	"order_id", "customer_id", "order_created_at", "order_amount", "currency", "order_status",
}

// EventColumns is the column order of the generated order_events table.
var EventColumns = []string{
	"event_id", "order_id", "event_type", "event_timestamp", "source_system",
}

// tsLayout renders timestamps the way the raw layer stores them.
const tsLayout = "2006-01-02 15:04:05-07:00"

// Profile controls which quality defects are injected into the data.
type Profile struct {
	Name                       string
	InjectBadAmount            bool
	InjectMissingCustomer      bool
	InjectMissingPayment       bool
	InjectOrphanEvent          bool
	InjectDuplicateEventID     bool
	InjectCancelledThenShipped bool
}

var profiles = map[string]Profile{
	"clean": {Name: "clean"},
	"messy": {
		Name:                       "messy",
		InjectBadAmount:            true,
		InjectMissingCustomer:      true,
		InjectMissingPayment:       true,
		InjectOrphanEvent:          true,
		InjectDuplicateEventID:     true,
		InjectCancelledThenShipped: true,
	},
}

// ProfileByName returns a known generation profile.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (want clean or messy)", name)
	}
	return p, nil
}

// Options configures one generation run. The same options always produce
// the same tables.
type Options struct {
	N       int
	Seed    int64
	Profile Profile
	// Now anchors the time window; orders spread over the 60 days before it.
	Now time.Time
}

// Generate builds the orders and order_events tables.
func Generate(opts Options) (*dataset.Table, *dataset.Table) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC()

	rng := rand.New(rand.NewSource(opts.Seed))

	orders, createdAt, statuses := generateOrders(opts.N, now, rng, opts.Profile)
	events := generateEvents(orders, createdAt, statuses, now, rng, opts.Profile)
	return orders, events
}

// generateOrders builds the orders table. Orders default to completed;
// 8% are cancelled and 3% of the rest refunded. The parsed creation times
// and final statuses are returned for event generation.
func generateOrders(n int, now time.Time, rng *rand.Rand, profile Profile) (*dataset.Table, []time.Time, []string) {
	baseTime := now.Add(-60 * 24 * time.Hour)

	createdAt := make([]time.Time, n)
	statuses := make([]string, n)
	for i := 0; i < n; i++ {
		createdAt[i] = baseTime.Add(time.Duration(i*7) * time.Minute)
		statuses[i] = "completed"
	}
	for _, i := range sampleIndices(n, 0.08, rng) {
		statuses[i] = "cancelled"
	}
	for _, i := range sampleIndices(n, 0.03, rng) {
		if statuses[i] != "cancelled" {
			statuses[i] = "refunded"
		}
	}

	amounts := make([]string, n)
	for i := 0; i < n; i++ {
		amounts[i] = strconv.FormatFloat(float64(i%200)*1.5, 'f', -1, 64)
	}
	if profile.InjectBadAmount {
		for _, i := range sampleIndices(n, 0.01, rng) {
			amounts[i] = "-10"
		}
	}

	customers := make([]string, n)
	for i := 0; i < n; i++ {
		customers[i] = fmt.Sprintf("C%d", 10000+i%800)
	}
	if profile.InjectMissingCustomer {
		for _, i := range sampleIndices(n, 0.005, rng) {
			customers[i] = ""
		}
	}

	orders := dataset.New(OrderColumns...)
	for i := 0; i < n; i++ {
		orders.Append(dataset.Row{
			"order_id":         fmt.Sprintf("O%d", 100000+i),
			"customer_id":      customers[i],
			"order_created_at": createdAt[i].Format(tsLayout),
			"order_amount":     amounts[i],
			"currency":         "EUR",
			"order_status":     statuses[i],
		})
	}
	return orders, createdAt, statuses
}

// generateEvents derives the event log from the orders:
// every order gets order_created; completed and refunded orders normally
// get payment_confirmed; completed orders get order_shipped; cancelled
// orders get order_cancelled. The profile breaks this logic on purpose.
func generateEvents(orders *dataset.Table, createdAt []time.Time, statuses []string, now time.Time, rng *rand.Rand, profile Profile) *dataset.Table {
	events := dataset.New(EventColumns...)
	counter := 1

	add := func(orderID, eventType string, ts time.Time, source string) {
		events.Append(dataset.Row{
			"event_id":        fmt.Sprintf("E%08d", counter),
			"order_id":        orderID,
			"event_type":      eventType,
			"event_timestamp": ts.Format(tsLayout),
			"source_system":   source,
		})
		counter++
	}

	// Events arrive in shuffled order across orders, like a real stream.
	for _, i := range rng.Perm(orders.Len()) {
		row := orders.Row(i)
		orderID := row.Get("order_id")
		created := createdAt[i]
		status := statuses[i]

		orderNum, _ := strconv.Atoi(orderID[1:])
		source := "mobile"
		if orderNum%2 == 0 {
			source = "web"
		}

		add(orderID, "order_created", created.Add(5*time.Second), source)

		if status == "completed" || status == "refunded" {
			missingPayment := profile.InjectMissingPayment && orderNum%37 == 0
			if !missingPayment {
				add(orderID, "payment_confirmed", created.Add(3*time.Minute), "backend")
			}
		}

		if status == "completed" {
			add(orderID, "order_shipped", created.Add(4*time.Hour), "backend")
		}

		if status == "cancelled" {
			add(orderID, "order_cancelled", created.Add(10*time.Minute), "backend")

			if profile.InjectCancelledThenShipped && orderNum%53 == 0 {
				add(orderID, "order_shipped", created.Add(6*time.Hour), "backend")
			}
		}
	}

	if profile.InjectOrphanEvent {
		add("O999999", "order_created", now.Add(-24*time.Hour), "web")
	}

	if profile.InjectDuplicateEventID && events.Len() > 10 {
		events.Row(5)["event_id"] = events.Row(4).Get("event_id")
	}

	return events
}

// sampleIndices picks roughly frac*n distinct row indices.
func sampleIndices(n int, frac float64, rng *rand.Rand) []int {
	k := int(float64(n) * frac)
	if k > n {
		k = n
	}
	return rng.Perm(n)[:k]
}
