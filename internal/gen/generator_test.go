package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersight-labs/ordersight/internal/dataset"
	"github.com/ordersight-labs/ordersight/internal/dq"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func generate(t *testing.T, profile string, n int, seed int64) (orders, events *dataset.Table) {
	t.Helper()
	p, err := ProfileByName(profile)
	require.NoError(t, err)
	o, e := Generate(Options{N: n, Seed: seed, Profile: p, Now: testNow})
	return o, e
}

func TestProfileByName(t *testing.T) {
	clean, err := ProfileByName("clean")
	require.NoError(t, err)
	assert.False(t, clean.InjectBadAmount)

	messy, err := ProfileByName("messy")
	require.NoError(t, err)
	assert.True(t, messy.InjectBadAmount)
	assert.True(t, messy.InjectOrphanEvent)

	_, err = ProfileByName("dirty")
	require.Error(t, err)
}

func TestGenerateShape(t *testing.T) {
	orders, events := generate(t, "clean", 100, 42)

	assert.Equal(t, OrderColumns, orders.Columns())
	assert.Equal(t, EventColumns, events.Columns())
	assert.Equal(t, 100, orders.Len())
	assert.Greater(t, events.Len(), 100, "every order has at least order_created")

	assert.Equal(t, "O100000", orders.Row(0).Get("order_id"))
	assert.Equal(t, "EUR", orders.Row(0).Get("currency"))
}

func TestGenerateDeterministic(t *testing.T) {
	o1, e1 := generate(t, "messy", 300, 42)
	o2, e2 := generate(t, "messy", 300, 42)

	require.Equal(t, o1.Len(), o2.Len())
	require.Equal(t, e1.Len(), e2.Len())
	for i := 0; i < o1.Len(); i++ {
		assert.Equal(t, o1.Row(i), o2.Row(i))
	}
	for i := 0; i < e1.Len(); i++ {
		assert.Equal(t, e1.Row(i), e2.Row(i))
	}
}

func TestGenerateSeedChangesOutput(t *testing.T) {
	_, e1 := generate(t, "messy", 300, 42)
	_, e2 := generate(t, "messy", 300, 43)

	same := e1.Len() == e2.Len()
	if same {
		for i := 0; i < e1.Len(); i++ {
			if e1.Row(i).Get("order_id") != e2.Row(i).Get("order_id") {
				same = false
				break
			}
		}
	}
	assert.False(t, same)
}

func TestCleanProfilePassesAllChecks(t *testing.T) {
	orders, events := generate(t, "clean", 500, 42)

	report, _, err := dq.RunChecks(orders, events, dq.DefaultEnums())
	require.NoError(t, err)

	for _, res := range report {
		assert.Zerof(t, res.FailedRows, "rule %s on clean data", res.RuleID)
	}
	assert.False(t, dq.ShouldFailRun(report))
}

func TestMessyProfileTripsChecks(t *testing.T) {
	orders, events := generate(t, "messy", 500, 42)

	report, samples, err := dq.RunChecks(orders, events, dq.DefaultEnums())
	require.NoError(t, err)

	byID := make(map[string]dq.RuleResult, len(report))
	for _, res := range report {
		byID[res.RuleID] = res
	}

	assert.Greater(t, byID["R001"].FailedRows, 0, "duplicate event_id injected")
	assert.Greater(t, byID["R004"].FailedRows, 0, "missing customer_id injected")
	assert.Greater(t, byID["R007"].FailedRows, 0, "negative amounts injected")
	assert.Greater(t, byID["R009"].FailedRows, 0, "orphan event injected")
	assert.Greater(t, byID["R010"].FailedRows, 0, "missing payment_confirmed injected")

	assert.Greater(t, samples.Len(), 0)
	assert.True(t, dq.ShouldFailRun(report), "duplicate event_id is critical")
}

func TestGenerateTimestampsParseable(t *testing.T) {
	orders, events := generate(t, "clean", 200, 7)

	byID := make(map[string]dq.RuleResult)
	report, _, err := dq.RunChecks(orders, events, dq.DefaultEnums())
	require.NoError(t, err)
	for _, res := range report {
		byID[res.RuleID] = res
	}

	assert.Zero(t, byID["R011"].FailedRows)
	assert.Zero(t, byID["R012"].FailedRows)
	assert.Zero(t, byID["R013"].FailedRows, "generated events never precede order creation")
}
