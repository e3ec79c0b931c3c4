package checkout

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/till/internal/model"
)

// TestMetrics_CountsOutcomes verifies the observer records every checkout.
func TestMetrics_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	engine := NewEngine(WithObserver(m))

	tv, err := model.NewItem("TV", decimal.NewFromInt(500), 2, model.WithShippable(2.5))
	require.NoError(t, err)
	old, err := model.NewItem("Expired", decimal.NewFromInt(200), 5, model.WithPerishable(true))
	require.NoError(t, err)

	basket := model.NewBasket()
	require.NoError(t, basket.Add(tv, 2))
	require.NoError(t, basket.Add(old, 1))

	res, err := engine.Checkout(model.NewAccount("Ahmed", decimal.NewFromInt(5000)), basket, SkipInvalidLines)
	require.NoError(t, err)
	require.True(t, res.Settled())

	_, err = engine.Checkout(model.NewAccount("Empty", decimal.NewFromInt(10)), model.NewBasket(), SkipInvalidLines)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("skip", "settled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("skip", "empty_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedLines.WithLabelValues("expired")))
	assert.Equal(t, 1030.0, testutil.ToFloat64(m.SettledAmount))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnitsSold))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PackageWeight))
}

// TestObservers_FanOut verifies every observer in the list is told.
func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	res := &Result{Outcome: OutcomeEmptyCart}

	Observers{a, b}.CheckoutFinished(res)

	assert.Same(t, res, a.results[0])
	assert.Same(t, res, b.results[0])
}
