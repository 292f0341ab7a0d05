package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

func newTestEvaluator(alerts *fakeAlertRepo) *AlertEvaluator {
	return NewAlertEvaluator(alerts, nil, nil, newTestMetrics(), newTestLogger())
}

func TestAlertEvaluator_AboveOrEqualThreshold(t *testing.T) {
	alerts := &fakeAlertRepo{}
	evaluator := newTestEvaluator(alerts)

	alert, created, err := evaluator.Evaluate(context.Background(), "PROD-1", "main", 10, 5, domain.AlertTypeLow, domain.AlertOriginAdjustment)
	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.False(t, created)

	// Stock equal to the threshold is not low
	alert, created, err = evaluator.Evaluate(context.Background(), "PROD-1", "main", 5, 5, domain.AlertTypeLow, domain.AlertOriginAdjustment)
	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.False(t, created)
	assert.Empty(t, alerts.alerts)
}

func TestAlertEvaluator_BelowThresholdCreatesAlert(t *testing.T) {
	alerts := &fakeAlertRepo{}
	evaluator := newTestEvaluator(alerts)

	alert, created, err := evaluator.Evaluate(context.Background(), "PROD-1", "main", 4, 5, domain.AlertTypeLow, domain.AlertOriginQueue)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.True(t, created)
	assert.Equal(t, domain.AlertStatusNew, alert.Status)
	assert.Equal(t, "main", alert.LocationID)
	assert.Equal(t, 4, alert.CurrentStock)
	assert.Equal(t, 5, alert.MinThreshold)
	assert.Equal(t, domain.AlertOriginQueue, alert.Origin)
	assert.NotEmpty(t, alert.AlertID)
}

func TestAlertEvaluator_ReusesActiveAlert(t *testing.T) {
	alerts := &fakeAlertRepo{}
	evaluator := newTestEvaluator(alerts)

	first, created, err := evaluator.Evaluate(context.Background(), "PROD-1", "main", 4, 5, domain.AlertTypeLow, domain.AlertOriginAdjustment)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := evaluator.Evaluate(context.Background(), "PROD-1", "main", 2, 5, domain.AlertTypeLow, domain.AlertOriginAdjustment)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.AlertID, second.AlertID)
	// The reused alert keeps its original snapshots
	assert.Equal(t, 4, second.CurrentStock)
	assert.Len(t, alerts.alerts, 1)
}

func TestAlertEvaluator_IndependentProducts(t *testing.T) {
	alerts := &fakeAlertRepo{}
	evaluator := newTestEvaluator(alerts)

	_, created, err := evaluator.Evaluate(context.Background(), "PROD-1", "main", 1, 5, domain.AlertTypeLow, domain.AlertOriginAdjustment)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = evaluator.Evaluate(context.Background(), "PROD-2", "main", 1, 5, domain.AlertTypeLow, domain.AlertOriginAdjustment)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, alerts.alerts, 2)
}
