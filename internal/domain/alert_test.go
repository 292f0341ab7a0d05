package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlert(t *testing.T) {
	alert, err := NewAlert("PROD-1", "main", AlertTypeLow, 4, 5, AlertOriginAdjustment)
	require.NoError(t, err)

	assert.NotEmpty(t, alert.AlertID)
	assert.Equal(t, AlertStatusNew, alert.Status)
	assert.Equal(t, "main", alert.LocationID)
	assert.Equal(t, AlertTypeLow, alert.AlertType)
	assert.Equal(t, 4, alert.CurrentStock)
	assert.Equal(t, 5, alert.MinThreshold)
	assert.True(t, alert.IsActive())
	require.Len(t, alert.DomainEvents, 1)
	_, ok := alert.DomainEvents[0].(*AlertCreatedEvent)
	assert.True(t, ok)

	_, err = NewAlert("", "main", AlertTypeLow, 4, 5, AlertOriginAdjustment)
	assert.ErrorIs(t, err, ErrEmptyProductID)
}

func TestNewAlert_UnknownTypeDefaultsToLow(t *testing.T) {
	alert, err := NewAlert("PROD-1", "main", AlertType("BOGUS"), 4, 5, AlertOriginQueue)
	require.NoError(t, err)
	assert.Equal(t, AlertTypeLow, alert.AlertType)
}

func TestNewAlert_FreshIdentityPerAlert(t *testing.T) {
	first, err := NewAlert("PROD-1", "main", AlertTypeLow, 4, 5, AlertOriginAdjustment)
	require.NoError(t, err)
	second, err := NewAlert("PROD-1", "main", AlertTypeLow, 3, 5, AlertOriginAdjustment)
	require.NoError(t, err)

	assert.NotEqual(t, first.AlertID, second.AlertID)
}

func TestAlert_Acknowledge(t *testing.T) {
	alert, err := NewAlert("PROD-1", "main", AlertTypeLow, 4, 5, AlertOriginAdjustment)
	require.NoError(t, err)

	changed, err := alert.Acknowledge("alice")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, AlertStatusAcknowledged, alert.Status)
	assert.Equal(t, "alice", alert.AcknowledgedBy)
	require.NotNil(t, alert.AcknowledgedAt)
	assert.False(t, alert.IsActive())
}

func TestAlert_Acknowledge_Idempotent(t *testing.T) {
	alert, err := NewAlert("PROD-1", "main", AlertTypeLow, 4, 5, AlertOriginAdjustment)
	require.NoError(t, err)

	changed, err := alert.Acknowledge("alice")
	require.NoError(t, err)
	require.True(t, changed)
	firstAt := *alert.AcknowledgedAt

	changed, err = alert.Acknowledge("bob")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "alice", alert.AcknowledgedBy)
	assert.Equal(t, firstAt, *alert.AcknowledgedAt)
}

func TestAlert_Acknowledge_DefaultUser(t *testing.T) {
	alert, err := NewAlert("PROD-1", "main", AlertTypeLow, 4, 5, AlertOriginAdjustment)
	require.NoError(t, err)

	changed, err := alert.Acknowledge("")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "system", alert.AcknowledgedBy)
}

func TestAlert_ForwardOnlyLifecycle(t *testing.T) {
	alert, err := NewAlert("PROD-1", "main", AlertTypeLow, 4, 5, AlertOriginAdjustment)
	require.NoError(t, err)

	require.NoError(t, alert.MarkProcessing())
	assert.Equal(t, AlertStatusProcessing, alert.Status)

	require.NoError(t, alert.MarkSent())
	assert.Equal(t, AlertStatusSent, alert.Status)

	// No backward moves
	assert.ErrorIs(t, alert.MarkProcessing(), ErrInvalidStatusTransition)

	changed, err := alert.Acknowledge("alice")
	require.NoError(t, err)
	assert.True(t, changed)

	assert.ErrorIs(t, alert.MarkSent(), ErrInvalidStatusTransition)
}

func TestAlert_SkipAheadAllowed(t *testing.T) {
	alert, err := NewAlert("PROD-1", "main", AlertTypeLow, 4, 5, AlertOriginAdjustment)
	require.NoError(t, err)

	// NEW straight to ACKNOWLEDGED is a forward move
	changed, err := alert.Acknowledge("alice")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestAlertStatus_IsValid(t *testing.T) {
	assert.True(t, AlertStatusNew.IsValid())
	assert.True(t, AlertStatusAcknowledged.IsValid())
	assert.False(t, AlertStatus("CLOSED").IsValid())
}
