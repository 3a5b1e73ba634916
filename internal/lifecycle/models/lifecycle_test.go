package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultnet/internal/lifecycle/models"
	dErrors "vaultnet/pkg/domain-errors"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newRecord(t *testing.T) *models.Record {
	t.Helper()
	r, err := models.NewRecord("NG", "Nigeria", "acct:ng:reserve", start)
	require.NoError(t, err)
	return r
}

func TestNewRecord(t *testing.T) {
	t.Run("starts pending with the full window", func(t *testing.T) {
		r := newRecord(t)
		assert.Equal(t, models.StatePending, r.State)
		assert.Equal(t, start, r.ClockStart)
		assert.Equal(t, start.Add(models.ActivationWindow), r.Expiry)
	})

	t.Run("rejects empty name and reserve ref", func(t *testing.T) {
		_, err := models.NewRecord("NG", "", "ref", start)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidReference))
		_, err = models.NewRecord("NG", "Nigeria", "", start)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidReference))
	})
}

func TestActivation(t *testing.T) {
	t.Run("pending activates", func(t *testing.T) {
		r := newRecord(t)
		require.NoError(t, r.CanActivate())
		r.ApplyActivation(start.Add(time.Hour))
		assert.Equal(t, models.StateActive, r.State)
	})

	t.Run("active cannot activate again", func(t *testing.T) {
		r := newRecord(t)
		r.ApplyActivation(start)
		assert.True(t, dErrors.HasCode(r.CanActivate(), dErrors.CodeNotPending))
	})

	t.Run("flushed cannot activate", func(t *testing.T) {
		r := newRecord(t)
		r.ApplyFlush(start.Add(models.ActivationWindow))
		assert.True(t, dErrors.HasCode(r.CanActivate(), dErrors.CodeNotPending))
	})

	t.Run("activation still allowed at the deadline", func(t *testing.T) {
		// The window gates flushing, not activation; a tenant that nobody
		// flushed yet can still activate after expiry.
		r := newRecord(t)
		assert.NoError(t, r.CanActivate())
	})
}

func TestFlush(t *testing.T) {
	t.Run("rejected before the deadline", func(t *testing.T) {
		r := newRecord(t)
		err := r.CanFlush(start.Add(models.ActivationWindow - time.Second))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDeadlineNotReached))
	})

	t.Run("allowed exactly at the deadline", func(t *testing.T) {
		r := newRecord(t)
		assert.NoError(t, r.CanFlush(start.Add(models.ActivationWindow)))
	})

	t.Run("rejected for active tenants regardless of time", func(t *testing.T) {
		r := newRecord(t)
		r.ApplyActivation(start)
		err := r.CanFlush(start.Add(models.ActivationWindow + time.Hour))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotPending))
	})

	t.Run("rejected twice", func(t *testing.T) {
		r := newRecord(t)
		expired := start.Add(models.ActivationWindow)
		require.NoError(t, r.CanFlush(expired))
		r.ApplyFlush(expired)
		assert.True(t, dErrors.HasCode(r.CanFlush(expired), dErrors.CodeNotPending))
	})
}

func TestClockQueries(t *testing.T) {
	r := newRecord(t)

	assert.False(t, r.IsExpired(start))
	assert.False(t, r.IsExpired(start.Add(models.ActivationWindow-time.Nanosecond)))
	assert.True(t, r.IsExpired(start.Add(models.ActivationWindow)))

	assert.Equal(t, models.ActivationWindow, r.TimeRemaining(start))
	assert.Equal(t, time.Duration(0), r.TimeRemaining(start.Add(models.ActivationWindow+time.Hour)))

	assert.False(t, r.IsEligibleForFlush(start))
	assert.True(t, r.IsEligibleForFlush(start.Add(models.ActivationWindow)))

	r.ApplyActivation(start)
	assert.False(t, r.IsEligibleForFlush(start.Add(models.ActivationWindow)))
}

func TestStateIsTerminal(t *testing.T) {
	assert.False(t, models.StatePending.IsTerminal())
	assert.True(t, models.StateActive.IsTerminal())
	assert.True(t, models.StateFlushed.IsTerminal())
}
