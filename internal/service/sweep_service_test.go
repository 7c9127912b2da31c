package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	contracts "habitquest/contracts/mq"
	"habitquest/internal/model"
)

func newSweepFixture(missed ...model.Habit) (*SweepService, *fakePenaltyStore, *fakeEventStore) {
	habits := newFakeHabitStore()
	habits.missed = missed
	penalties := newFakePenaltyStore()
	events := &fakeEventStore{}
	svc := NewSweepService(&fakeTx{}, habits, penalties, events, zap.NewNop())
	return svc, penalties, events
}

func missedHabit(id, userID int64, name string) model.Habit {
	return model.Habit{ID: id, UserID: userID, Name: name, PenaltyAmount: "15.00",
		PenaltyDestination: model.DestinationCause, IsActive: true}
}

func TestSweepCreatesPenalties(t *testing.T) {
	svc, penalties, events := newSweepFixture(
		missedHabit(10, 1, "Morning run"),
		missedHabit(11, 2, "Read"),
	)

	created, err := svc.SweepDate(context.Background(), "2026-08-27")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	forUser1, _ := penalties.ListByUser(context.Background(), 1, true)
	require.Len(t, forUser1, 1)
	assert.Equal(t, "15.00", forUser1[0].Amount)
	assert.Equal(t, "2026-08-27", forUser1[0].MissedDate)
	assert.Contains(t, forUser1[0].Reason, "Morning run")

	require.Len(t, events.staged, 2)
	assert.Equal(t, contracts.RoutingKeyPenaltyCreated, events.staged[0].routingKey)
	payload := events.staged[0].payload.(contracts.PenaltyCreatedPayload)
	assert.Equal(t, "Morning run", payload.HabitName)
}

func TestSweepRerunCreatesNothing(t *testing.T) {
	svc, penalties, events := newSweepFixture(missedHabit(10, 1, "Morning run"))

	created, err := svc.SweepDate(context.Background(), "2026-08-27")
	require.NoError(t, err)
	require.Equal(t, 1, created)

	created, err = svc.SweepDate(context.Background(), "2026-08-27")
	require.NoError(t, err)
	assert.Zero(t, created, "rerun for the same date is a no-op")

	all, _ := penalties.ListByUser(context.Background(), 1, false)
	assert.Len(t, all, 1)
	assert.Len(t, events.staged, 1)
}

func TestSweepRejectsMalformedDate(t *testing.T) {
	svc, _, _ := newSweepFixture()

	_, err := svc.SweepDate(context.Background(), "yesterday")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSweepNoMissedHabits(t *testing.T) {
	svc, _, events := newSweepFixture()

	created, err := svc.SweepDate(context.Background(), "2026-08-27")
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, events.staged)
}
