package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

func newHabitFixture(habits ...model.Habit) (*HabitService, *fakeHabitStore) {
	store := newFakeHabitStore(habits...)
	return NewHabitService(store, zap.NewNop()), store
}

func TestCreateHabitAppliesDefaults(t *testing.T) {
	svc, _ := newHabitFixture()

	habit, err := svc.Create(context.Background(), 1, HabitInput{
		Name:     "  Morning run  ",
		Category: model.CategoryPhysical,
	})
	require.NoError(t, err)

	assert.Equal(t, "Morning run", habit.Name)
	assert.Equal(t, DefaultExpReward, habit.ExpReward)
	assert.Equal(t, "15.00", habit.PenaltyAmount)
	assert.Equal(t, model.DestinationCause, habit.PenaltyDestination)
	assert.True(t, habit.IsActive)
}

func TestCreateHabitValidation(t *testing.T) {
	svc, _ := newHabitFixture()

	cases := []HabitInput{
		{Name: "", Category: model.CategoryPhysical},
		{Name: "x", Category: "cooking"},
		{Name: "x", Category: model.CategoryMental, ExpReward: -5},
		{Name: "x", Category: model.CategoryMental, ExpReward: 5000},
		{Name: "x", Category: model.CategoryMental, PenaltyAmount: "lots"},
		{Name: "x", Category: model.CategoryMental, PenaltyAmount: "-1.00"},
		{Name: "x", Category: model.CategoryMental, PenaltyDestination: "charity-of-choice"},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), 1, in)
		assert.ErrorIs(t, err, ErrValidation, "input %+v", in)
	}
}

func TestUpdateHabitChecksOwnership(t *testing.T) {
	svc, _ := newHabitFixture(model.Habit{ID: 1, UserID: 99, Name: "x", Category: model.CategoryMental, IsActive: true})

	_, err := svc.Update(context.Background(), 1, 1, HabitInput{Name: "y", Category: model.CategoryMental})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestDeleteHabitSoftDeletes(t *testing.T) {
	svc, store := newHabitFixture(model.Habit{ID: 1, UserID: 1, Name: "x", Category: model.CategoryMental, IsActive: true})

	require.NoError(t, svc.Delete(context.Background(), 1, 1))

	habit, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err, "row survives deletion")
	assert.False(t, habit.IsActive)

	active, _ := svc.List(context.Background(), 1)
	assert.Empty(t, active)
}

func TestDeleteHabitUnknown(t *testing.T) {
	svc, _ := newHabitFixture()

	err := svc.Delete(context.Background(), 1, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
