package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAddCountersAccumulate(t *testing.T) {
	before := testutil.ToFloat64(PenaltyCreatedCount)
	AddPenaltiesCreated(3)
	AddPenaltiesCreated(0)
	assert.Equal(t, before+3, testutil.ToFloat64(PenaltyCreatedCount))

	before = testutil.ToFloat64(AchievementUnlockCount)
	AddAchievementUnlocks(2)
	assert.Equal(t, before+2, testutil.ToFloat64(AchievementUnlockCount))
}
