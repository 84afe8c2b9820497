package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendFocusSessionsAllZero(t *testing.T) {
	var hist [24]int
	assert.Empty(t, RecommendFocusSessions(hist))
}

func TestRecommendFocusSessionsSingleSpike(t *testing.T) {
	var hist [24]int
	hist[10] = 5

	sessions := RecommendFocusSessions(hist)

	require.Len(t, sessions, 1)
	assert.Equal(t, 10, sessions[0].StartHour)
	assert.Equal(t, 11, sessions[0].EndHour)
	assert.InDelta(t, 5, sessions[0].Intensity, 1e-9)
	assert.NotEqual(t, uuid.Nil, sessions[0].ID)
}

func TestRecommendFocusSessionsThresholdIsStrict(t *testing.T) {
	var hist [24]int
	hist[5] = 4
	hist[6] = 2 // exactly half the peak: below the cut

	sessions := RecommendFocusSessions(hist)

	require.Len(t, sessions, 1)
	assert.Equal(t, 5, sessions[0].StartHour)
	assert.Equal(t, 6, sessions[0].EndHour)
}

func TestRecommendFocusSessionsClustersAndRanking(t *testing.T) {
	var hist [24]int
	hist[9], hist[10], hist[11] = 4, 5, 4 // sustained morning block
	hist[15] = 5                          // isolated afternoon spike

	sessions := RecommendFocusSessions(hist)

	require.Len(t, sessions, 2)
	// The spike averages 5/h, the block 13/3 ≈ 4.33/h.
	assert.Equal(t, 15, sessions[0].StartHour)
	assert.Equal(t, 16, sessions[0].EndHour)
	assert.InDelta(t, 5, sessions[0].Intensity, 1e-9)

	assert.Equal(t, 9, sessions[1].StartHour)
	assert.Equal(t, 12, sessions[1].EndHour)
	assert.InDelta(t, 13.0/3.0, sessions[1].Intensity, 1e-9)
}

func TestRecommendFocusSessionsTieOrdersByStartHour(t *testing.T) {
	var hist [24]int
	hist[8] = 6
	hist[19] = 6

	sessions := RecommendFocusSessions(hist)

	require.Len(t, sessions, 2)
	assert.Equal(t, 8, sessions[0].StartHour)
	assert.Equal(t, 19, sessions[1].StartHour)
}

func TestRecommendFocusSessionsClosesAtMidnight(t *testing.T) {
	var hist [24]int
	hist[22], hist[23] = 7, 8

	sessions := RecommendFocusSessions(hist)

	require.Len(t, sessions, 1)
	assert.Equal(t, 22, sessions[0].StartHour)
	assert.Equal(t, 24, sessions[0].EndHour)
	assert.InDelta(t, 7.5, sessions[0].Intensity, 1e-9)
	assert.Equal(t, "22:00 - 24:00", sessions[0].TimeRange())
}
