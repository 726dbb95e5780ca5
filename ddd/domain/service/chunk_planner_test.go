package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcription-service/ddd/domain/vo"
	"transcription-service/pkg/config"
)

func testPlannerConfig() config.PlannerConfig {
	return config.PlannerConfig{
		SingleCallLimitBytes: 24 << 20,
		TargetChunkBytes:     20 << 20,
		MinChunkSeconds:      300,
		HugeFileBytes:        512 << 20,
		RangeBytes:           64 << 20,
	}
}

func TestPlanSingleCallUnderLimit(t *testing.T) {
	p := NewChunkPlanner(testPlannerConfig())

	// 45-minute, 20MB recording fits in one call
	plan := p.Plan(20<<20, 45*60)
	assert.Equal(t, vo.ChunkModeSingle, plan.Mode)
	assert.True(t, plan.IsSingle())
	assert.Equal(t, 1, plan.ChunkCount)
}

func TestPlanSegmentedChunkCount(t *testing.T) {
	p := NewChunkPlanner(testPlannerConfig())

	// 3-hour, 900MB file
	duration := float64(3 * 60 * 60)
	plan := p.Plan(900<<20, duration)
	require.Equal(t, vo.ChunkModeSegmented, plan.Mode)

	// chunk count follows ceil(D / C) for the chosen C
	expected := int(math.Ceil(duration / plan.ChunkDurationSeconds))
	assert.Equal(t, expected, plan.ChunkCount)

	// at this bitrate the target-size duration sits under the floor, so the
	// floor wins
	assert.Equal(t, float64(300), plan.ChunkDurationSeconds)
	assert.Equal(t, 36, plan.ChunkCount)
}

func TestPlanHighBitrateFloorsAtMinChunkSeconds(t *testing.T) {
	p := NewChunkPlanner(testPlannerConfig())

	// bitrate so high that the target-size duration would be under the floor
	plan := p.Plan(2<<30, 600)
	require.Equal(t, vo.ChunkModeSegmented, plan.Mode)
	assert.Equal(t, float64(300), plan.ChunkDurationSeconds)
	assert.Equal(t, 2, plan.ChunkCount)
}

func TestPlanChunkDurationNeverExceedsTotal(t *testing.T) {
	p := NewChunkPlanner(testPlannerConfig())

	// oversized file but shorter than the duration floor
	plan := p.Plan(100<<20, 120)
	require.Equal(t, vo.ChunkModeSegmented, plan.Mode)
	assert.Equal(t, 1, plan.ChunkCount)
	assert.LessOrEqual(t, plan.ChunkDurationSeconds, float64(120))
}

func TestIsHuge(t *testing.T) {
	p := NewChunkPlanner(testPlannerConfig())

	assert.False(t, p.IsHuge(512<<20))
	assert.True(t, p.IsHuge(512<<20+1))
}

func TestPlanByteRanges(t *testing.T) {
	p := NewChunkPlanner(testPlannerConfig())

	size := int64(900 << 20)
	ranges := p.PlanByteRanges(size)
	require.NotEmpty(t, ranges)

	// contiguous, inclusive, covering every byte exactly once
	assert.Equal(t, int64(0), ranges[0].Start)
	var total int64
	for i, r := range ranges {
		if i > 0 {
			assert.Equal(t, ranges[i-1].End+1, r.Start)
		}
		total += r.Size()
	}
	assert.Equal(t, size-1, ranges[len(ranges)-1].End)
	assert.Equal(t, size, total)
}

func TestPlanByteRangesEmptyObject(t *testing.T) {
	p := NewChunkPlanner(testPlannerConfig())
	assert.Nil(t, p.PlanByteRanges(0))
}
