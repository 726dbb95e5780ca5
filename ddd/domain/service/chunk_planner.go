package service

import (
	"math"

	"transcription-service/ddd/domain/vo"
	"transcription-service/pkg/config"
)

// ChunkPlanner decides how a media file is fed to the speech service:
// one call when the file fits the upload limit, otherwise fixed-duration
// segments sized from the file's empirical bitrate. For very large remote
// objects it also plans the byte windows of a ranged download.
type ChunkPlanner struct {
	singleCallLimitBytes int64
	targetChunkBytes     int64
	minChunkSeconds      float64
	hugeFileBytes        int64
	rangeBytes           int64
}

func NewChunkPlanner(cfg config.PlannerConfig) *ChunkPlanner {
	return &ChunkPlanner{
		singleCallLimitBytes: cfg.SingleCallLimitBytes,
		targetChunkBytes:     cfg.TargetChunkBytes,
		minChunkSeconds:      cfg.MinChunkSeconds,
		hugeFileBytes:        cfg.HugeFileBytes,
		rangeBytes:           cfg.RangeBytes,
	}
}

// Plan picks the transcription strategy for a file of the given size and
// probed duration.
func (p *ChunkPlanner) Plan(sizeBytes int64, durationSeconds float64) vo.ChunkPlan {
	if sizeBytes <= p.singleCallLimitBytes || durationSeconds <= 0 {
		return vo.ChunkPlan{Mode: vo.ChunkModeSingle, ChunkCount: 1}
	}

	// Chunk duration that lands each segment near the target size at the
	// file's own bitrate, floored to bound the number of external calls
	// for very long media.
	bytesPerSecond := float64(sizeBytes) / durationSeconds
	chunkDuration := math.Floor(float64(p.targetChunkBytes) / bytesPerSecond)
	if chunkDuration < p.minChunkSeconds {
		chunkDuration = p.minChunkSeconds
	}
	if chunkDuration > durationSeconds {
		chunkDuration = math.Ceil(durationSeconds)
	}

	count := int(math.Ceil(durationSeconds / chunkDuration))
	if count < 1 {
		count = 1
	}

	return vo.ChunkPlan{
		Mode:                 vo.ChunkModeSegmented,
		ChunkDurationSeconds: chunkDuration,
		ChunkCount:           count,
	}
}

// IsHuge reports whether a remote object should be fetched with ranged
// downloads instead of one GET.
func (p *ChunkPlanner) IsHuge(sizeBytes int64) bool {
	return sizeBytes > p.hugeFileBytes
}

// PlanByteRanges splits an object of sizeBytes into inclusive download
// windows. Independent of transcription chunking.
func (p *ChunkPlanner) PlanByteRanges(sizeBytes int64) []vo.ByteRange {
	if sizeBytes <= 0 {
		return nil
	}
	ranges := make([]vo.ByteRange, 0, sizeBytes/p.rangeBytes+1)
	for start := int64(0); start < sizeBytes; start += p.rangeBytes {
		end := start + p.rangeBytes - 1
		if end > sizeBytes-1 {
			end = sizeBytes - 1
		}
		ranges = append(ranges, vo.ByteRange{Start: start, End: end})
	}
	return ranges
}
