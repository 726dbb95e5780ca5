package vo

// ChunkMode selects how a media file is fed to the speech service.
type ChunkMode string

const (
	// ChunkModeSingle whole file in one transcription call
	ChunkModeSingle ChunkMode = "single"
	// ChunkModeSegmented file split into fixed-duration segments
	ChunkModeSegmented ChunkMode = "segmented"
)

// ChunkPlan is the planner's decision for one media file.
type ChunkPlan struct {
	Mode                 ChunkMode
	ChunkDurationSeconds float64
	ChunkCount           int
}

// IsSingle reports whether the file goes up in one call.
func (p ChunkPlan) IsSingle() bool {
	return p.Mode == ChunkModeSingle
}

// ByteRange is an inclusive byte window of a remote object.
type ByteRange struct {
	Start int64
	End   int64
}

// Size returns the number of bytes covered by the range.
func (r ByteRange) Size() int64 {
	return r.End - r.Start + 1
}

// Segment is one extracted audio piece queued for transcription.
type Segment struct {
	Index        int
	Path         string
	StartSeconds float64
	Duration     float64
}

// SegmentResult carries one segment's transcription output.
type SegmentResult struct {
	Index    int
	Text     string
	Duration float64
}
