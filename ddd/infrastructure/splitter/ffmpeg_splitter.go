package splitter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"transcription-service/ddd/domain/port"
	"transcription-service/ddd/domain/vo"
	"transcription-service/pkg/config"
	"transcription-service/pkg/logger"
)

// FFmpegSplitter implements port.MediaSplitter with local ffmpeg/ffprobe.
type FFmpegSplitter struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

func NewFFmpegSplitter(cfg config.SplitterConfig) port.MediaSplitter {
	return &FFmpegSplitter{
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		timeout:     cfg.Timeout,
	}
}

// ProbeDuration asks ffprobe for the container duration in seconds.
func (s *FFmpegSplitter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe %s: %v", port.ErrProbeFailed, path, err)
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || val <= 0 {
		return 0, fmt.Errorf("%w: unparseable ffprobe output %q", port.ErrProbeFailed, strings.TrimSpace(string(out)))
	}
	return val, nil
}

// Split extracts chunkCount mono 16kHz WAV segments of chunkDuration
// seconds each into tempDir. Every produced file is verified non-empty;
// on any failure the segments produced so far are removed.
func (s *FFmpegSplitter) Split(ctx context.Context, path, tempDir string, chunkDuration float64, chunkCount int) ([]vo.Segment, error) {
	if chunkCount < 1 {
		return nil, fmt.Errorf("invalid chunk count %d", chunkCount)
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create segment dir: %w", err)
	}

	segments := make([]vo.Segment, 0, chunkCount)
	for i := 0; i < chunkCount; i++ {
		if err := ctx.Err(); err != nil {
			s.removeSegments(segments)
			return nil, err
		}

		start := float64(i) * chunkDuration
		segPath := filepath.Join(tempDir, fmt.Sprintf("segment_%03d.wav", i))
		if err := s.extractSegment(ctx, path, segPath, start, chunkDuration); err != nil {
			s.removeSegments(segments)
			return nil, err
		}

		info, err := os.Stat(segPath)
		if err != nil || info.Size() == 0 {
			_ = os.Remove(segPath)
			s.removeSegments(segments)
			return nil, fmt.Errorf("segment %d is empty or unreadable", i)
		}

		segments = append(segments, vo.Segment{
			Index:        i,
			Path:         segPath,
			StartSeconds: start,
			Duration:     chunkDuration,
		})
	}

	logger.Info("media split into segments", map[string]interface{}{
		"input":          path,
		"segments":       len(segments),
		"chunk_duration": chunkDuration,
	})
	return segments, nil
}

// extractSegment cuts [start, start+duration) and downmixes to the mono
// 16kHz PCM the speech service expects.
func (s *FFmpegSplitter) extractSegment(ctx context.Context, inputPath, outputPath string, start, duration float64) error {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, s.ffmpegPath,
		"-v", "error",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-y",
		outputPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		tail := string(out)
		if len(tail) > 512 {
			tail = tail[len(tail)-512:]
		}
		return fmt.Errorf("ffmpeg extract %s at %s: %v: %s", outputPath, formatSeconds(start), err, strings.TrimSpace(tail))
	}
	return nil
}

func (s *FFmpegSplitter) removeSegments(segments []vo.Segment) {
	for _, seg := range segments {
		if err := os.Remove(seg.Path); err != nil && !os.IsNotExist(err) {
			logger.Warnf("remove segment %s: %v", seg.Path, err)
		}
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
