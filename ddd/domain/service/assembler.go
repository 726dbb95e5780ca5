package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"transcription-service/ddd/domain/vo"
)

// ErrTranscriptTooShort means the assembled text cannot support any
// downstream analysis.
var ErrTranscriptTooShort = errors.New("assembled transcript too short")

// TranscriptAssembler joins per-segment results into one transcript.
type TranscriptAssembler struct {
	minLength int
}

func NewTranscriptAssembler(minLength int) *TranscriptAssembler {
	return &TranscriptAssembler{minLength: minLength}
}

// Assemble sorts fragments by segment index, joins their texts with single
// spaces and sums their durations. Completion order of the inputs does not
// matter.
func (a *TranscriptAssembler) Assemble(fragments []vo.SegmentResult) (string, float64, error) {
	ordered := make([]vo.SegmentResult, len(fragments))
	copy(ordered, fragments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	parts := make([]string, 0, len(ordered))
	var totalDuration float64
	for _, f := range ordered {
		totalDuration += f.Duration
		text := strings.TrimSpace(f.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}

	text := strings.Join(parts, " ")
	if len(text) < a.minLength {
		return "", 0, fmt.Errorf("%w: %d chars, need %d", ErrTranscriptTooShort, len(text), a.minLength)
	}
	return text, totalDuration, nil
}
