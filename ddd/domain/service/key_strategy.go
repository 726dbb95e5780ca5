package service

import "fmt"

// KeyStrategy maps a media reference to one remote key naming convention.
// The locator tries strategies in list order, so adding or retiring a
// legacy convention is a one-line change to DefaultKeyStrategies.
type KeyStrategy interface {
	Resolve(ownerID, fileName string) string
}

// OwnerVideoKeyStrategy is the current convention: videos/user-{owner}/{filename}.
type OwnerVideoKeyStrategy struct{}

func (OwnerVideoKeyStrategy) Resolve(ownerID, fileName string) string {
	return fmt.Sprintf("videos/user-%s/%s", ownerID, fileName)
}

// FlatAudioKeyStrategy is the oldest convention: audios/{filename}.
type FlatAudioKeyStrategy struct{}

func (FlatAudioKeyStrategy) Resolve(_, fileName string) string {
	return "audios/" + fileName
}

// OwnerDirAudioKeyStrategy is the legacy per-owner layout: audios/{owner}/{filename}.
type OwnerDirAudioKeyStrategy struct{}

func (OwnerDirAudioKeyStrategy) Resolve(ownerID, fileName string) string {
	return fmt.Sprintf("audios/%s/%s", ownerID, fileName)
}

// OwnerJoinedAudioKeyStrategy is the legacy underscore-joined layout:
// audios/{owner}_{filename}.
type OwnerJoinedAudioKeyStrategy struct{}

func (OwnerJoinedAudioKeyStrategy) Resolve(ownerID, fileName string) string {
	return fmt.Sprintf("audios/%s_%s", ownerID, fileName)
}

// DefaultKeyStrategies returns the historical upload conventions in
// priority order, current first.
func DefaultKeyStrategies() []KeyStrategy {
	return []KeyStrategy{
		OwnerVideoKeyStrategy{},
		FlatAudioKeyStrategy{},
		OwnerDirAudioKeyStrategy{},
		OwnerJoinedAudioKeyStrategy{},
	}
}
