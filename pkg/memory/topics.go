package memory

import (
	"sort"
	"time"

	"ai-assistant-be/internal/entity"
)

// MergeTopics folds freshly extracted topics into the memory record.
// Existing topics gain frequency and a refreshed lastMentioned, new topics
// enter at frequency 1. The list is re-sorted by descending frequency and
// truncated to the cap on every call, so an over-long list from an older
// write shrinks back regardless of what this call adds.
func MergeTopics(mem *entity.UserMemory, topics []string, now time.Time) {
	for _, topic := range topics {
		found := false
		for i := range mem.KeyTopics {
			if mem.KeyTopics[i].Topic == topic {
				mem.KeyTopics[i].Frequency++
				mem.KeyTopics[i].LastMentioned = now
				found = true
				break
			}
		}
		if !found {
			mem.KeyTopics = append(mem.KeyTopics, entity.KeyTopic{
				Topic:         topic,
				Frequency:     1,
				LastMentioned: now,
			})
		}
	}

	sort.SliceStable(mem.KeyTopics, func(i, j int) bool {
		return mem.KeyTopics[i].Frequency > mem.KeyTopics[j].Frequency
	})
	if len(mem.KeyTopics) > entity.MaxKeyTopics {
		mem.KeyTopics = mem.KeyTopics[:entity.MaxKeyTopics]
	}
}
