package memory

import (
	"fmt"
	"testing"
	"time"

	"ai-assistant-be/internal/entity"
)

func TestMergeTopicsInsertAndIncrement(t *testing.T) {
	mem := &entity.UserMemory{}
	now := time.Now()

	MergeTopics(mem, []string{"golang", "hiking"}, now)
	if len(mem.KeyTopics) != 2 {
		t.Fatalf("got %d topics, want 2", len(mem.KeyTopics))
	}
	for _, topic := range mem.KeyTopics {
		if topic.Frequency != 1 {
			t.Errorf("topic %q frequency = %d, want 1", topic.Topic, topic.Frequency)
		}
	}

	later := now.Add(time.Minute)
	MergeTopics(mem, []string{"golang"}, later)
	if len(mem.KeyTopics) != 2 {
		t.Fatalf("merge duplicated a topic: %d entries", len(mem.KeyTopics))
	}
	if mem.KeyTopics[0].Topic != "golang" {
		t.Errorf("expected golang sorted first, got %q", mem.KeyTopics[0].Topic)
	}
	if mem.KeyTopics[0].Frequency != 2 {
		t.Errorf("golang frequency = %d, want 2", mem.KeyTopics[0].Frequency)
	}
	if !mem.KeyTopics[0].LastMentioned.Equal(later) {
		t.Errorf("lastMentioned not refreshed")
	}
}

func TestMergeTopicsMonotonic(t *testing.T) {
	mem := &entity.UserMemory{}
	now := time.Now()
	topics := []string{"kubernetes", "docker"}

	MergeTopics(mem, topics, now)
	MergeTopics(mem, topics, now)

	if len(mem.KeyTopics) != 2 {
		t.Fatalf("got %d topics after double merge, want 2", len(mem.KeyTopics))
	}
	for _, topic := range mem.KeyTopics {
		if topic.Frequency != 2 {
			t.Errorf("topic %q frequency = %d, want 2", topic.Topic, topic.Frequency)
		}
	}
}

func TestMergeTopicsCap(t *testing.T) {
	mem := &entity.UserMemory{}
	now := time.Now()

	for batch := 0; batch < 8; batch++ {
		topics := make([]string, 10)
		for i := range topics {
			topics[i] = fmt.Sprintf("topic%d-%d", batch, i)
		}
		MergeTopics(mem, topics, now)
		if len(mem.KeyTopics) > entity.MaxKeyTopics {
			t.Fatalf("topic list grew to %d, cap is %d", len(mem.KeyTopics), entity.MaxKeyTopics)
		}
	}
	if len(mem.KeyTopics) != entity.MaxKeyTopics {
		t.Errorf("got %d topics, want exactly %d after 80 distinct topics", len(mem.KeyTopics), entity.MaxKeyTopics)
	}
}

func TestMergeTopicsRepairsOversizedList(t *testing.T) {
	mem := &entity.UserMemory{}
	for i := 0; i < 60; i++ {
		mem.KeyTopics = append(mem.KeyTopics, entity.KeyTopic{
			Topic:     fmt.Sprintf("stale%d", i),
			Frequency: 1,
		})
	}

	MergeTopics(mem, []string{"fresh"}, time.Now())
	if len(mem.KeyTopics) != entity.MaxKeyTopics {
		t.Errorf("oversized list not truncated: %d entries", len(mem.KeyTopics))
	}
}
