package memory

import (
	"strings"
	"testing"

	"ai-assistant-be/internal/entity"
)

func TestAppendToSummaryBasic(t *testing.T) {
	mem := &entity.UserMemory{}
	AppendToSummary(mem, "User: hello\nAI: hi there\n")
	if !strings.Contains(mem.Summary, "hello") {
		t.Errorf("summary missing appended text: %q", mem.Summary)
	}
}

func TestAppendToSummaryTrailingWindow(t *testing.T) {
	mem := &entity.UserMemory{
		Summary: strings.Repeat("a", 4200),
	}
	AppendToSummary(mem, strings.Repeat("b", 900))

	if len(mem.Summary) > entity.SummaryHardCap {
		t.Fatalf("summary length %d exceeds hard cap %d", len(mem.Summary), entity.SummaryHardCap)
	}
	if !strings.HasSuffix(mem.Summary, "b") {
		t.Errorf("new text not at the tail of the summary")
	}
	// Oldest text was discarded down to the retained window before append.
	wantRetained := entity.SummarySoftCap - entity.SummaryMargin
	aCount := strings.Count(mem.Summary, "a")
	if aCount != wantRetained {
		t.Errorf("retained %d old characters, want %d", aCount, wantRetained)
	}
}

func TestAppendToSummaryNeverExceedsHardCap(t *testing.T) {
	mem := &entity.UserMemory{}
	chunk := strings.Repeat("x", 1200)
	for i := 0; i < 50; i++ {
		AppendToSummary(mem, chunk)
		if len(mem.Summary) > entity.SummaryHardCap {
			t.Fatalf("iteration %d: summary length %d exceeds hard cap %d", i, len(mem.Summary), entity.SummaryHardCap)
		}
	}
}

func TestRegenerateSummaryIfDue(t *testing.T) {
	tests := []struct {
		name     string
		messages int
		want     bool
	}{
		{name: "19th message is not due", messages: 19, want: false},
		{name: "20th message is due", messages: 20, want: true},
		{name: "40th message is due", messages: 40, want: true},
		{name: "zero messages never due", messages: 0, want: false},
		{name: "21st message is not due", messages: 21, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := &entity.UserMemory{
				Summary:     "old rolling text",
				Preferences: entity.DefaultMemoryPreferences(),
			}
			mem.Metrics.TotalMessages = tt.messages

			got := RegenerateSummaryIfDue(mem)
			if got != tt.want {
				t.Fatalf("RegenerateSummaryIfDue with %d messages = %v, want %v", tt.messages, got, tt.want)
			}
			if got && mem.Summary == "old rolling text" {
				t.Errorf("summary was not replaced on rebuild")
			}
			if got && mem.MemoryVersion != 1 {
				t.Errorf("memoryVersion = %d, want 1 after bump from 0", mem.MemoryVersion)
			}
			if !got && mem.Summary != "old rolling text" {
				t.Errorf("summary changed although rebuild was not due")
			}
		})
	}
}

func TestRegenerateSummaryIncludesTopics(t *testing.T) {
	mem := &entity.UserMemory{Preferences: entity.DefaultMemoryPreferences()}
	mem.Metrics.TotalMessages = 20
	mem.KeyTopics = []entity.KeyTopic{
		{Topic: "golang", Frequency: 7},
		{Topic: "hiking", Frequency: 3},
	}

	if !RegenerateSummaryIfDue(mem) {
		t.Fatal("expected rebuild at 20 messages")
	}
	for _, want := range []string{"golang", "hiking", "casual", "moderate"} {
		if !strings.Contains(mem.Summary, want) {
			t.Errorf("rebuilt summary missing %q: %s", want, mem.Summary)
		}
	}
}
