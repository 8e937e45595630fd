package memory

import (
	"fmt"
	"strings"

	"ai-assistant-be/internal/entity"
)

// AppendToSummary appends interaction text to the rolling summary with
// trailing-window retention. When the summary has grown past the soft cap
// only the trailing window minus a margin is kept before appending, and the
// result is hard-truncated to the trailing hard cap. Old text is discarded
// first; recency wins.
func AppendToSummary(mem *entity.UserMemory, text string) {
	summary := mem.Summary
	if len(summary) > entity.SummarySoftCap {
		keep := entity.SummarySoftCap - entity.SummaryMargin
		summary = summary[len(summary)-keep:]
	}
	if summary != "" {
		summary += "\n"
	}
	summary += text
	if len(summary) > entity.SummaryHardCap {
		summary = summary[len(summary)-entity.SummaryHardCap:]
	}
	mem.Summary = summary
}

// RegenerateSummaryIfDue rebuilds a compact summary from the structured
// parts of the memory record on every 20th message, replacing the rolling
// text entirely. Returns true when a rebuild happened.
func RegenerateSummaryIfDue(mem *entity.UserMemory) bool {
	if mem.Metrics.TotalMessages == 0 || mem.Metrics.TotalMessages%entity.SummaryRebuildEvery != 0 {
		return false
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("User has exchanged %d messages.", mem.Metrics.TotalMessages))

	if top := mem.TopTopics(10); len(top) > 0 {
		names := make([]string, len(top))
		for i, t := range top {
			names[i] = t.Topic
		}
		b.WriteString(" Frequently discussed: ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(".")
	}

	b.WriteString(fmt.Sprintf(" Prefers %s communication with %s responses.",
		mem.Preferences.CommunicationStyle, mem.Preferences.ResponseLength))

	if len(mem.Preferences.Interests) > 0 {
		b.WriteString(" Interests: ")
		b.WriteString(strings.Join(mem.Preferences.Interests, ", "))
		b.WriteString(".")
	}

	mem.Summary = b.String()
	mem.MemoryVersion++
	return true
}
