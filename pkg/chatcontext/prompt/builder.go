package prompt

import (
	"fmt"
	"strings"

	"ai-assistant-be/pkg/chatcontext"
	"ai-assistant-be/pkg/llm"
)

const minSummaryLength = 10

// Builder renders a context snapshot plus the incoming message into the
// message list sent to the completion provider. Output is a deterministic
// function of its inputs; section order is fixed.
type Builder struct {
	snapshot *chatcontext.Snapshot
	message  string
}

func NewBuilder(snapshot *chatcontext.Snapshot, message string) *Builder {
	return &Builder{
		snapshot: snapshot,
		message:  message,
	}
}

func (b *Builder) Build() []llm.Message {
	var sys strings.Builder

	b.writePersona(&sys)
	b.writeProfile(&sys)
	b.writeMemory(&sys)
	b.writeTopics(&sys)
	b.writeRecentMessages(&sys)
	b.writeIsolationDirective(&sys)

	return []llm.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: b.message},
	}
}

func (b *Builder) writePersona(sys *strings.Builder) {
	sys.WriteString("You are a helpful assistant with a natural, conversational personality.\n")
	sys.WriteString("Keep responses concise and direct; expand only when the user asks for depth.\n")
	sys.WriteString("Do not include reasoning tags or internal process notes in your reply.\n\n")
}

func (b *Builder) writeProfile(sys *strings.Builder) {
	p := b.snapshot.Profile
	prefs := b.snapshot.Preferences
	sys.WriteString(fmt.Sprintf("You are talking to %s (user id %s). Prefer a %s tone with %s answers.\n\n",
		p.DisplayName, p.Id, prefs.CommunicationStyle, prefs.ResponseLength))
}

func (b *Builder) writeMemory(sys *strings.Builder) {
	if len(b.snapshot.MemorySummary) <= minSummaryLength {
		return
	}
	sys.WriteString("What you remember about this user from earlier conversations:\n")
	sys.WriteString(b.snapshot.MemorySummary)
	sys.WriteString("\n\n")
}

func (b *Builder) writeTopics(sys *strings.Builder) {
	topics := b.snapshot.TopTopics
	if len(topics) == 0 {
		return
	}
	if len(topics) > 5 {
		topics = topics[:5]
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Topic
	}
	sys.WriteString("Topics this user talks about most: ")
	sys.WriteString(strings.Join(names, ", "))
	sys.WriteString("\n\n")
}

func (b *Builder) writeRecentMessages(sys *strings.Builder) {
	msgs := b.snapshot.SessionMessages
	if len(msgs) == 0 {
		msgs = b.snapshot.CrossSession
	}
	if len(msgs) == 0 {
		return
	}
	if len(msgs) > 5 {
		msgs = msgs[len(msgs)-5:]
	}
	sys.WriteString("Recent conversation:\n")
	for i, m := range msgs {
		role := "User"
		if m.Role == "assistant" {
			role = "AI"
		}
		sys.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, role, m.Content))
	}
	sys.WriteString("\n")
}

func (b *Builder) writeIsolationDirective(sys *strings.Builder) {
	sys.WriteString(fmt.Sprintf(
		"IMPORTANT: everything above belongs to user %s only. Never reveal or reuse information from any other user, and never mix this user's context with anyone else's.",
		b.snapshot.Profile.Id))
}
