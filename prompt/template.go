package prompt

import (
	"fmt"
	"strings"

	"github.com/rotemx/RAG-sub001/core"
)

const defaultSystemTemplate = `You are a legal research assistant. Answer the question using only the numbered reference passages provided. Cite the passages you rely on by number, for example [1] or [3]. Quote statutory or regulatory language exactly where it matters. If the passages do not contain enough information to answer, say so plainly rather than speculating. You provide legal information, not legal advice.`

// renderPassage formats one numbered reference block with its source
// header.
func renderPassage(number int, passage core.RetrievedPassage) string {
	source := passage.SourceName
	if source == "" {
		source = passage.SourceId
	}

	header := fmt.Sprintf("[%d] %s", number, source)
	if passage.SectionRef != "" {
		header += ", " + passage.SectionRef
	}

	return header + "\n" + passage.Content
}

// renderHistory formats prior conversation turns as a plain transcript.
func renderHistory(history []core.Message) string {
	var sb strings.Builder
	sb.WriteString("Conversation so far:\n")
	for _, message := range history {
		sb.WriteString(roleLabel(message.Role))
		sb.WriteString(": ")
		sb.WriteString(message.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func roleLabel(role core.Role) string {
	switch role {
	case core.RoleAssistant:
		return "Assistant"
	case core.RoleSystem:
		return "System"
	default:
		return "User"
	}
}
