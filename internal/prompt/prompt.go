// Package prompt builds the system instruction and the full message list for each completion call.
// Everything in this package is a pure function over the enumerated option sets; the rendered
// instruction depends only on its four inputs, never on history or external state.
package prompt

import (
	"fmt"
	"strings"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
)

// BuildSystemPrompt renders the JesterBot instruction block embedding the four selected options
// verbatim. The result is deterministic for a given input combination.
func BuildSystemPrompt(style, safety, audience, length string) string {
	var sb strings.Builder

	sb.WriteString("You are JesterBot, a friendly, quick-witted joke-telling assistant.\n\n")
	sb.WriteString("Goals:\n")
	sb.WriteString("- Craft original jokes tailored to the user's request.\n")
	sb.WriteString(fmt.Sprintf("- Style: %s\n", style))
	sb.WriteString(fmt.Sprintf("- Safety/Tone: %s\n", safety))
	sb.WriteString(fmt.Sprintf("- Audience: %s\n", audience))
	sb.WriteString(fmt.Sprintf("- Length: %s\n\n", length))
	sb.WriteString("Guidelines:\n")
	sb.WriteString("- Deliver the joke directly (avoid meta prefaces like 'Here is a joke:').\n")
	sb.WriteString("- Keep it concise unless asked for more.\n")
	sb.WriteString("- Avoid offensive content, slurs, hate speech, or punching down.\n")
	sb.WriteString("- If requested content conflicts with the safety level, decline briefly and offer a cleaner alternative.\n")
	sb.WriteString("- Prefer clear line breaks where helpful; default to a single joke unless asked for multiple.\n")
	sb.WriteString("- If asked to explain, provide a brief explanation after the joke.\n")
	sb.WriteString("- If no topic is given, pick a playful everyday theme.\n")

	return sb.String()
}

// BuildMessages returns a new message list consisting of one system message followed by the full
// history. The input history is never mutated.
func BuildMessages(systemPrompt string, history []models.Message) []models.Message {
	messages := make([]models.Message, 0, len(history)+1)
	messages = append(messages, models.Message{
		Role:    models.RoleSystem,
		Content: systemPrompt,
	})
	messages = append(messages, history...)
	return messages
}
