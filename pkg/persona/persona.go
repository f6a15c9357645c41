// Package persona holds the companion's character definition, the prompt
// templates consumed by the router and generators, and the weekday schedule
// that anchors the persona in a daily routine.
package persona

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/kin/pkg/llm"
)

// In-band markers written by the transport ahead of invoking the workflow.
// The router and character prompts key off these; the core never produces
// them itself.
const (
	// MarkerUserImage flags that the user attached an image to this turn.
	MarkerUserImage = "[USER_SENT_IMAGE]"

	// MarkerImageAnalysis prefixes the embedded vision-analysis text.
	MarkerImageAnalysis = "[Image Analysis:"
)

// Persona is the character the companion plays.
type Persona struct {
	// Name is the companion's first name.
	Name string

	// Card is the character description injected as the system prompt for
	// conversation replies. It may contain the %[1]s (memory context) and
	// %[2]s (current activity) slots.
	Card string
}

// Default returns the stock companion persona.
func Default() *Persona {
	return &Persona{
		Name: "Muzzamil",
		Card: characterCard,
	}
}

// SystemPrompt renders the character card with the retrieved memory context
// and the schedule's current activity.
func (p *Persona) SystemPrompt(memoryContext, currentActivity string) string {
	if memoryContext == "" {
		memoryContext = "(nothing known about the user yet)"
	}
	return fmt.Sprintf(p.Card, memoryContext, currentActivity)
}

// RenderHistory flattens messages into a "Role: content" transcript for
// prompts that take the conversation as a single block of text.
func RenderHistory(messages []llm.Message, last int) string {
	if last > 0 && len(messages) > last {
		messages = messages[len(messages)-last:]
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role == "" {
			role = llm.RoleUser
		}
		role = strings.ToUpper(role[:1]) + role[1:]
		lines = append(lines, role+": "+m.Content)
	}

	return strings.Join(lines, "\n")
}
