package persona_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kin/pkg/llm"
	"github.com/papercomputeco/kin/pkg/persona"
)

var _ = Describe("Persona", func() {
	Describe("SystemPrompt", func() {
		It("injects memory context and current activity", func() {
			p := persona.Default()
			prompt := p.SystemPrompt("- Loves Star Wars", "Deep work at the office.")

			Expect(prompt).To(ContainSubstring("- Loves Star Wars"))
			Expect(prompt).To(ContainSubstring("Deep work at the office."))
			Expect(prompt).To(ContainSubstring(p.Name))
		})

		It("substitutes a placeholder when no memories exist", func() {
			p := persona.Default()
			prompt := p.SystemPrompt("", "Sleeping.")

			Expect(prompt).To(ContainSubstring("nothing known about the user yet"))
			Expect(prompt).NotTo(ContainSubstring("%[1]s"))
			Expect(prompt).NotTo(ContainSubstring("%[2]s"))
		})
	})

	Describe("RenderHistory", func() {
		messages := []llm.Message{
			llm.NewUserMessage("hello"),
			llm.NewAssistantMessage("oye, kya scene hai"),
			llm.NewUserMessage("nothing much"),
		}

		It("renders a role-prefixed transcript", func() {
			out := persona.RenderHistory(messages, 0)

			Expect(out).To(Equal("User: hello\nAssistant: oye, kya scene hai\nUser: nothing much"))
		})

		It("keeps only the trailing window when limited", func() {
			out := persona.RenderHistory(messages, 2)

			Expect(out).NotTo(ContainSubstring("hello"))
			Expect(strings.Count(out, "\n")).To(Equal(1))
		})

		It("treats a message with no role as the user's", func() {
			// Threads deserialized from older or hand-edited rows can
			// carry messages without a role.
			out := persona.RenderHistory([]llm.Message{{Content: "hello"}}, 0)

			Expect(out).To(Equal("User: hello"))
		})
	})

	Describe("CurrentActivity", func() {
		It("returns the scheduled activity for the hour", func() {
			// Monday 11:00.
			at := time.Date(2026, time.August, 24, 11, 0, 0, 0, time.UTC)

			Expect(persona.CurrentActivity(at)).To(ContainSubstring("Deep work"))
		})

		It("covers every hour of every weekday", func() {
			for day := 0; day < 7; day++ {
				for hour := 0; hour < 24; hour++ {
					at := time.Date(2026, time.August, 23+day, hour, 0, 0, 0, time.UTC)

					Expect(persona.CurrentActivity(at)).NotTo(BeEmpty())
				}
			}
		})
	})
})
