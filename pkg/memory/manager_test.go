package memory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/llm"
	"github.com/papercomputeco/kin/pkg/memory"
	testutils "github.com/papercomputeco/kin/pkg/utils/test"
	"github.com/papercomputeco/kin/pkg/vector"
)

var _ = Describe("Manager", func() {
	var (
		ctx      context.Context
		chat     *testutils.MockChatClient
		embedder *testutils.MockEmbedder
		index    *testutils.MockIndex
		manager  *memory.Manager
	)

	newManager := func() *memory.Manager {
		return memory.NewManager(memory.Config{
			Chat:       chat,
			Embedder:   embedder,
			Index:      index,
			Dimensions: 3,
		}, zap.NewNop())
	}

	BeforeEach(func() {
		ctx = context.Background()
		chat = testutils.NewMockChatClient(
			`{"is_important": true, "formatted_memory": "Studied computer science at MIT"}`,
		)
		embedder = testutils.NewMockEmbedder()
		index = testutils.NewMockIndex()
		manager = newManager()
	})

	Describe("ExtractAndStore", func() {
		It("stores an important fact with its embedding and payload", func() {
			manager.ExtractAndStore(ctx, llm.NewUserMessage("I studied computer science at MIT"))

			Expect(index.Len()).To(Equal(1))
			for _, rec := range index.Records {
				Expect(rec.ID).NotTo(BeEmpty())
				Expect(rec.Vector).To(Equal(embedder.Default))
				Expect(rec.Payload.Text).To(Equal("Studied computer science at MIT"))
				Expect(rec.Payload.Timestamp).NotTo(BeZero())
			}
		})

		It("creates the collection lazily on first write", func() {
			Expect(index.CollectionExists(ctx)).To(BeFalse())

			manager.ExtractAndStore(ctx, llm.NewUserMessage("I live in Karachi"))

			Expect(index.CollectionExists(ctx)).To(BeTrue())
		})

		It("skips assistant messages without calling the analyzer", func() {
			manager.ExtractAndStore(ctx, llm.NewAssistantMessage("noted, bhai"))

			Expect(chat.CallCount()).To(BeZero())
			Expect(index.Len()).To(BeZero())
		})

		It("skips empty messages", func() {
			manager.ExtractAndStore(ctx, llm.NewUserMessage("   "))

			Expect(chat.CallCount()).To(BeZero())
			Expect(index.Len()).To(BeZero())
		})

		It("writes nothing when the analyzer marks the message unimportant", func() {
			chat.Responses = []string{`{"is_important": false, "formatted_memory": null}`}

			manager.ExtractAndStore(ctx, llm.NewUserMessage("can you remember stuff for me?"))

			Expect(index.Len()).To(BeZero())
		})

		It("writes nothing when the analyzer output is unparseable", func() {
			chat.Responses = []string{"sure, I will remember that!"}

			manager.ExtractAndStore(ctx, llm.NewUserMessage("I love Star Wars"))

			Expect(index.Len()).To(BeZero())
		})

		It("absorbs upsert failures", func() {
			index.FailUpsert = true

			Expect(func() {
				manager.ExtractAndStore(ctx, llm.NewUserMessage("I love Star Wars"))
			}).NotTo(Panic())
			Expect(index.Len()).To(BeZero())
		})

		Context("deduplication", func() {
			BeforeEach(func() {
				index.Exists = true
			})

			It("reuses the stored id for a near-duplicate fact", func() {
				index.Records["existing-id"] = vector.Record{
					ID:      "existing-id",
					Vector:  []float32{0.1, 0.2, 0.3},
					Payload: vector.Payload{Text: "Loves Star Wars"},
				}
				index.Hits = []vector.Hit{{
					Record: index.Records["existing-id"],
					Score:  0.95,
				}}
				chat.Responses = []string{`{"is_important": true, "formatted_memory": "Loves Star Wars movies"}`}

				manager.ExtractAndStore(ctx, llm.NewUserMessage("I really love the Star Wars movies"))

				Expect(index.Len()).To(Equal(1))
				Expect(index.Records["existing-id"].Payload.Text).To(Equal("Loves Star Wars movies"))
			})

			It("assigns a fresh id below the similarity threshold", func() {
				index.Records["existing-id"] = vector.Record{
					ID:      "existing-id",
					Vector:  []float32{0.9, 0.1, 0.0},
					Payload: vector.Payload{Text: "Loves Star Wars"},
				}
				index.Hits = []vector.Hit{{
					Record: index.Records["existing-id"],
					Score:  0.42,
				}}
				chat.Responses = []string{`{"is_important": true, "formatted_memory": "Works as a teacher"}`}

				manager.ExtractAndStore(ctx, llm.NewUserMessage("I work as a teacher"))

				Expect(index.Len()).To(Equal(2))
			})
		})
	})

	Describe("GetRelevantMemories", func() {
		It("returns nothing when the collection does not exist yet", func() {
			Expect(manager.GetRelevantMemories(ctx, "what do you know about me?")).To(BeEmpty())
		})

		It("returns stored facts most similar first", func() {
			index.Exists = true
			index.Hits = []vector.Hit{
				{Record: vector.Record{ID: "a", Payload: vector.Payload{Text: "Loves Star Wars"}}, Score: 0.9},
				{Record: vector.Record{ID: "b", Payload: vector.Payload{Text: "Lives in Karachi"}}, Score: 0.7},
			}

			Expect(manager.GetRelevantMemories(ctx, "movies")).To(Equal([]string{
				"Loves Star Wars",
				"Lives in Karachi",
			}))
		})

		It("returns nothing on search failure", func() {
			index.Exists = true
			index.FailSearch = true

			Expect(manager.GetRelevantMemories(ctx, "movies")).To(BeEmpty())
		})

		It("returns nothing on embed failure", func() {
			index.Exists = true
			embedder.FailOn = "movies"

			Expect(manager.GetRelevantMemories(ctx, "movies")).To(BeEmpty())
		})
	})

	Describe("FormatForPrompt", func() {
		It("renders a bullet list", func() {
			out := memory.FormatForPrompt([]string{"Loves Star Wars", "Lives in Karachi"})

			Expect(out).To(Equal("- Loves Star Wars\n- Lives in Karachi"))
		})

		It("returns empty for no memories", func() {
			Expect(memory.FormatForPrompt(nil)).To(BeEmpty())
		})
	})
})
