package workflow_test

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/image"
	"github.com/papercomputeco/kin/pkg/memory"
	"github.com/papercomputeco/kin/pkg/persona"
	"github.com/papercomputeco/kin/pkg/router"
	"github.com/papercomputeco/kin/pkg/session"
	testutils "github.com/papercomputeco/kin/pkg/utils/test"
	"github.com/papercomputeco/kin/pkg/workflow"
)

var _ = Describe("Engine", func() {
	var (
		ctx          context.Context
		chat         *testutils.MockChatClient
		routerChat   *testutils.MockChatClient
		composerChat *testutils.MockChatClient
		renderer     *testutils.MockRenderer
		synthesizer  *testutils.MockSynthesizer
		publisher    *testutils.MockPublisher
		store        *session.InMemoryStore
		mem          *memory.Manager
	)

	newEngine := func() *workflow.Engine {
		return workflow.NewEngine(workflow.Config{
			Chat:        chat,
			Router:      router.NewRouter(router.Config{Chat: routerChat}, zap.NewNop()),
			Memory:      mem,
			Persona:     persona.Default(),
			Store:       store,
			Composer:    image.NewComposer(image.ComposerConfig{Chat: composerChat}, zap.NewNop()),
			Renderer:    renderer,
			Synthesizer: synthesizer,
			Publisher:   publisher,
		}, zap.NewNop())
	}

	BeforeEach(func() {
		ctx = context.Background()
		chat = testutils.NewMockChatClient("arre hello, kya scene hai")
		routerChat = testutils.NewMockChatClient("conversation")
		composerChat = testutils.NewMockChatClient(
			`{"narrative": "sunset at seaview rn", "image_prompt": "golden hour beach"}`,
			`{"content": "golden hour beach, cinematic, 35mm"}`,
		)
		renderer = testutils.NewMockRenderer()
		synthesizer = testutils.NewMockSynthesizer()
		publisher = testutils.NewMockPublisher()
		store = session.NewInMemoryStore()
		mem = nil
	})

	Describe("conversation turns", func() {
		It("produces a single text response and persists the thread", func() {
			result, err := newEngine().Run(ctx, "t1", "hello")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Workflow).To(Equal(router.ModalityConversation))
			Expect(result.ResponseText).To(Equal("arre hello, kya scene hai"))
			Expect(result.Media).To(BeNil())
			Expect(result.Degraded).To(BeFalse())

			thread, err := store.Load(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(thread.Messages).To(HaveLen(2))
			Expect(thread.Workflow).To(Equal("conversation"))
			Expect(thread.PendingOutput).To(BeEmpty())
		})

		It("keeps history across turns", func() {
			engine := newEngine()
			chat.Responses = []string{"first reply", "second reply"}
			routerChat.Responses = []string{"conversation", "conversation"}

			_, err := engine.Run(ctx, "t1", "hello")
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Run(ctx, "t1", "how are you")
			Expect(err).NotTo(HaveOccurred())

			thread, err := store.Load(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(thread.Messages).To(HaveLen(4))
			Expect(thread.Messages[3].Content).To(Equal("second reply"))
		})

		It("replies with an apology when generation fails", func() {
			chat.Err = context.DeadlineExceeded

			result, err := newEngine().Run(ctx, "t1", "hello")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ResponseText).To(Equal(persona.ApologyText))
			Expect(result.Workflow).To(Equal(router.ModalityConversation))
		})

		It("rejects empty input", func() {
			_, err := newEngine().Run(ctx, "t1", "   ")

			Expect(err).To(MatchError(workflow.ErrEmptyInput))
		})
	})

	Describe("image turns", func() {
		BeforeEach(func() {
			routerChat.Responses = []string{"image"}
		})

		It("renders the enhanced prompt and returns narrative plus image", func() {
			result, err := newEngine().Run(ctx, "t1", "show me what you're up to")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Workflow).To(Equal(router.ModalityImage))
			Expect(result.ResponseText).To(Equal("sunset at seaview rn"))
			Expect(result.Media).NotTo(BeNil())
			Expect(result.Media.MIME).To(Equal("image/jpeg"))
			Expect(renderer.Prompts).To(Equal([]string{"golden hour beach, cinematic, 35mm"}))
		})

		It("retries the raw prompt when the enhanced render fails", func() {
			renderer.FailCount = 1

			result, err := newEngine().Run(ctx, "t1", "show me what you're up to")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Workflow).To(Equal(router.ModalityImage))
			Expect(renderer.Prompts).To(HaveLen(2))
			Expect(renderer.Prompts[1]).To(Equal("golden hour beach"))
		})

		It("degrades to conversation when both renders fail", func() {
			renderer.FailCount = 2

			result, err := newEngine().Run(ctx, "t1", "show me what you're up to")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Workflow).To(Equal(router.ModalityConversation))
			Expect(result.Degraded).To(BeTrue())
			Expect(result.ResponseText).To(Equal("sunset at seaview rn"))
			Expect(result.Media).To(BeNil())

			thread, err := store.Load(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(thread.Workflow).To(Equal("conversation"))
			Expect(thread.PendingOutput).To(BeEmpty())
		})

		It("degrades to a plain text reply when composition fails", func() {
			composerChat.Err = context.DeadlineExceeded

			result, err := newEngine().Run(ctx, "t1", "show me what you're up to")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Workflow).To(Equal(router.ModalityConversation))
			Expect(result.Degraded).To(BeTrue())
			Expect(result.ResponseText).To(Equal("arre hello, kya scene hai"))
		})
	})

	Describe("audio turns", func() {
		BeforeEach(func() {
			routerChat.Responses = []string{"audio"}
		})

		It("voices the reply", func() {
			result, err := newEngine().Run(ctx, "t1", "send me a voice message")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Workflow).To(Equal(router.ModalityAudio))
			Expect(result.ResponseText).To(Equal("arre hello, kya scene hai"))
			Expect(result.Media).NotTo(BeNil())
			Expect(result.Media.MIME).To(Equal("audio/mpeg"))
			Expect(synthesizer.Texts).To(Equal([]string{"arre hello, kya scene hai"}))
		})

		It("degrades to text when synthesis fails", func() {
			synthesizer.Fail = true

			result, err := newEngine().Run(ctx, "t1", "send me a voice message")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Workflow).To(Equal(router.ModalityConversation))
			Expect(result.Degraded).To(BeTrue())
			Expect(result.ResponseText).To(Equal("arre hello, kya scene hai"))
			Expect(result.Media).To(BeNil())
		})
	})

	Describe("turn events", func() {
		It("publishes after every turn", func() {
			_, err := newEngine().Run(ctx, "t1", "hello")
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.Len()).To(Equal(1))
			event := publisher.Events[0]
			Expect(event.ThreadID).To(Equal("t1"))
			Expect(event.Workflow).To(Equal("conversation"))
			Expect(event.MessageCount).To(Equal(2))
			Expect(event.EventID).NotTo(BeEmpty())
		})

		It("absorbs publish failures", func() {
			publisher.Fail = true

			result, err := newEngine().Run(ctx, "t1", "hello")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ResponseText).NotTo(BeEmpty())
		})

		It("flags degraded turns", func() {
			routerChat.Responses = []string{"audio"}
			synthesizer.Fail = true

			_, err := newEngine().Run(ctx, "t1", "send me a voice message")
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.Events[0].Degraded).To(BeTrue())
		})
	})

	Describe("memory integration", func() {
		It("extracts and stores a fact after the turn", func() {
			index := testutils.NewMockIndex()
			memChat := testutils.NewMockChatClient(
				`{"is_important": true, "formatted_memory": "Loves Star Wars"}`,
			)
			mem = memory.NewManager(memory.Config{
				Chat:       memChat,
				Embedder:   testutils.NewMockEmbedder(),
				Index:      index,
				Dimensions: 3,
			}, zap.NewNop())

			_, err := newEngine().Run(ctx, "t1", "I love Star Wars")

			Expect(err).NotTo(HaveOccurred())
			Expect(index.Len()).To(Equal(1))
		})
	})

	Describe("concurrency", func() {
		It("serializes turns on the same thread", func() {
			const turns = 8

			chat.Responses = []string{"reply"}
			routerChat.Responses = []string{"conversation"}
			engine := newEngine()

			var wg sync.WaitGroup
			for i := 0; i < turns; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := engine.Run(ctx, "t1", fmt.Sprintf("msg %d", i))
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			thread, err := store.Load(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(thread.Messages).To(HaveLen(2 * turns))
			Expect(thread.Version).To(Equal(int64(turns)))
		})

		It("lets distinct threads proceed independently", func() {
			chat.Responses = []string{"reply"}
			routerChat.Responses = []string{"conversation"}
			engine := newEngine()

			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := engine.Run(ctx, fmt.Sprintf("t%d", i), "hello")
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			Expect(store.Len()).To(Equal(4))
		})
	})
})
