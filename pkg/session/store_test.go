package session_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kin/pkg/llm"
	"github.com/papercomputeco/kin/pkg/session"
)

// storeBehavior exercises the Store contract against any implementation.
func storeBehavior(newStore func() session.Store) {
	var (
		ctx   context.Context
		store session.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStore()
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	It("returns ErrNotFound for an unknown thread", func() {
		_, err := store.Load(ctx, "nope")

		Expect(err).To(MatchError(session.ErrNotFound))
	})

	It("round-trips a thread with its history", func() {
		thread := session.NewThread("t1")
		thread.Messages = []llm.Message{
			llm.NewUserMessage("hello"),
			llm.NewAssistantMessage("oye, kya scene"),
		}
		thread.Workflow = "conversation"

		Expect(store.Save(ctx, thread)).To(Succeed())

		loaded, err := store.Load(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Messages).To(Equal(thread.Messages))
		Expect(loaded.Workflow).To(Equal("conversation"))
		Expect(loaded.Version).To(Equal(int64(1)))
		Expect(loaded.UpdatedAt).NotTo(BeZero())
	})

	It("bumps the version on every save", func() {
		thread := session.NewThread("t1")

		Expect(store.Save(ctx, thread)).To(Succeed())
		Expect(store.Save(ctx, thread)).To(Succeed())

		loaded, err := store.Load(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Version).To(Equal(int64(2)))
	})

	It("overwrites prior state for the same thread id", func() {
		thread := session.NewThread("t1")
		thread.PendingOutput = "staged.png"
		Expect(store.Save(ctx, thread)).To(Succeed())

		thread.PendingOutput = ""
		thread.Workflow = "image"
		Expect(store.Save(ctx, thread)).To(Succeed())

		loaded, err := store.Load(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.PendingOutput).To(BeEmpty())
		Expect(loaded.Workflow).To(Equal("image"))
	})

	It("keeps threads independent", func() {
		a := session.NewThread("a")
		a.Messages = []llm.Message{llm.NewUserMessage("from a")}
		b := session.NewThread("b")
		b.Messages = []llm.Message{llm.NewUserMessage("from b")}

		Expect(store.Save(ctx, a)).To(Succeed())
		Expect(store.Save(ctx, b)).To(Succeed())

		loaded, err := store.Load(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Messages).To(HaveLen(1))
		Expect(loaded.Messages[0].Content).To(Equal("from a"))
	})
}

var _ = Describe("InMemoryStore", func() {
	storeBehavior(func() session.Store {
		return session.NewInMemoryStore()
	})

	It("hands out copies, not shared state", func() {
		ctx := context.Background()
		store := session.NewInMemoryStore()

		thread := session.NewThread("t1")
		thread.Messages = []llm.Message{llm.NewUserMessage("hello")}
		Expect(store.Save(ctx, thread)).To(Succeed())

		loaded, err := store.Load(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		loaded.Messages[0].Content = "mutated"

		again, err := store.Load(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Messages[0].Content).To(Equal("hello"))
	})
})

var _ = Describe("SQLiteStore", func() {
	storeBehavior(func() session.Store {
		store, err := session.NewSQLiteStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return store
	})
})
