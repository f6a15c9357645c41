package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kin/pkg/vector"
	"github.com/papercomputeco/kin/pkg/vector/inmemory"
)

var _ = Describe("Index", func() {
	var (
		ctx   context.Context
		index *inmemory.Index
	)

	record := func(id string, vec ...float32) vector.Record {
		return vector.Record{
			ID:      id,
			Vector:  vec,
			Payload: vector.Payload{Text: "memory " + id},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		index = inmemory.NewIndex()
	})

	It("reports no collection until one is created", func() {
		Expect(index.CollectionExists(ctx)).To(BeFalse())

		Expect(index.CreateCollection(ctx, 3)).To(Succeed())

		Expect(index.CollectionExists(ctx)).To(BeTrue())
	})

	It("rejects writes before the collection exists", func() {
		err := index.Upsert(ctx, record("a", 1, 0, 0))

		Expect(err).To(MatchError(vector.ErrConnection))
	})

	It("rejects vectors of the wrong dimension", func() {
		Expect(index.CreateCollection(ctx, 3)).To(Succeed())

		err := index.Upsert(ctx, record("a", 1, 0))

		Expect(err).To(MatchError(vector.ErrDimensionMismatch))
	})

	It("rejects recreating the collection with a different dimension", func() {
		Expect(index.CreateCollection(ctx, 3)).To(Succeed())

		Expect(index.CreateCollection(ctx, 4)).To(MatchError(vector.ErrDimensionMismatch))
		Expect(index.CreateCollection(ctx, 3)).To(Succeed())
	})

	It("replaces records upserted with the same id", func() {
		Expect(index.CreateCollection(ctx, 3)).To(Succeed())

		Expect(index.Upsert(ctx, record("a", 1, 0, 0))).To(Succeed())
		updated := record("a", 0, 1, 0)
		updated.Payload.Text = "updated"
		Expect(index.Upsert(ctx, updated)).To(Succeed())

		Expect(index.Len()).To(Equal(1))
		rec, ok := index.Get("a")
		Expect(ok).To(BeTrue())
		Expect(rec.Payload.Text).To(Equal("updated"))
	})

	Describe("Search", func() {
		BeforeEach(func() {
			Expect(index.CreateCollection(ctx, 3)).To(Succeed())
			Expect(index.Upsert(ctx, record("x", 1, 0, 0))).To(Succeed())
			Expect(index.Upsert(ctx, record("y", 0, 1, 0))).To(Succeed())
			Expect(index.Upsert(ctx, record("z", 0.9, 0.1, 0))).To(Succeed())
		})

		It("orders hits by descending cosine similarity", func() {
			hits, err := index.Search(ctx, []float32{1, 0, 0}, 3)

			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(3))
			Expect(hits[0].ID).To(Equal("x"))
			Expect(hits[1].ID).To(Equal("z"))
			Expect(hits[2].ID).To(Equal("y"))
			Expect(hits[0].Score).To(BeNumerically("~", 1.0, 1e-6))
		})

		It("caps results at k", func() {
			hits, err := index.Search(ctx, []float32{1, 0, 0}, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
		})

		It("returns nothing for a missing collection", func() {
			fresh := inmemory.NewIndex()

			hits, err := fresh.Search(ctx, []float32{1, 0, 0}, 3)

			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(BeEmpty())
		})
	})
})
