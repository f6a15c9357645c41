package sqlitevec_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/vector"
	"github.com/papercomputeco/kin/pkg/vector/sqlitevec"
)

var _ = Describe("Driver", func() {
	var logger *zap.Logger

	BeforeEach(func() {
		logger = zap.NewNop()
	})

	record := func(id, text string, vec ...float32) vector.Record {
		return vector.Record{
			ID:      id,
			Vector:  vec,
			Payload: vector.Payload{Text: text},
		}
	}

	Describe("NewDriver", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{Dimensions: 4}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("should return an error when dimensions are not configured", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ":memory:"}, logger)
			Expect(err).To(HaveOccurred())
		})

		It("should create a driver with an in-memory database", func() {
			driver, err := sqlitevec.NewDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(driver.Close()).To(Succeed())
		})
	})

	Describe("with an in-memory database", func() {
		var (
			ctx    context.Context
			driver *sqlitevec.Driver
		)

		BeforeEach(func() {
			ctx = context.Background()

			var err error
			driver, err = sqlitevec.NewDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("reports the collection as existing from construction", func() {
			Expect(driver.CollectionExists(ctx)).To(BeTrue())
		})

		It("rejects creating the collection with a mismatched dimension", func() {
			Expect(driver.CreateCollection(ctx, 8)).To(MatchError(vector.ErrDimensionMismatch))
			Expect(driver.CreateCollection(ctx, 4)).To(Succeed())
		})

		It("rejects vectors of the wrong dimension", func() {
			err := driver.Upsert(ctx, record("a", "short", 1, 0))
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})

		It("stores a record and finds it with score near 1 for the same vector", func() {
			Expect(driver.Upsert(ctx, record("a", "lives in Karachi", 1, 0, 0, 0))).To(Succeed())

			hits, err := driver.Search(ctx, []float32{1, 0, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].ID).To(Equal("a"))
			Expect(hits[0].Payload.Text).To(Equal("lives in Karachi"))
			Expect(hits[0].Score).To(BeNumerically("~", 1.0, 0.001))
		})

		It("scores an orthogonal vector near zero", func() {
			Expect(driver.Upsert(ctx, record("a", "lives in Karachi", 1, 0, 0, 0))).To(Succeed())

			hits, err := driver.Search(ctx, []float32{0, 1, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].Score).To(BeNumerically("~", 0.0, 0.001))
		})

		It("updates a record in place when upserting the same id", func() {
			Expect(driver.Upsert(ctx, record("a", "works as a doctor", 1, 0, 0, 0))).To(Succeed())
			Expect(driver.Upsert(ctx, record("a", "works as a surgeon", 0, 1, 0, 0))).To(Succeed())

			hits, err := driver.Search(ctx, []float32{0, 1, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].ID).To(Equal("a"))
			Expect(hits[0].Payload.Text).To(Equal("works as a surgeon"))
		})

		It("keeps exactly one record after upserting the same pair twice", func() {
			rec := record("a", "studies at MIT", 1, 0, 0, 0)
			Expect(driver.Upsert(ctx, rec)).To(Succeed())
			Expect(driver.Upsert(ctx, rec)).To(Succeed())

			hits, err := driver.Search(ctx, []float32{1, 0, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].ID).To(Equal("a"))
		})

		It("orders hits by descending similarity and caps at k", func() {
			Expect(driver.Upsert(ctx, record("x", "exact", 1, 0, 0, 0))).To(Succeed())
			Expect(driver.Upsert(ctx, record("y", "far", 0, 1, 0, 0))).To(Succeed())
			Expect(driver.Upsert(ctx, record("z", "close", 0.9, 0.1, 0, 0))).To(Succeed())

			hits, err := driver.Search(ctx, []float32{1, 0, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(2))
			Expect(hits[0].ID).To(Equal("x"))
			Expect(hits[1].ID).To(Equal("z"))
			Expect(hits[0].Score).To(BeNumerically(">", hits[1].Score))
		})

		It("returns no hits from an empty index", func() {
			hits, err := driver.Search(ctx, []float32{1, 0, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(BeEmpty())
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Index", func() {
			var _ vector.Index = (*sqlitevec.Driver)(nil)
		})
	})
})
