package idset_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workpulse/workpulse/internal/core/idset"
)

func TestIDSet(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IDSet Suite")
}

var _ = Describe("idset", func() {
	Describe("Add", func() {
		It("appends a missing id without touching the original slice", func() {
			original := []int64{1, 2}
			result := idset.Add(original, 3)
			Expect(result).To(Equal([]int64{1, 2, 3}))
			Expect(original).To(Equal([]int64{1, 2}))
		})

		It("is a no-op for an id already present", func() {
			Expect(idset.Add([]int64{1, 2}, 2)).To(Equal([]int64{1, 2}))
		})

		It("starts a set from nil", func() {
			Expect(idset.Add(nil, 5)).To(Equal([]int64{5}))
		})
	})

	Describe("Remove", func() {
		It("drops the id and keeps the rest in order", func() {
			Expect(idset.Remove([]int64{1, 2, 3}, 2)).To(Equal([]int64{1, 3}))
		})

		It("is a no-op for an absent id", func() {
			Expect(idset.Remove([]int64{1, 3}, 2)).To(Equal([]int64{1, 3}))
		})
	})

	Describe("Diff", func() {
		It("splits a reassignment into added and removed ids", func() {
			added, removed := idset.Diff([]int64{1, 2, 3}, []int64{2, 3, 4})
			Expect(added).To(Equal([]int64{4}))
			Expect(removed).To(Equal([]int64{1}))
		})

		It("reports nothing for identical sets", func() {
			added, removed := idset.Diff([]int64{1, 2}, []int64{1, 2})
			Expect(added).To(BeEmpty())
			Expect(removed).To(BeEmpty())
		})

		It("treats nil as the empty set", func() {
			added, removed := idset.Diff(nil, []int64{1})
			Expect(added).To(Equal([]int64{1}))
			Expect(removed).To(BeEmpty())

			added, removed = idset.Diff([]int64{1}, nil)
			Expect(added).To(BeEmpty())
			Expect(removed).To(Equal([]int64{1}))
		})
	})
})
