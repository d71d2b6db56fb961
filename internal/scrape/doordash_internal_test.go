package scrape

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("detectBullet", func() {
	ginkgo.It("picks the variant that occurs in the segment", func() {
		Expect(detectBullet("\n• Extra Cheese\n")).To(Equal("• "))
		Expect(detectBullet("\nâ€¢ Extra Cheese\n")).To(Equal("â€¢ "))
	})

	ginkgo.It("picks the variant with the higher occurrence count", func() {
		Expect(detectBullet("â€¢ one â€¢ two • three")).To(Equal("â€¢ "))
		Expect(detectBullet("• one • two â€¢ three")).To(Equal("• "))
	})

	ginkgo.It("keeps the mojibake variant on a tie", func() {
		Expect(detectBullet("no bullets here")).To(Equal("â€¢ "))
		Expect(detectBullet("â€¢ one • two")).To(Equal("â€¢ "))
	})
})

var _ = ginkgo.Describe("itemsSegment", func() {
	ginkgo.It("slices strictly between the For and Subtotal lines", func() {
		segment, err := itemsSegment("- For: John\n1x Fries $3.00\nSubtotal $3.00\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(segment).To(Equal("\n1x Fries $3.00\n"))
	})

	ginkgo.It("fails without a For marker", func() {
		_, err := itemsSegment("1x Fries $3.00\nSubtotal $3.00\n")
		Expect(err).To(MatchError(ErrItemSegment))
	})

	ginkgo.It("fails without a Subtotal marker", func() {
		_, err := itemsSegment("- For: John\n1x Fries $3.00\n")
		Expect(err).To(MatchError(ErrItemSegment))
	})
})
