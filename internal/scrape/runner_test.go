package scrape_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/grubmail/grubmail/internal/mailbox"
	"github.com/grubmail/grubmail/internal/scrape"
)

var _ = Describe("Runner", func() {
	var (
		runner *scrape.Runner
		msgs   []mailbox.Message
		report scrape.Report
	)

	BeforeEach(func() {
		runner = scrape.NewRunner(scrape.NewDoorDash(), 4)
	})

	JustBeforeEach(func() {
		report = runner.Run(context.Background(), msgs)
	})

	When("the batch mixes every outcome", func() {
		BeforeEach(func() {
			mismatched := strings.Replace(orderText, "Subtotal $12.50", "Subtotal $99.00", 1)
			msgs = []mailbox.Message{
				orderMessage("good-1", orderText),
				{ID: "newsletter", Snippet: "Weekly deals inside", Raw: encodeRaw("nothing to see")},
				{ID: "broken", Snippet: orderSnippet, Raw: "!!! not base64 !!!"},
				orderMessage("mismatch", mismatched),
				orderMessage("good-2", orderText),
			}
		})

		It("should accept the consistent orders in input order", func() {
			Expect(report.Orders).To(HaveLen(2))
			Expect(report.Orders[0].MessageID).To(Equal("good-1"))
			Expect(report.Orders[1].MessageID).To(Equal("good-2"))
		})

		It("should bucket the off-dialect message as invalid", func() {
			Expect(report.Invalid).To(HaveLen(1))
			Expect(report.Invalid[0].ID).To(Equal("newsletter"))
		})

		It("should bucket the undecodable message as failed with its error text", func() {
			Expect(report.Failed).To(HaveLen(1))
			Expect(report.Failed[0].Message.ID).To(Equal("broken"))
			Expect(report.Failed[0].Error).To(ContainSubstring("undecodable"))
		})

		It("should silently drop the order that failed validation", func() {
			Expect(report.Dropped).To(Equal(1))
			for _, o := range report.Orders {
				Expect(o.MessageID).NotTo(Equal("mismatch"))
			}
		})
	})

	When("every message fails", func() {
		BeforeEach(func() {
			msgs = []mailbox.Message{
				{ID: "b1", Snippet: orderSnippet, Raw: "!!!"},
				{ID: "b2", Snippet: orderSnippet, Raw: "???"},
			}
		})

		It("should process the whole batch anyway", func() {
			Expect(report.Failed).To(HaveLen(2))
			Expect(report.Orders).To(BeEmpty())
		})
	})

	When("the batch is empty", func() {
		BeforeEach(func() {
			msgs = nil
		})

		It("should return an empty report", func() {
			Expect(report.Orders).To(BeEmpty())
			Expect(report.Invalid).To(BeEmpty())
			Expect(report.Failed).To(BeEmpty())
			Expect(report.Dropped).To(BeZero())
		})
	})

	When("running with a single worker", func() {
		BeforeEach(func() {
			runner = scrape.NewRunner(scrape.NewDoorDash(), 0)
			msgs = []mailbox.Message{orderMessage("solo", orderText)}
		})

		It("should clamp the worker count and still process the batch", func() {
			Expect(report.Orders).To(HaveLen(1))
		})
	})
})
