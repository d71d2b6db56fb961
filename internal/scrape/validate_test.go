package scrape_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/grubmail/grubmail/internal/mailbox"
	"github.com/grubmail/grubmail/internal/scrape"
)

var _ = Describe("Validate", func() {
	var (
		parser  *scrape.DoorDash
		msg     mailbox.Message
		order   *scrape.Order
		verdict scrape.Verdict
	)

	BeforeEach(func() {
		parser = scrape.NewDoorDash()
		msg = orderMessage("v1", orderText)
		outcome := parser.Parse(msg)
		Expect(outcome.Status).To(Equal(scrape.StatusAccepted))
		order = outcome.Order
	})

	JustBeforeEach(func() {
		verdict = scrape.Validate(order, msg)
	})

	When("the parse agrees with the raw text", func() {
		It("should pass the subtotal rule", func() {
			Expect(verdict.SubtotalOK).To(BeTrue())
		})

		It("should pass the modifier-count rule", func() {
			Expect(verdict.ModifierCountOK).To(BeTrue())
		})

		It("should retain the order", func() {
			Expect(verdict.Valid()).To(BeTrue())
		})
	})

	When("a single item price was altered", func() {
		BeforeEach(func() {
			order.Items[1].Price = decimal.RequireFromString("4.00")
		})

		It("should fail the subtotal rule", func() {
			Expect(verdict.SubtotalOK).To(BeFalse())
		})

		It("should still pass the modifier-count rule", func() {
			Expect(verdict.ModifierCountOK).To(BeTrue())
		})

		It("should drop the order", func() {
			Expect(verdict.Valid()).To(BeFalse())
		})
	})

	When("the parsed structure carries a modifier the text does not", func() {
		BeforeEach(func() {
			order.Items[1].Modifiers = append(order.Items[1].Modifiers, "Phantom Topping")
		})

		It("should fail the modifier-count rule", func() {
			Expect(verdict.ModifierCountOK).To(BeFalse())
		})

		It("should still pass the subtotal rule", func() {
			Expect(verdict.SubtotalOK).To(BeTrue())
		})
	})

	When("the parsed structure lost a modifier the text still has", func() {
		BeforeEach(func() {
			order.Items[0].Modifiers = nil
		})

		It("should fail the modifier-count rule", func() {
			Expect(verdict.ModifierCountOK).To(BeFalse())
		})
	})

	When("only an estimated subtotal is present", func() {
		BeforeEach(func() {
			text := strings.Replace(orderText, "Subtotal $12.50", "Estimated Subtotal $12.50", 1)
			msg = orderMessage("v2", text)
			outcome := parser.Parse(msg)
			Expect(outcome.Status).To(Equal(scrape.StatusAccepted))
			order = outcome.Order
		})

		It("should fall back to the estimated subtotal", func() {
			Expect(verdict.SubtotalOK).To(BeTrue())
		})
	})

	When("no subtotal-like key was extracted", func() {
		BeforeEach(func() {
			order = &scrape.Order{
				MessageID:   "v3",
				Items:       order.Items,
				CostSummary: map[string]decimal.Decimal{"Tax": decimal.RequireFromString("1.10")},
			}
		})

		It("should fail the subtotal rule", func() {
			Expect(verdict.SubtotalOK).To(BeFalse())
		})
	})

	When("the raw message cannot be re-decoded", func() {
		BeforeEach(func() {
			msg.Raw = "!!! not base64 !!!"
		})

		It("should fail the modifier-count rule without raising", func() {
			Expect(verdict.ModifierCountOK).To(BeFalse())
		})
	})
})
