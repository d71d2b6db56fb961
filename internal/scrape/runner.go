package scrape

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/grubmail/grubmail/internal/mailbox"
)

// Report partitions one batch run into its outcome buckets. Bucket
// order follows the input message order.
type Report struct {
	// Orders are the extracted records that passed every
	// reconciliation rule.
	Orders []Order

	// Invalid holds messages that failed the dialect precondition.
	Invalid []mailbox.Message

	// Failed holds messages whose extraction raised an unexpected
	// error, paired with the error text.
	Failed []mailbox.Failure

	// Dropped counts orders that parsed but failed validation. They
	// are excluded from export silently; a low false-positive rate in
	// the grammar is expected.
	Dropped int
}

// Runner applies a Parser across a batch of messages.
type Runner struct {
	parser  Parser
	workers int
}

// NewRunner creates a Runner with the given worker count.
func NewRunner(parser Parser, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{parser: parser, workers: workers}
}

// Run parses and validates every message. Messages are processed
// independently, so one message's failure never aborts the rest. Each
// worker writes only its own result slot; partitioning happens after
// all workers finish.
func (r *Runner) Run(ctx context.Context, msgs []mailbox.Message) Report {
	outcomes := make([]Outcome, len(msgs))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, msg := range msgs {
		i, msg := i, msg
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Malformed(err.Error())
				return nil
			}
			outcomes[i] = r.parser.Parse(msg)
			return nil
		})
	}
	// Workers never return errors; cancellation is recorded per slot.
	_ = g.Wait()

	var report Report
	for i, msg := range msgs {
		switch out := outcomes[i]; out.Status {
		case StatusAccepted:
			if !Validate(out.Order, msg).Valid() {
				report.Dropped++
				continue
			}
			report.Orders = append(report.Orders, *out.Order)
		case StatusNotApplicable:
			report.Invalid = append(report.Invalid, msg)
		case StatusMalformed:
			report.Failed = append(report.Failed, mailbox.Failure{Message: msg, Error: out.Reason})
		}
	}

	slog.Info("Batch complete",
		"dialect", r.parser.Dialect(),
		"total", len(msgs),
		"accepted", len(report.Orders),
		"invalid", len(report.Invalid),
		"failed", len(report.Failed),
		"dropped", report.Dropped,
	)
	return report
}
