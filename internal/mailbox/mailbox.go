package mailbox

import (
	"context"
	"fmt"
)

// Message is the envelope for one fetched mail message. Raw is the
// transport-encoded payload exactly as returned by the provider;
// Snippet is used only as a cheap pre-filter for dialect detection.
type Message struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Raw     string `json:"raw"`
}

// Failure pairs a message with the extraction error it produced, for
// later grammar maintenance.
type Failure struct {
	Message Message `json:"msg"`
	Error   string  `json:"error"`
}

// Mailbox defines the interface for mail retrieval operations.
type Mailbox interface {
	// Search returns the IDs of all messages matching query.
	Search(ctx context.Context, query string) ([]string, error)

	// Message fetches a single message in raw format.
	Message(ctx context.Context, id string) (Message, error)
}

// FetchAll resolves query against the mailbox, serving previously
// fetched messages from the cache and storing new ones as they arrive.
// Result order follows the mailbox's search order.
func FetchAll(ctx context.Context, mbox Mailbox, cache Cache, query string) ([]Message, error) {
	ids, err := mbox.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching mailbox: %w", err)
	}

	messages := make([]Message, 0, len(ids))
	for _, id := range ids {
		cached, ok, err := cache.Get(id)
		if err != nil {
			return nil, fmt.Errorf("reading cache: %w", err)
		}
		if ok {
			messages = append(messages, cached)
			continue
		}

		msg, err := mbox.Message(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetching message %s: %w", id, err)
		}
		if err := cache.Put(msg); err != nil {
			return nil, fmt.Errorf("caching message %s: %w", id, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
