package mailbox

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Gmail implements the Mailbox interface using the Gmail API.
type Gmail struct {
	svc *gmail.Service
}

// NewGmail creates a Gmail mailbox for the authenticated user.
func NewGmail(ctx context.Context, opts ...option.ClientOption) (*Gmail, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	return &Gmail{svc: svc}, nil
}

// Search returns the IDs of all messages matching query, following
// pagination to the end of the result set.
func (g *Gmail) Search(ctx context.Context, query string) ([]string, error) {
	var ids []string
	call := g.svc.Users.Messages.List("me").Q(query)
	for {
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("listing messages: %w", err)
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		slog.Debug("Fetched search page",
			"messages", len(resp.Messages),
			"estimate", resp.ResultSizeEstimate,
			"more", resp.NextPageToken != "",
		)
		if resp.NextPageToken == "" {
			return ids, nil
		}
		call = call.PageToken(resp.NextPageToken)
	}
}

// Message fetches one message in raw format.
func (g *Gmail) Message(ctx context.Context, id string) (Message, error) {
	resp, err := g.svc.Users.Messages.Get("me", id).Format("raw").Context(ctx).Do()
	if err != nil {
		return Message{}, fmt.Errorf("getting message %s: %w", id, err)
	}
	return Message{ID: resp.Id, Snippet: resp.Snippet, Raw: resp.Raw}, nil
}
