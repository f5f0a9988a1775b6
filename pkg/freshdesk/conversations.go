package freshdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/attribution-cli/internal/model"
)

// Conversations returns every reply on the ticket.
func (c *httpClient) Conversations(ctx context.Context, ticketID int64) ([]model.ConversationRecord, error) {
	reqURL := fmt.Sprintf("%s/api/v2/tickets/%d/conversations", c.baseURL, ticketID)

	body, status, err := c.retryDo(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("freshdesk: conversations status %d: %s", status, string(body))
	}

	var convs []model.ConversationRecord
	if err := json.Unmarshal(body, &convs); err != nil {
		return nil, eris.Wrap(err, "freshdesk: unmarshal conversations")
	}
	return convs, nil
}
