package freshdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
)

// searchResponse is the envelope of GET /api/v2/search/tickets.
type searchResponse struct {
	Results []model.TicketRecord `json:"results"`
	Total   int                  `json:"total"`
}

// TicketsForEmail looks up the requester's tickets three ways, most precise
// first: a date-bounded search query, an undated search query, then the
// plain ticket listing. Search precision varies by account configuration,
// so the window filter is applied client-side in every case. An approach
// that fails or finds nothing hands over to the next; an approach that
// finds tickets is final even when the filter then drops them all.
func (c *httpClient) TicketsForEmail(ctx context.Context, email string, start, end time.Time) ([]model.TicketRecord, error) {
	log := zap.L().With(zap.String("component", "freshdesk"), zap.String("email", email))

	dated := fmt.Sprintf("email:'%s' AND created_at:>'%s' AND created_at:<'%s'",
		email, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if tickets, err := c.searchTickets(ctx, dated); err != nil {
		log.Debug("dated ticket search failed", zap.Error(err))
	} else if len(tickets) > 0 {
		return filterByWindow(tickets, start, end), nil
	}

	undated := fmt.Sprintf("email:'%s'", email)
	if tickets, err := c.searchTickets(ctx, undated); err != nil {
		log.Debug("undated ticket search failed", zap.Error(err))
	} else if len(tickets) > 0 {
		return filterByWindow(tickets, start, end), nil
	}

	tickets, err := c.listTickets(ctx, email)
	if err != nil {
		return nil, err
	}
	return filterByWindow(tickets, start, end), nil
}

func (c *httpClient) searchTickets(ctx context.Context, query string) ([]model.TicketRecord, error) {
	q := url.Values{}
	q.Set("query", `"`+query+`"`)
	reqURL := c.baseURL + "/api/v2/search/tickets?" + q.Encode()

	body, status, err := c.retryDo(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("freshdesk: search status %d: %s", status, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "freshdesk: unmarshal search response")
	}
	return sr.Results, nil
}

func (c *httpClient) listTickets(ctx context.Context, email string) ([]model.TicketRecord, error) {
	q := url.Values{}
	q.Set("email", email)
	reqURL := c.baseURL + "/api/v2/tickets?" + q.Encode()

	body, status, err := c.retryDo(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("freshdesk: list status %d: %s", status, string(body))
	}

	var tickets []model.TicketRecord
	if err := json.Unmarshal(body, &tickets); err != nil {
		return nil, eris.Wrap(err, "freshdesk: unmarshal ticket listing")
	}
	return tickets, nil
}

// filterByWindow keeps tickets created inside the inclusive window,
// dropping any without a usable creation time.
func filterByWindow(tickets []model.TicketRecord, start, end time.Time) []model.TicketRecord {
	var out []model.TicketRecord
	for _, t := range tickets {
		if t.CreatedAt.IsZero() {
			continue
		}
		if t.CreatedAt.Before(start) || t.CreatedAt.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}
