package searchconsole

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/attribution-cli/internal/model"
)

type analyticsRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
}

type analyticsRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

type analyticsResponse struct {
	Rows []analyticsRow `json:"rows"`
}

// Rankings queries the analytics endpoint for per-query rows between start
// and end, inclusive. Rows without a query key are dropped.
func (c *httpClient) Rankings(ctx context.Context, start, end time.Time) ([]model.RankingRow, error) {
	payload, err := json.Marshal(analyticsRequest{
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		Dimensions: []string{"query"},
		RowLimit:   c.rowLimit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "searchconsole: marshal request")
	}

	body, status, err := c.retryDo(ctx, c.queryURL(), payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("searchconsole: query status %d: %s", status, string(body))
	}

	var decoded analyticsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, eris.Wrap(err, "searchconsole: unmarshal response")
	}

	rows := make([]model.RankingRow, 0, len(decoded.Rows))
	for _, r := range decoded.Rows {
		if len(r.Keys) == 0 || r.Keys[0] == "" {
			continue
		}
		rows = append(rows, model.RankingRow{
			Query:       r.Keys[0],
			Clicks:      int(r.Clicks),
			Impressions: int(r.Impressions),
			Position:    r.Position,
		})
	}
	return rows, nil
}
