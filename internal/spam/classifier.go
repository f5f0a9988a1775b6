// Package spam screens raw inbound leads before any enrichment spend. An
// address survives when its domain is whitelisted or when a helpdesk ticket
// in the analysis period shows the sales team actually engaged (a quotation
// or mock-up phrase, or a sales signature next to a context word).
// Everything else is spam.
package spam

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/rules"
	"github.com/sells-group/attribution-cli/pkg/freshdesk"
)

// Classification values written to the output CSVs.
const (
	ClassSpam    = "Spam"
	ClassNotSpam = "Not Spam"
)

// Result is the classification of one email address.
type Result struct {
	Email          string `csv:"email" json:"email"`
	Classification string `csv:"classification" json:"classification"`
	Reason         string `csv:"reason" json:"reason"`
	TicketCount    int    `csv:"ticket_count" json:"ticket_count"`
}

// NotSpam reports whether the result passed screening.
func (r Result) NotSpam() bool {
	return r.Classification == ClassNotSpam
}

// Classifier screens emails against the whitelist and ticket history.
type Classifier struct {
	helpdesk  freshdesk.Client
	whitelist map[string]struct{}
	rules     rules.Rules
	period    model.Period
	log       *zap.Logger
}

// NewClassifier builds a Classifier. The whitelist entries are domains,
// matched exactly against the part after '@'.
func NewClassifier(helpdesk freshdesk.Client, whitelist []string, r rules.Rules, period model.Period) *Classifier {
	wl := make(map[string]struct{}, len(whitelist))
	for _, d := range whitelist {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			wl[d] = struct{}{}
		}
	}
	return &Classifier{
		helpdesk:  helpdesk,
		whitelist: wl,
		rules:     r,
		period:    period,
		log:       zap.L().With(zap.String("component", "spam")),
	}
}

// Classify runs the screening cascade for a single email. It never fails:
// a ticket fetch error is logged and treated as an empty history, which
// classifies the address as spam with the no-history reason.
func (c *Classifier) Classify(ctx context.Context, email string) Result {
	email = model.NormalizeEmail(email)
	res := Result{Email: email}

	if _, ok := c.whitelist[domainOf(email)]; ok {
		res.Classification = ClassNotSpam
		res.Reason = "Whitelisted domain"
		return res
	}

	tickets, err := c.helpdesk.TicketsForEmail(ctx, email, c.period.Start, c.period.End)
	if err != nil {
		c.log.Warn("ticket fetch failed, treating as no history",
			zap.String("email", email),
			zap.Error(err),
		)
		tickets = nil
	}

	if len(tickets) == 0 {
		res.Classification = ClassSpam
		res.Reason = "No ticket history in period " + c.period.String()
		return res
	}

	res.TicketCount = len(tickets)

	details := make([]string, 0, len(tickets))
	for _, t := range tickets {
		found, detail := c.checkSalesResponse(ctx, t.ID)
		details = append(details, detail)
		if found {
			res.Classification = ClassNotSpam
			res.Reason = fmt.Sprintf("Sales team interaction found in ticket %d: %s", t.ID, detail)
			return res
		}
	}

	res.Classification = ClassSpam
	res.Reason = fmt.Sprintf("No sales team interaction found in %d tickets", len(tickets))
	if len(details) > 0 {
		res.Reason += " - Details: " + strings.Join(details, "; ")
	}
	return res
}

// ClassifyAll screens emails in order. It stops early only when ctx is
// cancelled, returning the results accumulated so far.
func (c *Classifier) ClassifyAll(ctx context.Context, emails []string) ([]Result, error) {
	results := make([]Result, 0, len(emails))
	for i, email := range emails {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := c.Classify(ctx, email)
		results = append(results, res)
		c.log.Debug("classified lead",
			zap.Int("index", i+1),
			zap.Int("total", len(emails)),
			zap.String("email", res.Email),
			zap.String("classification", res.Classification),
		)
	}
	return results, nil
}

// checkSalesResponse scans a ticket's conversations for evidence of a sales
// reply. The returned detail feeds the classification reason either way.
func (c *Classifier) checkSalesResponse(ctx context.Context, ticketID int64) (bool, string) {
	convs, err := c.helpdesk.Conversations(ctx, ticketID)
	if err != nil {
		return false, "Error retrieving conversations: " + err.Error()
	}

	for _, conv := range convs {
		bodyText := strings.ToLower(conv.BodyText)
		bodyHTML := strings.ToLower(conv.Body)

		for _, phrase := range c.rules.SalesPhrases {
			if strings.Contains(bodyText, phrase) || strings.Contains(bodyHTML, phrase) {
				return true, fmt.Sprintf("Found sales phrase: '%s'", phrase)
			}
		}

		// Signatures alone are too weak; require a sales context word in
		// the same reply.
		for _, sig := range c.rules.SalesSignatures {
			if !strings.Contains(bodyText, sig) && !strings.Contains(bodyHTML, sig) {
				continue
			}
			for _, word := range c.rules.SignatureContexts {
				if strings.Contains(bodyText, word) || strings.Contains(bodyHTML, word) {
					return true, fmt.Sprintf("Found sales signature with context: '%s' with '%s'", sig, word)
				}
			}
		}
	}

	return false, "No sales interactions found in conversations"
}

// domainOf returns the lowercased domain part of an email, or "".
func domainOf(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 && i < len(email)-1 {
		return email[i+1:]
	}
	return ""
}
