// Package enrich mines each surviving lead's helpdesk history for the
// evidence attribution runs on: product mentions, ticket subjects, and the
// first/last ticket timestamps inside the analysis period.
package enrich

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/attribution-cli/internal/catalog"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/spam"
	"github.com/sells-group/attribution-cli/internal/textutil"
	"github.com/sells-group/attribution-cli/pkg/freshdesk"
)

const defaultConcurrency = 4

// maxProductsPerLead caps the distinct products recorded for one lead.
const maxProductsPerLead = 7

// Enricher fills leads with ticket-derived evidence.
type Enricher struct {
	helpdesk    freshdesk.Client
	matcher     *catalog.Matcher
	period      model.Period
	concurrency int
	log         *zap.Logger
}

// Option adjusts enricher construction.
type Option func(*Enricher)

// WithConcurrency caps parallel per-lead ticket fetches.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEnricher builds an Enricher over the given helpdesk client and
// product matcher.
func NewEnricher(helpdesk freshdesk.Client, matcher *catalog.Matcher, period model.Period, opts ...Option) *Enricher {
	e := &Enricher{
		helpdesk:    helpdesk,
		matcher:     matcher,
		period:      period,
		concurrency: defaultConcurrency,
		log:         zap.L().With(zap.String("component", "enrich")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnrichAll enriches leads in place, fetching ticket history concurrently.
// A lead whose fetch fails keeps its spam-step fields and empty evidence;
// the only error returned is context cancellation.
func (e *Enricher) EnrichAll(ctx context.Context, leads []*model.Lead) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, lead := range leads {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.enrichLead(ctx, lead); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				e.log.Warn("enrichment failed, keeping lead without ticket evidence",
					zap.String("email", lead.Email),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	return g.Wait()
}

// enrichLead fetches the lead's tickets and conversations and distills
// them into evidence fields.
func (e *Enricher) enrichLead(ctx context.Context, lead *model.Lead) error {
	lead.AnalysisPeriod = e.period.String()

	tickets, err := e.helpdesk.TicketsForEmail(ctx, lead.Email, e.period.Start, e.period.End)
	if err != nil {
		return eris.Wrapf(err, "enrich: tickets for %s", lead.Email)
	}

	lead.TicketCount = len(tickets)
	if len(tickets) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var products []string
	addMentions := func(mentions []catalog.Mention) {
		for _, m := range mentions {
			if len(products) >= maxProductsPerLead {
				return
			}
			key := strings.ToLower(m.Name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			products = append(products, m.Name)
		}
	}

	var first, last time.Time
	for _, t := range tickets {
		if !t.CreatedAt.IsZero() {
			if first.IsZero() || t.CreatedAt.Before(first) {
				first = t.CreatedAt
			}
			if last.IsZero() || t.CreatedAt.After(last) {
				last = t.CreatedAt
			}
		}

		if subject := strings.TrimSpace(t.Subject); subject != "" {
			lead.TicketSubjects = append(lead.TicketSubjects, subject)
		}

		addMentions(e.matcher.Mentions(t.Subject, catalog.SubjectText))
		addMentions(e.matcher.Mentions(t.DescriptionText, catalog.BodyText))

		convs, err := e.helpdesk.Conversations(ctx, t.ID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			e.log.Debug("conversation fetch failed, skipping ticket replies",
				zap.String("email", lead.Email),
				zap.Int64("ticket_id", t.ID),
				zap.Error(err),
			)
			continue
		}
		for _, conv := range convs {
			if conv.BodyText == "" {
				continue
			}
			addMentions(e.matcher.Mentions(conv.BodyText, catalog.BodyText))
		}
	}

	if !first.IsZero() {
		f := first.UTC()
		l := last.UTC()
		span := last.Sub(first).Hours() / 24
		lead.FirstInquiryAt = &f
		lead.LastTicketAt = &l
		lead.TicketSpanDays = &span
	}

	lead.ProductsMentioned = products
	lead.ExtractedKeywords = textutil.ExtractAll(lead.ProductsMentioned, lead.TicketSubjects)
	return nil
}

// SeedLeads builds the enrichment input from the spam step's surviving
// rows, carrying the classification through. Ticket counts are not
// carried; enrichment recounts from its own fetch.
func SeedLeads(results []spam.Result) []*model.Lead {
	leads := make([]*model.Lead, 0, len(results))
	for _, r := range results {
		l := model.NewLead(r.Email)
		l.OriginalClassification = r.Classification
		l.OriginalReason = r.Reason
		leads = append(leads, &l)
	}
	return leads
}
