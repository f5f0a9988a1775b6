package model

import (
	"strings"
	"time"
)

// Source is the marketing channel a lead is attributed to.
type Source string

const (
	SourceUnknown  Source = "Unknown"
	SourceDirect   Source = "Direct"
	SourceSEO      Source = "SEO"
	SourcePPC      Source = "PPC"
	SourceReferral Source = "Referral"
)

// SourceOrder is the fixed reporting order. PPC is always shown in
// summaries even when it attributed zero leads.
var SourceOrder = []Source{SourceDirect, SourceSEO, SourcePPC, SourceReferral, SourceUnknown}

// DataSource tags which reference table produced an attribution.
type DataSource string

const (
	DataSourceUnknown    DataSource = "unknown"
	DataSourceCustomerDB DataSource = "customer_db"
	DataSourceSEOCSV     DataSource = "seo_csv"
	DataSourceGSCAPI     DataSource = "gsc_api"
	DataSourcePPCCSV     DataSource = "ppc_csv"
	DataSourcePattern    DataSource = "pattern"
)

// ConfidenceLevel is the banded form of an attribution confidence score.
type ConfidenceLevel string

const (
	ConfidenceUnknown ConfidenceLevel = "Unknown"
	ConfidenceLow     ConfidenceLevel = "Low"
	ConfidenceMedium  ConfidenceLevel = "Medium"
	ConfidenceHigh    ConfidenceLevel = "High"
)

// Lead is one inbound contact flowing through the pipeline. Enrichment
// fills the evidence fields; the attribution engine fills the attribution
// fields, which start at their zero values (SourceUnknown, 0, empty).
type Lead struct {
	Email             string     `json:"email"`
	FirstInquiryAt    *time.Time `json:"first_inquiry_timestamp,omitempty"`
	LastTicketAt      *time.Time `json:"last_ticket_timestamp,omitempty"`
	ExtractedKeywords []string   `json:"extracted_keywords,omitempty"`
	ProductsMentioned []string   `json:"products_mentioned,omitempty"`
	TicketSubjects    []string   `json:"ticket_subjects,omitempty"`

	// Carried through from the spam and enrichment steps.
	OriginalClassification string   `json:"original_classification,omitempty"`
	OriginalReason         string   `json:"original_reason,omitempty"`
	TicketCount            int      `json:"total_tickets_analyzed,omitempty"`
	TicketSpanDays         *float64 `json:"ticket_span_days,omitempty"`
	AnalysisPeriod         string   `json:"analysis_period,omitempty"`

	Source          Source          `json:"attributed_source"`
	Confidence      float64         `json:"attribution_confidence"`
	Detail          string          `json:"attribution_detail,omitempty"`
	DataSource      DataSource      `json:"data_source"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
}

// NewLead returns a Lead with a normalized email and attribution fields at
// their initial Unknown state.
func NewLead(email string) Lead {
	return Lead{
		Email:      NormalizeEmail(email),
		Source:     SourceUnknown,
		DataSource: DataSourceUnknown,
	}
}

// Domain returns the part of the lead's email after '@', or "" when the
// address has no domain part.
func (l *Lead) Domain() string {
	if i := strings.LastIndex(l.Email, "@"); i >= 0 && i < len(l.Email)-1 {
		return l.Email[i+1:]
	}
	return ""
}

// Attributed reports whether a stage has already claimed this lead.
func (l *Lead) Attributed() bool {
	return l.Source != SourceUnknown && l.Source != ""
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CustomerEmailSet is a deduplicated, lowercased set of known paying
// customer emails, used only for exact membership testing.
type CustomerEmailSet struct {
	emails map[string]struct{}
}

// NewCustomerEmailSet builds a set from raw email strings, normalizing and
// dropping empties.
func NewCustomerEmailSet(emails []string) *CustomerEmailSet {
	s := &CustomerEmailSet{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if norm := NormalizeEmail(e); norm != "" {
			s.emails[norm] = struct{}{}
		}
	}
	return s
}

// Contains reports membership for a raw (not necessarily normalized) email.
func (s *CustomerEmailSet) Contains(email string) bool {
	if s == nil {
		return false
	}
	_, ok := s.emails[NormalizeEmail(email)]
	return ok
}

// Len returns the number of distinct customer emails.
func (s *CustomerEmailSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.emails)
}
