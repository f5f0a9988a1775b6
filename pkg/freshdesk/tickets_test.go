package freshdesk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2025, time.May, 31, 23, 59, 59, 0, time.UTC)
)

const ticketsInAndOutOfWindow = `[
	{"id": 101, "subject": "Lanyard enquiry", "description_text": "need 200 custom lanyards", "created_at": "2025-04-10T09:00:00Z"},
	{"id": 102, "subject": "Old quote", "description_text": "", "created_at": "2024-11-03T10:00:00Z"}
]`

func TestTicketsForEmail_DatedSearch(t *testing.T) {
	t.Parallel()

	var searchCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/search/tickets", r.URL.Path)
		searchCalls.Add(1)

		query := r.URL.Query().Get("query")
		assert.True(t, strings.HasPrefix(query, `"`) && strings.HasSuffix(query, `"`))
		assert.Contains(t, query, "email:'buyer@acme.com'")
		assert.Contains(t, query, "created_at:>'2025-03-01'")
		assert.Contains(t, query, "created_at:<'2025-05-31'")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": ` + ticketsInAndOutOfWindow + `, "total": 2}`))
	}))
	defer srv.Close()

	client := NewClient("easyprint", "test-key", WithBaseURL(srv.URL))
	tickets, err := client.TicketsForEmail(context.Background(), "buyer@acme.com", windowStart, windowEnd)

	require.NoError(t, err)
	assert.Equal(t, int32(1), searchCalls.Load())
	require.Len(t, tickets, 1, "out-of-window ticket should be filtered")
	assert.Equal(t, int64(101), tickets[0].ID)
	assert.Equal(t, "Lanyard enquiry", tickets[0].Subject)
}

func TestTicketsForEmail_FallsBackToUndatedSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/search/tickets", r.URL.Path)
		query := r.URL.Query().Get("query")

		if strings.Contains(query, "created_at") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": ` + ticketsInAndOutOfWindow + `, "total": 2}`))
	}))
	defer srv.Close()

	client := NewClient("easyprint", "test-key", WithBaseURL(srv.URL))
	tickets, err := client.TicketsForEmail(context.Background(), "buyer@acme.com", windowStart, windowEnd)

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, int64(101), tickets[0].ID)
}

func TestTicketsForEmail_FallsBackToListing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/search/tickets":
			w.WriteHeader(http.StatusBadRequest)
		case "/api/v2/tickets":
			assert.Equal(t, "buyer@acme.com", r.URL.Query().Get("email"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(ticketsInAndOutOfWindow))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient("easyprint", "test-key", WithBaseURL(srv.URL))
	tickets, err := client.TicketsForEmail(context.Background(), "buyer@acme.com", windowStart, windowEnd)

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, int64(101), tickets[0].ID)
}

func TestTicketsForEmail_EmptySearchFallsThrough(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v2/search/tickets":
			_, _ = w.Write([]byte(`{"results": [], "total": 0}`))
		case "/api/v2/tickets":
			_, _ = w.Write([]byte(ticketsInAndOutOfWindow))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient("easyprint", "test-key", WithBaseURL(srv.URL))
	tickets, err := client.TicketsForEmail(context.Background(), "buyer@acme.com", windowStart, windowEnd)

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, int64(101), tickets[0].ID)
}

func TestTicketsForEmail_FoundButOutOfWindowDoesNotFallThrough(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/api/v2/search/tickets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"id": 102, "subject": "Old quote", "created_at": "2024-11-03T10:00:00Z"}], "total": 1}`))
	}))
	defer srv.Close()

	client := NewClient("easyprint", "test-key", WithBaseURL(srv.URL))
	tickets, err := client.TicketsForEmail(context.Background(), "buyer@acme.com", windowStart, windowEnd)

	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Equal(t, int32(1), calls.Load(), "a non-empty search result is final")
}

func TestTicketsForEmail_AllApproachesFail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/search/tickets":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient("easyprint", "test-key", WithBaseURL(srv.URL))
	_, err := client.TicketsForEmail(context.Background(), "buyer@acme.com", windowStart, windowEnd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestTicketsForEmail_DropsTicketsWithoutCreatedAt(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"id": 103, "subject": "No date"}], "total": 1}`))
	}))
	defer srv.Close()

	client := NewClient("easyprint", "test-key", WithBaseURL(srv.URL))
	tickets, err := client.TicketsForEmail(context.Background(), "buyer@acme.com", windowStart, windowEnd)

	require.NoError(t, err)
	assert.Empty(t, tickets)
}
