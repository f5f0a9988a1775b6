package cache

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/pkg/crm"
	"github.com/sells-group/attribution-cli/pkg/freshdesk"
)

// Collaborator names used as cache partitions.
const (
	collabFreshdesk = "freshdesk"
	collabCRM       = "crm"
)

// WrapFreshdesk returns a read-through caching decorator around a helpdesk
// client. A nil store returns the client unchanged. Cache read failures
// fall through to the network; write failures are logged and the fresh
// response is returned anyway.
func WrapFreshdesk(inner freshdesk.Client, store *Store) freshdesk.Client {
	if store == nil {
		return inner
	}
	return &freshdeskClient{
		inner: inner,
		store: store,
		log:   zap.L().With(zap.String("component", "cache")),
	}
}

type freshdeskClient struct {
	inner freshdesk.Client
	store *Store
	log   *zap.Logger
}

func (c *freshdeskClient) TicketsForEmail(ctx context.Context, email string, start, end time.Time) ([]model.TicketRecord, error) {
	key := Key("tickets", email, start.Format("2006-01-02"), end.Format("2006-01-02"))

	var cached []model.TicketRecord
	if hit, err := c.store.Get(ctx, collabFreshdesk, key, &cached); err != nil {
		c.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	tickets, err := c.inner.TicketsForEmail(ctx, email, start, end)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, collabFreshdesk, key, tickets); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return tickets, nil
}

func (c *freshdeskClient) Conversations(ctx context.Context, ticketID int64) ([]model.ConversationRecord, error) {
	key := Key("conversations", strconv.FormatInt(ticketID, 10))

	var cached []model.ConversationRecord
	if hit, err := c.store.Get(ctx, collabFreshdesk, key, &cached); err != nil {
		c.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	convs, err := c.inner.Conversations(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, collabFreshdesk, key, convs); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return convs, nil
}

// OfflineFreshdesk returns a helpdesk client that serves cached responses
// only. Misses come back empty rather than erroring, so a pipeline run
// over a previously cached window works without network access.
func OfflineFreshdesk(store *Store) freshdesk.Client {
	return &offlineFreshdesk{
		store: store,
		log:   zap.L().With(zap.String("component", "cache")),
	}
}

type offlineFreshdesk struct {
	store *Store
	log   *zap.Logger
}

func (c *offlineFreshdesk) TicketsForEmail(ctx context.Context, email string, start, end time.Time) ([]model.TicketRecord, error) {
	if c.store == nil {
		return nil, nil
	}
	key := Key("tickets", email, start.Format("2006-01-02"), end.Format("2006-01-02"))

	var cached []model.TicketRecord
	hit, err := c.store.Get(ctx, collabFreshdesk, key, &cached)
	if err != nil {
		c.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	if !hit {
		c.log.Debug("offline cache miss", zap.String("key", key))
		return nil, nil
	}
	return cached, nil
}

func (c *offlineFreshdesk) Conversations(ctx context.Context, ticketID int64) ([]model.ConversationRecord, error) {
	if c.store == nil {
		return nil, nil
	}
	key := Key("conversations", strconv.FormatInt(ticketID, 10))

	var cached []model.ConversationRecord
	hit, err := c.store.Get(ctx, collabFreshdesk, key, &cached)
	if err != nil {
		c.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	if !hit {
		c.log.Debug("offline cache miss", zap.String("key", key))
		return nil, nil
	}
	return cached, nil
}

// WrapCRM returns a read-through caching decorator around a CRM client,
// with the same failure semantics as WrapFreshdesk. The customer list is
// cached under a single fixed key.
func WrapCRM(inner crm.Client, store *Store) crm.Client {
	if store == nil {
		return inner
	}
	return &crmClient{
		inner: inner,
		store: store,
		log:   zap.L().With(zap.String("component", "cache")),
	}
}

type crmClient struct {
	inner crm.Client
	store *Store
	log   *zap.Logger
}

func (c *crmClient) CustomerEmails(ctx context.Context) ([]string, error) {
	key := Key("customers")

	var cached []string
	if hit, err := c.store.Get(ctx, collabCRM, key, &cached); err != nil {
		c.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	emails, err := c.inner.CustomerEmails(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, collabCRM, key, emails); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return emails, nil
}
