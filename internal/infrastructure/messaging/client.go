package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultRequestTimeout = 5 * time.Second

// Client sends requests and correlates replies arriving on its private
// reply channel. It is safe for concurrent use.
type Client struct {
	rdb     *redis.Client
	replyTo string
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[string]chan Message
	pubsub  *redis.PubSub
	closed  bool
}

// NewClient creates a Client. Start must be called before Request.
func NewClient(rdb *redis.Client, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		rdb:     rdb,
		replyTo: "rpc.reply." + uuid.NewString(),
		timeout: timeout,
		log:     log,
		pending: make(map[string]chan Message),
	}
}

// Start subscribes to the reply channel and begins routing replies.
func (c *Client) Start(ctx context.Context) error {
	ps := c.rdb.Subscribe(ctx, c.replyTo)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("subscribe %s: %w", c.replyTo, err)
	}

	c.mu.Lock()
	c.pubsub = ps
	c.mu.Unlock()

	go c.route(ps.Channel())
	c.log.Info().Str("reply_to", c.replyTo).Msg("messaging client started")
	return nil
}

func (c *Client) route(ch <-chan *redis.Message) {
	for msg := range ch {
		var reply Message
		if err := json.Unmarshal([]byte(msg.Payload), &reply); err != nil {
			c.log.Warn().Err(err).Msg("discarding malformed reply")
			continue
		}

		c.mu.Lock()
		waiter, ok := c.pending[reply.ID]
		delete(c.pending, reply.ID)
		c.mu.Unlock()

		if !ok {
			// Late reply for an abandoned request, or a second responder.
			c.log.Debug().Str("id", reply.ID).Str("pattern", reply.Pattern).Msg("unmatched reply dropped")
			continue
		}
		waiter <- reply
	}
}

// Request publishes payload on pattern and waits for the correlated reply,
// decoding its data into out when out is non-nil. It returns as soon as ctx
// is done; a reply arriving afterwards is dropped.
func (c *Client) Request(ctx context.Context, pattern string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", pattern, err)
	}

	id := uuid.NewString()
	waiter := make(chan Message, 1)

	c.mu.Lock()
	if c.closed || c.pubsub == nil {
		c.mu.Unlock()
		return ErrClientClosed
	}
	c.pending[id] = waiter
	c.mu.Unlock()
	defer c.forget(id)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := json.Marshal(Message{ID: id, Pattern: pattern, ReplyTo: c.replyTo, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", pattern, err)
	}

	receivers, err := c.rdb.Publish(ctx, pattern, raw).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", pattern, err)
	}
	if receivers == 0 {
		return fmt.Errorf("publish %s: %w", pattern, ErrNoResponders)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("await %s reply: %w", pattern, ctx.Err())
	case reply := <-waiter:
		if reply.Error != nil {
			return reply.Error
		}
		if out == nil || len(reply.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(reply.Data, out); err != nil {
			return fmt.Errorf("decode %s reply: %w", pattern, err)
		}
		return nil
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Close unsubscribes from the reply channel. Pending requests run into their
// context deadline.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.pubsub == nil {
		return nil
	}
	return c.pubsub.Close()
}
