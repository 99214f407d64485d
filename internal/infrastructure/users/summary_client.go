package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/product-catalog/internal/core/domain"
	"github.com/99minutos/product-catalog/internal/infrastructure/messaging"
	"github.com/99minutos/product-catalog/internal/metrics"
)

// PatternFindSummary is answered by the user service with a user summary.
const PatternFindSummary = "users.find.id.summary"

// Requester is the request-reply transport, satisfied by *messaging.Client.
type Requester interface {
	Request(ctx context.Context, pattern string, payload, out any) error
}

type summaryRequest struct {
	ID string `json:"id"`
}

type summaryReply struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SummaryClient implements ports.UserSummaryClient over the message transport.
type SummaryClient struct {
	rpc Requester
	log zerolog.Logger
}

func NewSummaryClient(rpc Requester, log zerolog.Logger) *SummaryClient {
	return &SummaryClient{rpc: rpc, log: log}
}

// Resolve fetches one user summary.
func (c *SummaryClient) Resolve(ctx context.Context, id string) (*domain.UserSummary, error) {
	start := time.Now()
	summary, err := c.resolve(ctx, id)

	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrRemoteNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "unavailable"
	}
	metrics.UserSummaryRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	return summary, err
}

func (c *SummaryClient) resolve(ctx context.Context, id string) (*domain.UserSummary, error) {
	var reply summaryReply
	err := c.rpc.Request(ctx, PatternFindSummary, summaryRequest{ID: id}, &reply)
	if err != nil {
		var re *messaging.ReplyError
		if errors.As(err, &re) && re.Status == http.StatusNotFound {
			return nil, fmt.Errorf("resolve user %s: %w", id, domain.ErrRemoteNotFound)
		}
		return nil, fmt.Errorf("resolve user %s: %w: %w", id, domain.ErrRemoteUnavailable, err)
	}
	// A null reply means the user service knows no such user.
	if reply.ID == "" {
		return nil, fmt.Errorf("resolve user %s: %w", id, domain.ErrRemoteNotFound)
	}

	return &domain.UserSummary{ID: reply.ID, Name: reply.Name, Email: reply.Email}, nil
}

// ResolveMany issues one concurrent Resolve per distinct id. Failures are
// joined into the returned error, never dropped.
func (c *SummaryClient) ResolveMany(ctx context.Context, ids []string) (map[string]*domain.UserSummary, error) {
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		out  = make(map[string]*domain.UserSummary, len(unique))
		errs []error
	)
	for id := range unique {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			summary, err := c.Resolve(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			out[id] = summary
		}(id)
	}
	wg.Wait()

	if len(errs) > 0 {
		c.log.Debug().Int("requested", len(unique)).Int("failed", len(errs)).Msg("user summaries partially resolved")
	}
	return out, errors.Join(errs...)
}
