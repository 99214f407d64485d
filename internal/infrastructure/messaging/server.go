package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/product-catalog/internal/infrastructure/queue"
	"github.com/99minutos/product-catalog/internal/metrics"
)

// HandlerFunc answers one request. The result is JSON-encoded into the reply.
type HandlerFunc func(ctx context.Context, data json.RawMessage) (any, error)

// ErrorMapper turns a handler error into a reply status and message.
type ErrorMapper func(err error) (status int, message string)

// Server subscribes to the registered patterns and answers requests on a
// pool of workers.
type Server struct {
	rdb      *redis.Client
	log      zerolog.Logger
	handlers map[string]HandlerFunc
	workers  int
	mapError ErrorMapper
}

type ServerOption func(*Server)

// WithWorkers sets the size of the worker pool.
func WithWorkers(n int) ServerOption {
	return func(s *Server) { s.workers = n }
}

// WithErrorMapper sets how handler errors are reported to the requester.
func WithErrorMapper(m ErrorMapper) ServerOption {
	return func(s *Server) { s.mapError = m }
}

func NewServer(rdb *redis.Client, log zerolog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		rdb:      rdb,
		log:      log,
		handlers: make(map[string]HandlerFunc),
		mapError: func(err error) (int, string) {
			return http.StatusInternalServerError, err.Error()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle registers h for pattern. It must be called before Run.
func (s *Server) Handle(pattern string, h HandlerFunc) {
	s.handlers[pattern] = h
}

// Run subscribes to every registered pattern and serves requests until ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if len(s.handlers) == 0 {
		return fmt.Errorf("messaging server: no handlers registered")
	}

	patterns := make([]string, 0, len(s.handlers))
	for p := range s.handlers {
		patterns = append(patterns, p)
	}

	ps := s.rdb.Subscribe(ctx, patterns...)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	dispatcher := queue.NewDispatcher(s.workers, s.process, s.log)
	dispatcher.Start(ctx)
	s.log.Info().Strs("patterns", patterns).Msg("messaging server listening")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			// The raw payload carries a unique correlation id, which spreads
			// requests evenly across workers.
			dispatcher.Enqueue(ctx, queue.Job{Key: msg.Payload, Payload: []byte(msg.Payload)})
		}
	}
}

func (s *Server) process(ctx context.Context, job queue.Job) error {
	var req Message
	if err := json.Unmarshal(job.Payload, &req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	reply := s.answer(ctx, req)
	status := http.StatusOK
	if reply.Error != nil {
		status = reply.Error.Status
	}
	metrics.MessagesHandledTotal.WithLabelValues(req.Pattern, strconv.Itoa(status)).Inc()

	if req.ReplyTo == "" {
		return nil
	}
	raw, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}
	if err := s.rdb.Publish(ctx, req.ReplyTo, raw).Err(); err != nil {
		return fmt.Errorf("publish reply to %s: %w", req.ReplyTo, err)
	}
	return nil
}

func (s *Server) answer(ctx context.Context, req Message) Message {
	reply := Message{ID: req.ID, Pattern: req.Pattern}

	h, ok := s.handlers[req.Pattern]
	if !ok {
		reply.Error = &ReplyError{Status: http.StatusNotFound, Message: "no handler for pattern " + req.Pattern}
		return reply
	}

	result, err := h(ctx, req.Data)
	if err != nil {
		status, msg := s.mapError(err)
		reply.Error = &ReplyError{Status: status, Message: msg}
		return reply
	}

	data, err := json.Marshal(result)
	if err != nil {
		reply.Error = &ReplyError{Status: http.StatusInternalServerError, Message: "failed to encode reply"}
		return reply
	}
	reply.Data = data
	return reply
}
