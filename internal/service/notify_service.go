package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/config"
)

// NotifyService fans live events out to admin WebSocket sessions through
// Redis PubSub, one channel per branch. Publishing is best-effort: a failed
// publish is logged, never surfaced to the request that triggered it.
type NotifyService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewNotifyService creates a new NotifyService.
func NewNotifyService(rdb *redis.Client, log zerolog.Logger) *NotifyService {
	return &NotifyService{
		rdb: rdb,
		log: log.With().Str("component", "notify_service").Logger(),
	}
}

// BranchEvent is the wire shape published on a branch channel.
type BranchEvent struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// NotifyBranch publishes an event to the branch's channel.
func (s *NotifyService) NotifyBranch(ctx context.Context, branch, event string, payload interface{}) {
	data, err := json.Marshal(BranchEvent{Event: event, Payload: payload, SentAt: time.Now()})
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("failed to marshal event")
		return
	}

	channel := config.CacheKey.BranchNotifyChannel(branch)
	if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
		s.log.Error().Err(err).Str("channel", channel).Str("event", event).Msg("failed to publish event")
	}
}

// Subscribe opens a PubSub subscription covering the branch's channel and
// the broadcast channel. The caller owns the subscription and must close it.
func (s *NotifyService) Subscribe(ctx context.Context, branch string) *redis.PubSub {
	return s.rdb.Subscribe(ctx,
		config.CacheKey.BranchNotifyChannel(branch),
		config.CacheKey.BranchNotifyChannel(""))
}
