package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	projectEventChannelPrefix = "sitegen:events:"  // Pub/Sub channel per project: sitegen:events:{project_id}
	projectLatestKeyPrefix    = "sitegen:latest:"  // Last event per project: sitegen:latest:{project_id}
	latestTTL                 = 7 * 24 * time.Hour // TTL for the last-event snapshot (7 days)

	TypeProjectUpdated = "project.updated"
)

// ProjectUpdated is emitted after a generation result has been committed.
type ProjectUpdated struct {
	Type       string    `json:"type"`
	ProjectID  string    `json:"project_id"`
	MessageID  string    `json:"message_id"`
	HTMLLength int       `json:"html_length"`
	At         time.Time `json:"at"`
}

// Publisher announces project changes to interested listeners and remembers
// the last one per project.
type Publisher interface {
	PublishProjectUpdated(ctx context.Context, ev ProjectUpdated) error
	Latest(ctx context.Context, projectID string) (*ProjectUpdated, error)
}

// Channel returns the pub/sub channel for a project.
func Channel(projectID string) string {
	return projectEventChannelPrefix + projectID
}

// RedisPublisher publishes events over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

var _ Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// PublishProjectUpdated publishes the event and keeps a copy as the project's
// latest event so late subscribers can catch up.
func (p *RedisPublisher) PublishProjectUpdated(ctx context.Context, ev ProjectUpdated) error {
	if ev.Type == "" {
		ev.Type = TypeProjectUpdated
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, projectLatestKeyPrefix+ev.ProjectID, data, latestTTL)
	pipe.Publish(ctx, Channel(ev.ProjectID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Latest returns the last event published for a project, or nil if none.
func (p *RedisPublisher) Latest(ctx context.Context, projectID string) (*ProjectUpdated, error) {
	data, err := p.client.Get(ctx, projectLatestKeyPrefix+projectID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest event: %w", err)
	}

	var ev ProjectUpdated
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &ev, nil
}

// Noop discards events. Used when Redis is not configured.
type Noop struct{}

func (Noop) PublishProjectUpdated(context.Context, ProjectUpdated) error { return nil }

func (Noop) Latest(context.Context, string) (*ProjectUpdated, error) { return nil, nil }
