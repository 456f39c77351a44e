// Package redis publishes scenes to Redis: the latest scene is kept under
// <prefix>scene and every scene is broadcast on the <prefix>scenes channel.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/flock/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "flock:"
	sceneKey      = "scene"
	sceneChannel  = "scenes"
)

// Store implements ports.SceneStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL expires the latest-scene key ttl after each publish.
// Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key and channel prefix (default "flock:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the underlying client.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Publish stores scene as the latest one and broadcasts it, in one round trip.
func (s *Store) Publish(ctx context.Context, scene domain.Scene) error {
	data, err := json.Marshal(scene)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(), data, s.ttl)
	pipe.Publish(ctx, s.channel(), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error publishing scene: %w", err)
	}
	return nil
}

// Latest reads the latest scene back.
func (s *Store) Latest(ctx context.Context) (domain.Scene, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.Scene{}, domain.ErrNoScene
	}
	if err != nil {
		return domain.Scene{}, fmt.Errorf("redis error reading scene: %w", err)
	}

	var scene domain.Scene
	if err := json.Unmarshal(data, &scene); err != nil {
		return domain.Scene{}, fmt.Errorf("failed to unmarshal scene: %w", err)
	}
	return scene, nil
}

// Watch subscribes to the scene channel. The returned channel is closed when
// ctx is done. Undecodable messages are skipped.
func (s *Store) Watch(ctx context.Context) (<-chan domain.Scene, error) {
	pubsub := s.client.Subscribe(ctx, s.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis error subscribing: %w", err)
	}

	out := make(chan domain.Scene)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var scene domain.Scene
				if err := json.Unmarshal([]byte(msg.Payload), &scene); err != nil {
					continue
				}
				select {
				case out <- scene:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *Store) key() string {
	return s.prefix + sceneKey
}

func (s *Store) channel() string {
	return s.prefix + sceneChannel
}
