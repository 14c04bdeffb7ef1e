package preferences

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"weather-lookup/pkg/logger"
)

var _ Store = (*RedisStore)(nil)

const DefaultNamespace = "weather-lookup:prefs"

const (
	reloadBackoff    = 50 * time.Millisecond
	maxReloadBackoff = 2 * time.Second
)

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// RedisStore keeps the selection under two keys and announces writes on a
// pub/sub channel so every process watching the namespace follows along.
type RedisStore struct {
	client  *redis.Client
	cityKey string
	idKey   string
	channel string
	l       *logger.Logger
}

func NewRedisStore(client *redis.Client, namespace string, l *logger.Logger) *RedisStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisStore{
		client:  client,
		cityKey: namespace + ":city",
		idKey:   namespace + ":location_id",
		channel: namespace + ":changed",
		l:       l,
	}
}

func (s *RedisStore) Save(ctx context.Context, sel Selection) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.cityKey, sel.City, 0)
		pipe.Set(ctx, s.idKey, sel.LocationID, 0)
		pipe.Publish(ctx, s.channel, sel.LocationID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving selection %d: %w", sel.LocationID, err)
	}
	return nil
}

// Load reads both keys at once. Missing keys read as the empty selection;
// an id that does not parse reads as NoLocation.
func (s *RedisStore) Load(ctx context.Context) (Selection, error) {
	vals, err := s.client.MGet(ctx, s.cityKey, s.idKey).Result()
	if err != nil {
		return Empty(), fmt.Errorf("loading selection: %w", err)
	}

	sel := Empty()
	if city, ok := vals[0].(string); ok {
		sel.City = city
	}
	if raw, ok := vals[1].(string); ok {
		if id, err := strconv.Atoi(raw); err == nil {
			sel.LocationID = id
		} else {
			s.l.Warning("unparsable location id in store", map[string]any{"key": s.idKey, "value": raw})
		}
	}
	return sel, nil
}

func (s *RedisStore) Watch(ctx context.Context) (<-chan Selection, error) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	// Confirm the subscription before the first read so no write slips between.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", s.channel, err)
	}

	first, err := s.Load(ctx)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Selection, 1)
	out <- first

	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				sel, ok := s.reload(ctx)
				if !ok {
					return
				}
				select {
				case out <- sel:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// reload reads the selection after a change notice. A failed read is retried
// with growing pauses until it succeeds or ctx is done; false means ctx ended.
func (s *RedisStore) reload(ctx context.Context) (Selection, bool) {
	wait := reloadBackoff
	for {
		sel, err := s.Load(ctx)
		if err == nil {
			return sel, true
		}
		if ctx.Err() != nil {
			return Selection{}, false
		}
		s.l.Error(err, map[string]any{"channel": s.channel, "retry_in": wait.String()})

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Selection{}, false
		case <-timer.C:
		}
		wait = min(wait*2, maxReloadBackoff)
	}
}
