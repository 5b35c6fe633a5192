package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"postboard/shared"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "postboard:session-events"

const (
	streamMaxLen   = 10000
	readBlock      = 5 * time.Second
	readErrBackoff = time.Second
)

// RedisBus publishes to a Redis stream and reads it back with blocking XREADs, so
// every server process sees every session event.
type RedisBus struct {
	client *redis.Client
	stream string
}

func NewRedisBus(client *redis.Client, stream string) *RedisBus {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisBus{client: client, stream: stream}
}

func NewRedisClient(ctx context.Context, redisUrl string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisUrl)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis url: %v", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("error connecting to redis: %v", err)
	}

	log.Println("connected to redis")

	return client, nil
}

func (b *RedisBus) Publish(ctx context.Context, ev SessionEvent) error {
	return b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":          ev.Id,
			"kind":        string(ev.Kind),
			"identity_id": ev.IdentityId,
			"at":          ev.At.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan SessionEvent, error) {
	// start after the newest entry so only events published from now on are read
	lastId := "0-0"
	latest, err := b.client.XRevRangeN(ctx, b.stream, "+", "-", 1).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading stream %s: %v", b.stream, err)
	}
	if len(latest) > 0 {
		lastId = latest[0].ID
	}

	ch := make(chan SessionEvent, subscriberBuffer)

	go func() {
		defer close(ch)

		for {
			if ctx.Err() != nil {
				return
			}

			res, err := b.client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{b.stream, lastId},
				Count:   100,
				Block:   readBlock,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error reading session events from %s: %v\n", b.stream, err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(readErrBackoff):
				}
				continue
			}

			for _, stream := range res {
				for _, msg := range stream.Messages {
					lastId = msg.ID

					ev, err := parseMessage(msg)
					if err != nil {
						log.Printf("Skipping malformed session event %s: %v\n", msg.ID, err)
						continue
					}

					select {
					case ch <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch, nil
}

func parseMessage(msg redis.XMessage) (SessionEvent, error) {
	get := func(key string) string {
		v, _ := msg.Values[key].(string)
		return v
	}

	ev := SessionEvent{
		Id:         get("id"),
		Kind:       shared.SessionEventKind(get("kind")),
		IdentityId: get("identity_id"),
	}

	if ev.Kind == "" || ev.IdentityId == "" {
		return ev, errors.New("missing kind or identity_id")
	}

	if at := get("at"); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return ev, fmt.Errorf("invalid at: %v", err)
		}
		ev.At = t
	}

	if ev.Id == "" {
		ev.Id = msg.ID
	}

	return ev, nil
}
