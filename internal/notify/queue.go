package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const queueKey = "notify:jobs"

// Queue hands confirmation messages to a background worker through a redis
// list. Without redis it degrades to a direct fire-and-forget send. Either
// way Enqueue never blocks the caller on delivery and delivery failures are
// only logged.
type Queue struct {
	redis       *redis.Client
	dispatcher  Dispatcher
	maxAttempts int
}

type job struct {
	Message Message `json:"message"`
	Attempt int     `json:"attempt"`
}

func NewQueue(redisClient *redis.Client, d Dispatcher, maxAttempts int) *Queue {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Queue{redis: redisClient, dispatcher: d, maxAttempts: maxAttempts}
}

func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	if q.redis == nil {
		go q.deliver(context.Background(), job{Message: msg, Attempt: 1})
		return nil
	}

	raw, err := json.Marshal(job{Message: msg, Attempt: 1})
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, queueKey, raw).Err()
}

// Run consumes jobs until ctx is cancelled. Intended to run in its own
// goroutine from cmd/api.
func (q *Queue) Run(ctx context.Context) {
	if q.redis == nil {
		<-ctx.Done()
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := q.redis.BRPop(ctx, time.Second, queueKey).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Printf("notify: queue pop error: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if len(res) != 2 {
			continue
		}

		var j job
		if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
			log.Printf("notify: drop malformed job: %v", err)
			continue
		}
		q.deliver(ctx, j)
	}
}

var backoffFn = func(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

func (q *Queue) deliver(ctx context.Context, j job) {
	res, err := q.dispatcher.Send(ctx, j.Message)
	if err == nil {
		log.Printf("notify: sent confirmation to=%s message_id=%s", j.Message.To, res.MessageID)
		return
	}

	if j.Attempt >= q.maxAttempts || q.redis == nil {
		log.Printf("notify: giving up to=%s after %d attempts: %v", j.Message.To, j.Attempt, err)
		return
	}

	log.Printf("notify: send failed to=%s attempt=%d: %v", j.Message.To, j.Attempt, err)
	j.Attempt++

	// the backoff wait runs off the worker loop so a failing recipient
	// never delays the jobs queued behind it
	go q.requeueAfter(ctx, j, backoffFn(j.Attempt-1))
}

func (q *Queue) requeueAfter(ctx context.Context, j job, wait time.Duration) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(wait):
	}

	raw, err := json.Marshal(j)
	if err != nil {
		return
	}
	if err := q.redis.LPush(ctx, queueKey, raw).Err(); err != nil {
		log.Printf("notify: requeue failed to=%s: %v", j.Message.To, err)
	}
}
