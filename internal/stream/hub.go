package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans tracker access events out to websocket watchers. Events are
// mirrored through redis pub/sub so watchers connected to other instances
// see them too.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Token string
	Send  chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(token string) *Client {
	client := &Client{
		Token: token,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[token] == nil {
		h.clients[token] = map[*Client]struct{}{}
	}
	h.clients[token][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if watchers, ok := h.clients[client.Token]; ok {
		delete(watchers, client)
		if len(watchers) == 0 {
			delete(h.clients, client.Token)
		}
	}
	close(client.Send)
}

// Broadcast delivers payload to every watcher of token. The read lock is
// held across the sends so Unregister cannot close a Send channel while a
// send is in flight; sends never block, so the hold is short.
func (h *Hub) Broadcast(token string, payload []byte) {
	h.mu.RLock()
	for client := range h.clients[token] {
		select {
		case client.Send <- payload:
		default:
		}
	}
	h.mu.RUnlock()

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(token), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "trackers:*:access")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		token := tokenFromChannel(msg.Channel)
		h.mu.RLock()
		for client := range h.clients[token] {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
		h.mu.RUnlock()
	}
}

func redisChannel(token string) string {
	return "trackers:" + token + ":access"
}

func tokenFromChannel(ch string) string {
	// trackers:{token}:access
	const prefix = "trackers:"
	const suffix = ":access"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
