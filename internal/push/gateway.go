// Package push fans evaluation results out to dashboard WebSocket
// clients. Clients subscribe to NATS topics (e.g. "signals.outcome.*")
// and the gateway bridges the stream to every interested connection.
package push

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Felixpere/final-project/internal/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Gateway struct {
	logger *zap.Logger
	js     nats.JetStreamContext

	mu       sync.RWMutex
	topics   map[string]map[*client]bool
	natsSubs map[string]*nats.Subscription
}

func NewGateway(js nats.JetStreamContext, logger *zap.Logger) *Gateway {
	return &Gateway{
		logger:   logger,
		js:       js,
		topics:   make(map[string]map[*client]bool),
		natsSubs: make(map[string]*nats.Subscription),
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("failed to upgrade websocket", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 256),
	}
	infrastructure.WSConnections.Inc()

	go g.writePump(c)
	g.readPump(c)
}

func (g *Gateway) readPump(c *client) {
	defer func() {
		g.dropClient(c)
		infrastructure.WSConnections.Dec()
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req struct {
			Action string `json:"action"` // "subscribe", "unsubscribe"
			Topic  string `json:"topic"`
		}
		if err := json.Unmarshal(message, &req); err != nil {
			continue
		}

		switch req.Action {
		case "subscribe":
			g.subscribe(c, req.Topic)
		case "unsubscribe":
			g.unsubscribe(c, req.Topic)
		}
	}
}

func (g *Gateway) writePump(c *client) {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (g *Gateway) subscribe(c *client, topic string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.topics[topic] == nil {
		g.topics[topic] = make(map[*client]bool)
		if err := g.bridgeTopic(topic); err != nil {
			g.logger.Error("failed to subscribe to NATS", zap.String("topic", topic), zap.Error(err))
		}
	}
	g.topics[topic][c] = true
	g.logger.Info("client subscribed to topic", zap.String("topic", topic))
}

func (g *Gateway) unsubscribe(c *client, topic string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(c, topic)
}

func (g *Gateway) dropClient(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for topic := range g.topics {
		g.removeLocked(c, topic)
	}
}

// removeLocked detaches a client from a topic and tears the NATS bridge
// down once the last client leaves. Callers hold g.mu.
func (g *Gateway) removeLocked(c *client, topic string) {
	clients, ok := g.topics[topic]
	if !ok {
		return
	}
	delete(clients, c)
	if len(clients) > 0 {
		return
	}
	if sub, ok := g.natsSubs[topic]; ok {
		sub.Unsubscribe()
		delete(g.natsSubs, topic)
		g.logger.Info("unsubscribed from NATS as no clients left", zap.String("topic", topic))
	}
	delete(g.topics, topic)
}

func (g *Gateway) bridgeTopic(topic string) error {
	sub, err := g.js.Subscribe(topic, func(msg *nats.Msg) {
		g.mu.RLock()
		for c := range g.topics[topic] {
			select {
			case c.send <- msg.Data:
			default:
				// Do not block, just drop if channel is full
			}
		}
		g.mu.RUnlock()
		msg.Ack()
	}, nats.ManualAck())

	if err != nil {
		return err
	}
	g.natsSubs[topic] = sub
	return nil
}
