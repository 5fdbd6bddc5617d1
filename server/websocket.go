// server/websocket.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/sim"

	"github.com/gorilla/websocket"
)

const (
	wsSendQueueLength = 64
	wsWriteTimeout    = 5 * time.Second
)

// wsFrame is the JSON message sent to websocket clients. Exactly one of
// the slices is set, according to Type.
type wsFrame struct {
	Type   string         `json:"type"` // "active", "alerts", or "events"
	Alerts []alertMessage `json:"alerts,omitempty"`
	Events []sim.Event    `json:"events,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// AlertHub streams alert transitions and airspace events to websocket
// clients. It is an AlertSink. Clients that can't keep up are
// disconnected rather than allowed to stall the others.
type AlertHub struct {
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	upgrader websocket.Upgrader
	// active, if set, provides the alerts to send to a newly connected
	// client.
	active func() []conflict.RiskAssessment
	lg     *log.Logger
}

func NewAlertHub(active func() []conflict.RiskAssessment, lg *log.Logger) *AlertHub {
	return &AlertHub{
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		active: active,
		lg:     lg,
	}
}

func (h *AlertHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.lg.Warn("websocket upgrade failed", slog.String("remote", r.RemoteAddr), slog.Any("error", err))
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsSendQueueLength)}
	if h.active != nil {
		if msg, err := h.activeFrame(); err == nil {
			c.send <- msg
		}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.lg.Info("websocket client connected", slog.String("remote", conn.RemoteAddr().String()),
		slog.Int("clients", n))

	go h.writer(c)

	// We don't expect anything from the client, but reading is how we
	// find out that it went away.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.drop(c)
	h.lg.Info("websocket client disconnected", slog.String("remote", conn.RemoteAddr().String()))
}

func (h *AlertHub) writer(c *wsClient) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.lg.Warn("websocket write", slog.String("remote", c.conn.RemoteAddr().String()),
				slog.Any("error", err))
			h.drop(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

// drop removes c from the hub; its writer exits once the queued
// messages have been sent.
func (h *AlertHub) drop(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *AlertHub) NumClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *AlertHub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.lg.Warn("websocket client too slow; disconnecting",
				slog.String("remote", c.conn.RemoteAddr().String()))
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *AlertHub) activeFrame() ([]byte, error) {
	f := wsFrame{Type: "active", Alerts: []alertMessage{}}
	for _, ra := range h.active() {
		f.Alerts = append(f.Alerts, makeAlertMessage(AlertEvent{Kind: AlertRaised, Assessment: ra,
			Time: time.Now()}))
	}
	return json.Marshal(f)
}

func (h *AlertHub) Publish(ctx context.Context, events []AlertEvent) error {
	f := wsFrame{Type: "alerts"}
	for _, e := range events {
		f.Alerts = append(f.Alerts, makeAlertMessage(e))
	}
	msg, err := json.Marshal(f)
	if err != nil {
		return err
	}
	h.broadcast(msg)
	return nil
}

func (h *AlertHub) PublishEvents(events []sim.Event) error {
	if len(events) == 0 {
		return nil
	}
	msg, err := json.Marshal(wsFrame{Type: "events", Events: events})
	if err != nil {
		return err
	}
	h.broadcast(msg)
	return nil
}

// PumpEvents forwards events from the stream to the websocket clients
// until ctx is canceled.
func (h *AlertHub) PumpEvents(ctx context.Context, es *sim.EventStream, interval time.Duration) {
	sub := es.Subscribe()
	defer sub.Unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.PublishEvents(sub.Get()); err != nil {
				h.lg.Warn("websocket events", slog.Any("error", err))
			}
		}
	}
}

// Close disconnects all of the clients.
func (h *AlertHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	return nil
}
