package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard only
	},
}

// Hub maintains the set of subscribed dashboard clients and fans swarm tick
// events out to all of them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan []byte, 256),
		clients:   make(map[*websocket.Conn]bool),
	}
}

func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for client := range h.clients {
			// Write deadline keeps one blocked client from hanging the hub.
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Msg("websocket write failed; dropping client")
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe upgrades an incoming request to a websocket and registers it for
// tick-event broadcasts.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.mutex.Unlock()

	log.Debug().Int("clients", total).Msg("dashboard client connected")

	// The stream is push-only, but the read loop must run to notice
	// disconnects.
	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends raw bytes to every subscribed client.
func (h *Hub) Broadcast(data []byte) {
	h.broadcast <- data
}

// BroadcastStats serializes a swarm stats snapshot and broadcasts it as one
// tick event.
func (h *Hub) BroadcastStats(stats SwarmStats) {
	payload, err := json.Marshal(map[string]any{
		"type":             "tick",
		"tick":             stats.Tick,
		"elapsedSeconds":   stats.ElapsedSeconds,
		"activeSignals":    stats.ActiveSignals,
		"totalIntensity":   stats.TotalIntensity,
		"averageIntensity": stats.AverageIntensity,
		"summaryFound":     stats.SummaryFound,
	})
	if err != nil {
		return
	}
	h.Broadcast(payload)
}
