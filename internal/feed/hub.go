// Package feed pushes "movie saved" events to websocket listeners.
package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const MovieSavedType = "movie_saved"

// MovieSaved is broadcast after a movie row is created or updated.
type MovieSaved struct {
	Type   string `json:"type"`
	TMDBID int64  `json:"tmdb_id"`
	Title  string `json:"title"`
	RunID  string `json:"run_id,omitempty"`
}

type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	log     zerolog.Logger
}

type Stats struct {
	WSClients int `json:"ws_clients"`
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		log:     log.With().Str("component", "feed").Logger(),
	}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// PublishSaved broadcasts a MovieSaved event.
func (h *Hub) PublishSaved(runID string, tmdbID int64, title string) {
	h.BroadcastJSON(MovieSaved{Type: MovieSavedType, TMDBID: tmdbID, Title: title, RunID: runID})
}

// BroadcastJSON sends v to every client, dropping the ones that fail.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal feed event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{WSClients: len(h.clients)}
}
