// Package session runs the server side of the utterance protocol: one
// WebSocket connection per listener device, one JSON reply per
// captured utterance.
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
	"github.com/emberhome/ember/internal/interpreter"
)

// Config carries the handshake parameters every connection must match.
type Config struct {
	// Secret is the shared token listeners present in their header.
	Secret string

	// SampleRate all inbound PCM must use. A header that omits sr is
	// accepted and assumed to match.
	SampleRate int
}

// Hub maintains the set of active listener sessions and holds the
// collaborators each session dispatches to.
type Hub struct {
	// Registered sessions keyed by session ID.
	sessions map[string]*Session

	// Register requests from new connections.
	register chan *Session

	// Unregister requests from closing connections.
	unregister chan *Session

	// Mutex for thread-safe access to the sessions map
	mu sync.RWMutex

	cfg          Config
	stt          repositories.SpeechToText
	interp       *interpreter.Interpreter
	interactions repositories.InteractionLog

	logger *zap.Logger
}

// NewHub creates a session hub. interactions may be nil to disable
// persistence.
func NewHub(
	cfg Config,
	stt repositories.SpeechToText,
	interp *interpreter.Interpreter,
	interactions repositories.InteractionLog,
	logger *zap.Logger,
) *Hub {
	return &Hub{
		sessions:     make(map[string]*Session),
		register:     make(chan *Session),
		unregister:   make(chan *Session),
		cfg:          cfg,
		stt:          stt,
		interp:       interp,
		interactions: interactions,
		logger:       logger,
	}
}

// Run starts the hub's registry loop.
func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s.id] = s
			h.mu.Unlock()
			h.logger.Info("Listener connected", zap.String("sessionID", s.id))

		case s := <-h.unregister:
			h.mu.Lock()
			delete(h.sessions, s.id)
			h.mu.Unlock()
			h.logger.Info("Listener disconnected", zap.String("sessionID", s.id))
		}
	}
}

// Count reports the number of active sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
