package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/entities"
	"github.com/emberhome/ember/domain/repositories"
	"github.com/emberhome/ember/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB audio frames

	// Transcription and interpretation each get a bounded slice of the
	// session's time; a stuck backend must not wedge the connection.
	sttTimeout  = 20 * time.Second
	execTimeout = 20 * time.Second

	// recordTimeout bounds the best-effort interaction log write.
	recordTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Listeners authenticate via the header secret, not origin.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var errHandshake = errors.New("handshake rejected")

// Session is one listener connection. The protocol is half-duplex:
// the read loop owns all reply writes, so no send pump is needed,
// only a mutex shared with the keepalive pinger.
type Session struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	id     string
	logger *zap.Logger

	// Last validated header. nil until the handshake succeeds.
	header *protocol.Header

	// PCM accumulated for the utterance in flight.
	buf bytes.Buffer

	writeMu sync.Mutex
}

// Handle upgrades an HTTP request to a listener session and serves it
// until the connection closes.
func Handle(hub *Hub, c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	s := &Session{
		hub:    hub,
		conn:   conn,
		id:     uuid.NewString(),
		logger: hub.logger,
	}

	hub.register <- s
	go s.serve()

	return nil
}

func (s *Session) serve() {
	stop := make(chan struct{})
	defer func() {
		close(stop)
		s.hub.unregister <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go s.ping(stop)

	for {
		messageType, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Error("WebSocket error", zap.String("sessionID", s.id), zap.Error(err))
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch messageType {
		case websocket.BinaryMessage:
			s.buf.Write(message)

		case websocket.TextMessage:
			if string(message) == protocol.EndSentinel {
				s.finishUtterance()
				continue
			}
			// Any other text frame is a (re-)handshake; listeners may
			// refresh their room mid-connection.
			if err := s.handleHeader(message); err != nil {
				return
			}

		default:
			s.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// ping keeps idle connections alive between utterances.
func (s *Session) ping(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// handleHeader validates a handshake frame. A rejected handshake
// closes the connection with a protocol close code and returns a
// non-nil error.
func (s *Session) handleHeader(message []byte) error {
	var hdr protocol.Header
	if err := json.Unmarshal(message, &hdr); err != nil {
		s.logger.Warn("Bad handshake header", zap.String("sessionID", s.id), zap.Error(err))
		s.closeWith(protocol.CloseBadHeader, "bad header")
		return errHandshake
	}

	if hdr.Secret != s.hub.cfg.Secret {
		s.logger.Warn("Handshake auth failure", zap.String("sessionID", s.id), zap.String("host", hdr.Host))
		s.closeWith(protocol.CloseAuthFailure, "auth")
		return errHandshake
	}

	if hdr.Type != protocol.MessageTypeUtterance ||
		(hdr.SampleRate != 0 && hdr.SampleRate != s.hub.cfg.SampleRate) {
		s.logger.Warn("Handshake format rejected",
			zap.String("sessionID", s.id),
			zap.String("type", hdr.Type),
			zap.Int("sr", hdr.SampleRate))
		s.closeWith(protocol.CloseBadFormat, "bad sample rate or type")
		return errHandshake
	}

	hdr.Room = strings.TrimSpace(hdr.Room)
	s.header = &hdr
	s.logger.Info("Handshake accepted",
		zap.String("sessionID", s.id),
		zap.String("host", hdr.Host),
		zap.String("room", hdr.Room))
	return nil
}

// finishUtterance runs the accumulated PCM through transcription and
// interpretation and writes exactly one reply.
func (s *Session) finishUtterance() {
	pcm := make([]byte, s.buf.Len())
	copy(pcm, s.buf.Bytes())
	s.buf.Reset()

	if s.header == nil {
		s.logger.Warn("Utterance before handshake dropped", zap.String("sessionID", s.id))
		return
	}
	room := s.header.Room

	s.logger.Info("Utterance received",
		zap.String("sessionID", s.id),
		zap.Int("bytes", len(pcm)),
		zap.String("room", room))

	if len(pcm) == 0 {
		s.writeReply(protocol.Empty())
		return
	}

	start := time.Now()

	sttCtx, cancel := context.WithTimeout(context.Background(), sttTimeout)
	text, err := s.hub.stt.Transcribe(sttCtx, pcm, repositories.AudioConfig{
		SampleRate: s.hub.cfg.SampleRate,
		Encoding:   "LINEAR16",
		Language:   "en-US",
	})
	cancel()
	if err != nil {
		s.logger.Error("Transcription failed", zap.String("sessionID", s.id), zap.Error(err))
		s.writeReply(protocol.Reply{Msg: "stt_error: " + err.Error()})
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.writeReply(protocol.Empty())
		return
	}
	s.logger.Info("Heard", zap.String("sessionID", s.id), zap.String("text", text))

	result := s.execute(text, room)
	if result == "" {
		s.writeReply(protocol.Reply{Heard: text, Room: room, SkipTTS: true})
		return
	}

	var reply protocol.Reply
	if action, query, ok := protocol.ParseRouted(result); ok {
		reply = protocol.Routed(action, query, text, room)
	} else {
		reply = protocol.Speak(result, text, room)
	}
	s.writeReply(reply)
	s.recordInteraction(text, result, reply, start)
}

// execute runs the interpreter under a deadline so a stuck
// collaborator cannot hold the session past execTimeout.
func (s *Session) execute(text, room string) string {
	ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
	defer cancel()

	done := make(chan string, 1)
	go func() {
		done <- s.hub.interp.Execute(ctx, text, room)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		s.logger.Error("Command execution timed out",
			zap.String("sessionID", s.id),
			zap.String("text", text))
		return "exec_error: timeout"
	}
}

func (s *Session) writeReply(reply protocol.Reply) {
	payload, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("Failed to marshal reply", zap.Error(err))
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.logger.Error("Failed to write reply", zap.String("sessionID", s.id), zap.Error(err))
		return
	}
	s.logger.Info("Reply sent",
		zap.String("sessionID", s.id),
		zap.String("msg", reply.Msg),
		zap.String("action", reply.Action),
		zap.Bool("skipTTS", reply.SkipTTS))
}

// recordInteraction persists the exchange best-effort off the session
// goroutine. Losing a record never affects the reply.
func (s *Session) recordInteraction(heard, result string, reply protocol.Reply, start time.Time) {
	if s.hub.interactions == nil {
		return
	}

	interaction := &entities.Interaction{
		Host:       s.header.Host,
		Room:       reply.Room,
		Heard:      heard,
		Reply:      result,
		Routed:     reply.Route != "",
		ReceivedAt: start,
		DurationMs: time.Since(start).Milliseconds(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.hub.interactions.Record(ctx, interaction); err != nil {
			s.logger.Error("Failed to record interaction",
				zap.String("sessionID", s.id),
				zap.Error(err))
		}
	}()
}

// closeWith sends a close control frame carrying a protocol close code.
func (s *Session) closeWith(code int, reason string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	deadline := time.Now().Add(writeWait)
	s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
