package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/emberhome/ember/internal/protocol"
)

var (
	// ErrAuthRejected means the processing node refused our secret.
	ErrAuthRejected = errors.New("processing node rejected the shared secret")
	// ErrBadHandshake means the node rejected our header or format.
	ErrBadHandshake = errors.New("processing node rejected the session header")
)

// UplinkConfig identifies this listener to the processing node.
type UplinkConfig struct {
	URL        string
	Secret     string
	Host       string
	Room       string
	SampleRate int
	Timeout    time.Duration
}

// Uplink ships one captured utterance per connection: header, PCM,
// sentinel, then exactly one reply. Strictly half-duplex.
type Uplink struct {
	cfg    UplinkConfig
	dialer *websocket.Dialer
	logger *zap.Logger
}

func NewUplink(cfg UplinkConfig, logger *zap.Logger) *Uplink {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uplink{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Exchange sends one utterance and waits for its reply.
func (u *Uplink) Exchange(ctx context.Context, pcm []byte) (protocol.Reply, error) {
	if len(pcm) == 0 {
		return protocol.Reply{}, errors.New("empty utterance")
	}

	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	conn, _, err := u.dialer.DialContext(ctx, u.cfg.URL, nil)
	if err != nil {
		return protocol.Reply{}, fmt.Errorf("dial processing node: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	header := protocol.Header{
		Type:       protocol.MessageTypeUtterance,
		SampleRate: u.cfg.SampleRate,
		Secret:     u.cfg.Secret,
		Host:       u.cfg.Host,
		Room:       u.cfg.Room,
	}
	raw, err := json.Marshal(header)
	if err != nil {
		return protocol.Reply{}, fmt.Errorf("encode header: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return protocol.Reply{}, fmt.Errorf("send header: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		return protocol.Reply{}, fmt.Errorf("send audio: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(protocol.EndSentinel)); err != nil {
		return protocol.Reply{}, fmt.Errorf("send end sentinel: %w", err)
	}

	_, payload, err := conn.ReadMessage()
	if err != nil {
		return protocol.Reply{}, classifyCloseError(err)
	}

	var reply protocol.Reply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return protocol.Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	u.logger.Debug("reply received",
		zap.String("heard", reply.Heard),
		zap.String("route", reply.Route))
	return reply, nil
}

func classifyCloseError(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case protocol.CloseAuthFailure:
			return ErrAuthRejected
		case protocol.CloseBadHeader, protocol.CloseBadFormat:
			return ErrBadHandshake
		}
	}
	return fmt.Errorf("read reply: %w", err)
}
