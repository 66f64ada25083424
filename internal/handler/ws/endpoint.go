// Package ws implements the Connection Endpoint: one goroutine pair per
// socket translating gorilla/websocket frames into Lobby events and
// Lobby outbound directives back into frames.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alpadrive/fleet-server/config"
	"github.com/alpadrive/fleet-server/internal/domain/model"
	"github.com/alpadrive/fleet-server/internal/domain/registry"
	"github.com/alpadrive/fleet-server/internal/metrics"
)

// SampleSink receives telemetry-tagged frames instead of routing them
// through the Lobby, per spec.md §2's "same inbound path, tagged by
// mode."
type SampleSink interface {
	Publish(vehicleID string, sample model.Sample) error
}

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Service serves upgraded connections against a shared Lobby.
type Service struct {
	logger  *slog.Logger
	lobby   *registry.Lobby
	samples SampleSink
	cfg     *config.Config
}

func NewService(logger *slog.Logger, lobby *registry.Lobby, samples SampleSink, cfg *config.Config) *Service {
	return &Service{logger: logger, lobby: lobby, samples: samples, cfg: cfg}
}

// Serve upgrades r to a websocket, registers it with the Lobby under
// the given room and sender identity, and runs its pumps until the
// connection closes. It blocks for the lifetime of the socket, so
// callers run it directly from an http.HandlerFunc goroutine.
func (s *Service) Serve(w http.ResponseWriter, r *http.Request, roomID, connID string, sender model.Sender) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws upgrade failed", "error", err)
		return
	}

	// The heartbeat tunables are read once per connection, so a config
	// reload applies to the next socket, not ones already pumping.
	heartbeat := s.cfg.WS.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = 5 * time.Second
	}
	idle := s.cfg.WS.PongTimeout
	if idle <= 0 {
		idle = 10 * time.Second
	}

	mb := newMailbox(s.cfg.WS.MailboxSize)
	connCtx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := s.lobby.Connect(connCtx, mb, roomID, connID, sender); err != nil {
		code := websocket.CloseNormalClosure
		reason := "closed"
		var denial *registry.DenialError
		if errors.As(err, &denial) {
			code = int(denial.Code)
			reason = denial.Reason
		}
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		conn.Close()
		return
	}

	metrics.ConnectionsTotal.WithLabelValues(senderKindLabel(sender.Kind)).Inc()
	s.logger.Info("connection joined", "conn_id", connID, "room_id", roomID)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.writePump(connCtx, conn, mb, cancel, heartbeat) }()
	go func() { defer wg.Done(); s.readPump(conn, mb, cancel, roomID, connID, idle) }()
	wg.Wait()

	mb.close()
	s.lobby.Disconnect(connID, roomID)
	s.logger.Info("connection closed", "conn_id", connID, "room_id", roomID)
}

func senderKindLabel(kind model.SenderKind) string {
	switch kind {
	case model.SenderAdmin:
		return "admin"
	case model.SenderClient:
		return "client"
	case model.SenderPair:
		return "pair"
	default:
		return "unknown"
	}
}

// writePump drains the mailbox onto the socket and drives the
// heartbeat ping. It closes the connection on exit, which is what
// unblocks a readPump parked inside ReadMessage.
func (s *Service) writePump(ctx context.Context, conn *websocket.Conn, mb *mailbox, cancel context.CancelFunc, heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	defer cancel()
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case out, ok := <-mb.ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			switch out.Action {
			case model.ActionSend:
				if err := conn.WriteMessage(websocket.TextMessage, out.Message); err != nil {
					return
				}
			case model.ActionDisconnect:
				msg := websocket.FormatCloseMessage(int(out.Code), string(out.Message))
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump parses inbound frames and forwards them. Any frame — ping,
// pong, or data — refreshes the idle clock; a connection silent past
// idle trips the read deadline, ReadMessage errors out, and the
// deferred cancel tears the write pump (and so the socket) down.
func (s *Service) readPump(conn *websocket.Conn, mb *mailbox, cancel context.CancelFunc, roomID, connID string, idle time.Duration) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(idle))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(idle))
		return nil
	})
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(idle))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(idle))

		if msgType == websocket.BinaryMessage {
			// Transitional: binary frames echo back to the sender.
			mb.Post(model.Outbound{Action: model.ActionSend, Message: raw})
			continue
		}

		var cm model.ClientMessage
		if err := json.Unmarshal(raw, &cm); err != nil {
			mb.Post(model.Outbound{Action: model.ActionSend, Message: model.ErrorEnvelope(connID, "Your message could not be parsed")})
			continue
		}

		mode, errEnvelope, ok := cm.ResolveMode()
		if !ok {
			mb.Post(model.Outbound{Action: model.ActionSend, Message: errEnvelope})
			continue
		}

		if mode == model.ModeTelemetry {
			if err := s.samples.Publish(cm.VID, *cm.Sample); err != nil {
				s.logger.Error("telemetry publish failed", "error", err, "conn_id", connID)
			}
			continue
		}

		s.lobby.Dispatch(connID, roomID, mode, cm.ConnID, raw)
	}
}

// mailbox adapts a buffered channel to registry.Mailbox. Posting to a
// closed mailbox, or to one whose buffer is full, drops the message
// silently, matching the non-blocking delivery the Lobby assumes.
type mailbox struct {
	mu     sync.Mutex
	ch     chan model.Outbound
	closed bool
}

func newMailbox(size int) *mailbox {
	if size <= 0 {
		size = 1
	}
	return &mailbox{ch: make(chan model.Outbound, size)}
}

func (m *mailbox) Post(out model.Outbound) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	select {
	case m.ch <- out:
		return true
	default:
		return false
	}
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
