// Package registry holds the Lobby: the single serialized actor that
// owns all connection, room, and admin state for the fleet-telemetry
// socket layer.
//
// Unlike a per-user sharded actor (one Cell per identity, the shape
// this package's teacher used for a delivery fan-out problem), this
// Lobby is a single total-ordered event loop. spec.md requires one
// global order across Connect, Disconnect, and ClientMessage so that,
// for example, a vehicle's disconnect and a user's whisper can never be
// interleaved into a state nobody designed for. Sharding by room would
// restore that property per room but the rooms here are cheap enough,
// and few enough per process, that a single loop is simpler and still
// fast: every handler body is O(room size), never O(all rooms).
package registry

import (
	"context"

	"github.com/alpadrive/fleet-server/internal/domain/model"
)

const defaultEventBuffer = 4096

// Lobby is the authoritative owner of room membership, admin identity,
// and connection routing. All mutation happens on a single goroutine
// started by Run; callers only ever send events into its channel.
type Lobby struct {
	events chan lobbyEvent

	presence *Presence

	sessions map[string]Mailbox             // connection id -> mailbox
	rooms    map[string]map[string]struct{} // room id (vehicle id) -> member connection ids
	admins   map[string]string              // room id -> admin (vehicle) connection id
}

type lobbyEvent interface{ isLobbyEvent() }

type connectEvent struct {
	mailbox Mailbox
	roomID  string
	connID  string
	sender  model.Sender
	ack     chan connectAck
}

type disconnectEvent struct {
	connID string
	roomID string
}

type clientMessageEvent struct {
	connID string
	roomID string
	mode   model.Mode
	target string // whisper target connection id; unused by other modes
	raw    []byte
}

func (connectEvent) isLobbyEvent()       {}
func (disconnectEvent) isLobbyEvent()    {}
func (clientMessageEvent) isLobbyEvent() {}

// connectAck is how the Lobby tells a not-yet-registered endpoint
// whether its Connect was accepted. On denial Code/Reason describe the
// close the endpoint must perform itself, since it has no mailbox pump
// running yet to observe a posted Outbound.
type connectAck struct {
	accepted bool
	code     model.CloseCode
	reason   string
}

// NewLobby constructs a Lobby sharing the given Presence registry. Call
// Run in its own goroutine before posting any events.
func NewLobby(presence *Presence, opts ...Option) *Lobby {
	l := &Lobby{
		presence: presence,
		sessions: make(map[string]Mailbox),
		rooms:    make(map[string]map[string]struct{}),
		admins:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.events == nil {
		l.events = make(chan lobbyEvent, defaultEventBuffer)
	}
	return l
}

// Run drains the event channel until ctx is cancelled. It is meant to
// run on a single dedicated goroutine for the Lobby's whole lifetime.
func (l *Lobby) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-l.events:
			l.handle(ev)
			// Batch-drain the rest of what's buffered before yielding back
			// to select, the same shock-absorbing idiom a per-user mailbox
			// loop uses, just scoped to the whole Lobby here.
			draining := true
			for draining {
				select {
				case next := <-l.events:
					l.handle(next)
				default:
					draining = false
				}
			}
		}
	}
}

func (l *Lobby) handle(ev lobbyEvent) {
	switch e := ev.(type) {
	case connectEvent:
		l.handleConnect(e)
	case disconnectEvent:
		l.handleDisconnect(e)
	case clientMessageEvent:
		l.handleClientMessage(e)
	}
}

// Connect registers intent to join roomID as the given sender kind and
// blocks until the Lobby has decided whether to accept it. A nil error
// means the endpoint is now Joined and should start pumping mailbox;
// the connID is already posted a "connect" envelope into mailbox when
// that happens. A non-nil error carries the close code and reason the
// endpoint must use to close its socket immediately, without ever
// starting its pumps.
func (l *Lobby) Connect(ctx context.Context, mailbox Mailbox, roomID, connID string, sender model.Sender) error {
	ack := make(chan connectAck, 1)
	ev := connectEvent{mailbox: mailbox, roomID: roomID, connID: connID, sender: sender, ack: ack}
	select {
	case l.events <- ev:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case res := <-ack:
		if res.accepted {
			return nil
		}
		return &DenialError{Code: res.code, Reason: res.reason}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect reports that connID has left roomID. It does not wait for
// the Lobby to process the event: the event is enqueued and processed in
// the Lobby's own time. It blocks only while the event channel is full.
func (l *Lobby) Disconnect(connID, roomID string) {
	l.events <- disconnectEvent{connID: connID, roomID: roomID}
}

// Dispatch routes an already-validated ClientMessage frame. target is
// only consulted for ModeWhisper, where it names the recipient
// connection id.
func (l *Lobby) Dispatch(connID, roomID string, mode model.Mode, target string, raw []byte) {
	l.events <- clientMessageEvent{connID: connID, roomID: roomID, mode: mode, target: target, raw: raw}
}

// DenialError is returned by Connect when the Lobby refuses to seat a
// new connection.
type DenialError struct {
	Code   model.CloseCode
	Reason string
}

func (e *DenialError) Error() string { return e.Reason }

func (l *Lobby) handleConnect(e connectEvent) {
	members, roomExists := l.rooms[e.roomID]

	switch e.sender.Kind {
	case model.SenderAdmin:
		if roomExists {
			e.ack <- connectAck{code: model.ClosePolicy, reason: "Vehicle with the specified ID has already connected."}
			return
		}
		l.rooms[e.roomID] = map[string]struct{}{e.connID: {}}
		l.admins[e.roomID] = e.connID
		l.sessions[e.connID] = e.mailbox
		l.presence.Join(e.roomID, e.connID)
		l.presence.IncSessions(1)
		e.mailbox.Post(model.Outbound{Action: model.ActionSend, Message: model.ConnectEnvelope("", e.connID)})
		e.ack <- connectAck{accepted: true}

	case model.SenderClient:
		if !roomExists {
			e.ack <- connectAck{code: model.CloseProtocol, reason: "Vehicle isn't active at the moment. Try again later."}
			return
		}
		members[e.connID] = struct{}{}
		l.sessions[e.connID] = e.mailbox
		l.presence.IncSessions(1)
		e.mailbox.Post(model.Outbound{Action: model.ActionSend, Message: model.ConnectEnvelope(e.sender.UserID, e.connID)})
		if adminID, ok := l.admins[e.roomID]; ok {
			if admin, ok := l.sessions[adminID]; ok {
				admin.Post(model.Outbound{Action: model.ActionSend, Message: model.ConnectedEnvelope(e.sender.UserID, e.connID)})
			}
		}
		e.ack <- connectAck{accepted: true}

	case model.SenderPair:
		if !roomExists {
			e.ack <- connectAck{code: model.CloseProtocol, reason: "Vehicle isn't active at the moment. Try again later."}
			return
		}
		if adminID, ok := l.admins[e.roomID]; ok {
			if admin, ok := l.sessions[adminID]; ok {
				admin.Post(model.Outbound{Action: model.ActionSend, Message: e.sender.Payload})
			}
		}
		e.ack <- connectAck{code: model.CloseNormal, reason: string(e.sender.Payload)}
	}
}

func (l *Lobby) handleDisconnect(e disconnectEvent) {
	if _, ok := l.sessions[e.connID]; !ok {
		return
	}
	delete(l.sessions, e.connID)

	adminID, roomLive := l.admins[e.roomID]
	if !roomLive {
		return
	}

	if adminID == e.connID {
		members := l.rooms[e.roomID]
		removed := 0
		for memberID := range members {
			if memberID == e.connID {
				continue
			}
			if mb, ok := l.sessions[memberID]; ok {
				mb.Post(model.Outbound{
					Action:  model.ActionDisconnect,
					Code:    model.CloseNormal,
					Message: model.DisconnectEnvelope(memberID, "Vehicle left and the room is being closed"),
				})
				delete(l.sessions, memberID)
			}
			removed++
		}
		delete(l.rooms, e.roomID)
		delete(l.admins, e.roomID)
		l.presence.Leave(e.roomID)
		l.presence.DecSessions(removed + 1)
		return
	}

	if members, ok := l.rooms[e.roomID]; ok {
		delete(members, e.connID)
	}
	l.presence.DecSessions(1)
	if admin, ok := l.sessions[adminID]; ok {
		admin.Post(model.Outbound{Action: model.ActionSend, Message: model.DisconnectEnvelope(e.connID, "A client has disconnected")})
	}
}

func (l *Lobby) handleClientMessage(e clientMessageEvent) {
	members, ok := l.rooms[e.roomID]
	if !ok {
		return
	}

	switch e.mode {
	case model.ModeBroadcast:
		for memberID := range members {
			if memberID == e.connID {
				continue
			}
			if mb, ok := l.sessions[memberID]; ok {
				mb.Post(model.Outbound{Action: model.ActionSend, Message: e.raw})
			}
		}
	case model.ModeWhisper:
		if _, inRoom := members[e.target]; !inRoom {
			return
		}
		if mb, ok := l.sessions[e.target]; ok {
			mb.Post(model.Outbound{Action: model.ActionSend, Message: e.raw})
		}
	case model.ModeAction, model.ModeRequest:
		adminID, ok := l.admins[e.roomID]
		if !ok {
			return
		}
		if mb, ok := l.sessions[adminID]; ok {
			mb.Post(model.Outbound{Action: model.ActionSend, Message: e.raw})
		}
	default:
		// Telemetry frames are routed to the aggregator before they
		// reach the Lobby; anything else unrecognized is dropped, since
		// a panic here would take down the only event loop.
	}
}
