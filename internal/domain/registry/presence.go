package registry

import "sync"

// Presence is the process-wide status view spec.md §5 asks for
// alongside the Lobby: a room-id to admin-connection-id map plus a live
// session counter, read by the status handler without going through the
// Lobby's serialized event loop. The Lobby writes to it inside the same
// critical sections where it mutates its own rooms/sessions state, so
// the two stores never observe each other mid-update even though they
// are not the same lock.
type Presence struct {
	mu       sync.RWMutex
	admins   map[string]string // room id -> admin connection id
	sessions int
}

func NewPresence() *Presence {
	return &Presence{admins: make(map[string]string)}
}

// Join records a room's admin connection id and is called exactly once
// per room, when the vehicle endpoint creates it.
func (p *Presence) Join(roomID, adminConnID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins[roomID] = adminConnID
}

// Leave removes a room's admin entry entirely, called when the vehicle
// endpoint disconnects and the room is torn down.
func (p *Presence) Leave(roomID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.admins, roomID)
}

// IncSessions and DecSessions track total live connection-ids across all
// rooms, per spec.md §3's session-count invariant.
func (p *Presence) IncSessions(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions += n
}

func (p *Presence) DecSessions(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions -= n
}

// Snapshot returns the number of active rooms (== active vehicles) and
// the live session count, for the status handler.
func (p *Presence) Snapshot() (activeVehicles, activeSessions int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.admins), p.sessions
}
