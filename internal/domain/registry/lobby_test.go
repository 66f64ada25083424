package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alpadrive/fleet-server/internal/domain/model"
)

// recordingMailbox collects every Outbound item posted to it.
type recordingMailbox struct {
	mu   sync.Mutex
	sent []model.Outbound
}

func (m *recordingMailbox) Post(out model.Outbound) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, out)
	return true
}

func (m *recordingMailbox) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newRunningLobby(t *testing.T) (*Lobby, *Presence, func()) {
	t.Helper()
	presence := NewPresence()
	lobby := NewLobby(presence)
	ctx, cancel := context.WithCancel(context.Background())
	go lobby.Run(ctx)
	return lobby, presence, cancel
}

func connect(t *testing.T, lobby *Lobby, mb Mailbox, roomID, connID string, sender model.Sender) error {
	t.Helper()
	return lobby.Connect(context.Background(), mb, roomID, connID, sender)
}

func TestLobbyAdminJoinTwiceIsDenied(t *testing.T) {
	lobby, _, cancel := newRunningLobby(t)
	defer cancel()

	if err := connect(t, lobby, &recordingMailbox{}, "v1", "c1", model.AdminSender()); err != nil {
		t.Fatalf("first admin connect: %v", err)
	}
	err := connect(t, lobby, &recordingMailbox{}, "v1", "c2", model.AdminSender())
	if err == nil {
		t.Fatal("expected second admin connect for the same room to be denied")
	}
	var denial *DenialError
	if !errorsAs(err, &denial) {
		t.Fatalf("expected a *DenialError, got %T: %v", err, err)
	}
	if denial.Code != model.ClosePolicy {
		t.Errorf("code = %v, want ClosePolicy", denial.Code)
	}
}

func TestLobbyClientCannotJoinUnknownRoom(t *testing.T) {
	lobby, _, cancel := newRunningLobby(t)
	defer cancel()

	err := connect(t, lobby, &recordingMailbox{}, "ghost", "c1", model.ClientSender("u1"))
	if err == nil {
		t.Fatal("expected join against a nonexistent room to be denied")
	}
}

func TestLobbySessionCountInvariant(t *testing.T) {
	lobby, presence, cancel := newRunningLobby(t)
	defer cancel()

	if err := connect(t, lobby, &recordingMailbox{}, "v1", "admin", model.AdminSender()); err != nil {
		t.Fatalf("admin connect: %v", err)
	}
	if err := connect(t, lobby, &recordingMailbox{}, "v1", "u1", model.ClientSender("user-1")); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	if err := connect(t, lobby, &recordingMailbox{}, "v1", "u2", model.ClientSender("user-2")); err != nil {
		t.Fatalf("client connect: %v", err)
	}

	waitFor(t, func() bool {
		_, sessions := presence.Snapshot()
		return sessions == 3
	})

	lobby.Disconnect("u1", "v1")
	waitFor(t, func() bool {
		_, sessions := presence.Snapshot()
		return sessions == 2
	})
}

func TestLobbyBroadcastReachesEveryOtherMember(t *testing.T) {
	lobby, _, cancel := newRunningLobby(t)
	defer cancel()

	admin := &recordingMailbox{}
	u1 := &recordingMailbox{}
	u2 := &recordingMailbox{}

	mustConnect(t, lobby, admin, "v1", "admin", model.AdminSender())
	mustConnect(t, lobby, u1, "v1", "u1", model.ClientSender("user-1"))
	mustConnect(t, lobby, u2, "v1", "u2", model.ClientSender("user-2"))

	// Each client already holds its own "connect" envelope; count only
	// what arrives after the broadcast.
	u1Before, u2Before := u1.count(), u2.count()

	lobby.Dispatch("u1", "v1", model.ModeBroadcast, "", []byte(`{"mode":"broadcast"}`))

	waitFor(t, func() bool { return u2.count() >= u2Before+1 })
	if got := u1.count() - u1Before; got != 0 {
		t.Errorf("sender should not receive its own broadcast, got %d messages", got)
	}
}

func TestLobbyWhisperOnlyReachesTarget(t *testing.T) {
	lobby, _, cancel := newRunningLobby(t)
	defer cancel()

	admin := &recordingMailbox{}
	u1 := &recordingMailbox{}
	u2 := &recordingMailbox{}

	mustConnect(t, lobby, admin, "v1", "admin", model.AdminSender())
	mustConnect(t, lobby, u1, "v1", "u1", model.ClientSender("user-1"))
	mustConnect(t, lobby, u2, "v1", "u2", model.ClientSender("user-2"))

	// Each client already holds its own "connect" envelope; count only
	// what arrives after the whisper.
	u1Before, u2Before := u1.count(), u2.count()

	lobby.Dispatch("admin", "v1", model.ModeWhisper, "u1", []byte(`{"mode":"whisper","conn_id":"u1"}`))

	waitFor(t, func() bool { return u1.count() >= u1Before+1 })
	if got := u2.count() - u2Before; got != 0 {
		t.Errorf("whisper leaked to a non-target connection, got %d messages", got)
	}
}

func TestLobbyAdminDisconnectClosesRoom(t *testing.T) {
	lobby, presence, cancel := newRunningLobby(t)
	defer cancel()

	admin := &recordingMailbox{}
	u1 := &recordingMailbox{}

	mustConnect(t, lobby, admin, "v1", "admin", model.AdminSender())
	mustConnect(t, lobby, u1, "v1", "u1", model.ClientSender("user-1"))

	u1Before := u1.count()

	lobby.Disconnect("admin", "v1")

	waitFor(t, func() bool { return u1.count() >= u1Before+1 })
	waitFor(t, func() bool {
		vehicles, sessions := presence.Snapshot()
		return vehicles == 0 && sessions == 0
	})
}

func mustConnect(t *testing.T, lobby *Lobby, mb Mailbox, roomID, connID string, sender model.Sender) {
	t.Helper()
	if err := connect(t, lobby, mb, roomID, connID, sender); err != nil {
		t.Fatalf("connect %s/%s: %v", roomID, connID, err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// errorsAs avoids importing "errors" just for its one call site above.
func errorsAs(err error, target **DenialError) bool {
	denial, ok := err.(*DenialError)
	if !ok {
		return false
	}
	*target = denial
	return true
}
