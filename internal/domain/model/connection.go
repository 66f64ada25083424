package model

// Role distinguishes the one privileged vehicle endpoint in a room from
// its subordinate user endpoints.
type Role int

const (
	RoleVehicle Role = iota
	RoleUser
)

// CloseCode mirrors the subset of RFC 6455 close codes the Lobby hands
// out, plus the two policy codes spec.md names explicitly.
type CloseCode int

const (
	CloseNormal   CloseCode = 1000
	CloseProtocol CloseCode = 1002
	ClosePolicy   CloseCode = 1008
)

// SenderKind identifies who initiated a Connect event, which the Lobby
// needs to decide whether a room is being created, joined, or merely
// used as a one-shot pairing mailbox.
type SenderKind int

const (
	SenderAdmin SenderKind = iota
	SenderClient
	SenderPair
)

// Sender carries the SenderKind plus whatever payload that kind needs:
// the user ID for SenderClient, the pairing confirmation payload (raw
// JSON) for SenderPair. Admin carries nothing.
type Sender struct {
	Kind    SenderKind
	UserID  string
	Payload []byte
}

func AdminSender() Sender               { return Sender{Kind: SenderAdmin} }
func ClientSender(userID string) Sender { return Sender{Kind: SenderClient, UserID: userID} }
func PairSender(payload []byte) Sender  { return Sender{Kind: SenderPair, Payload: payload} }

// Action is what the Lobby asks a Connection Endpoint's write pump to
// do with an outbound item.
type Action int

const (
	ActionSend Action = iota
	ActionDisconnect
)

// Outbound is one item posted into an Endpoint's mailbox.
type Outbound struct {
	Action  Action
	Message []byte
	Code    CloseCode
}
