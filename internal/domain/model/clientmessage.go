package model

// Mode is how a ClientMessage should be routed by the Lobby.
type Mode int

const (
	ModeBroadcast Mode = iota
	ModeWhisper
	ModeAction
	ModeRequest
	// ModeTelemetry routes a sample to the Telemetry Aggregator instead
	// of the Lobby, per spec.md §2's "same inbound path, tagged by
	// mode." No frame with this mode survived filtering in
	// original_source/sockets/src/ws.rs, so the tag name and required
	// fields below are this port's own addition.
	ModeTelemetry
)

// ClientMessage is the inbound socket frame shape from spec.md §6.
type ClientMessage struct {
	Mode        string   `json:"mode"`
	VID         string   `json:"vid"`
	ConnID      string   `json:"conn_id"`
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	Attachments []string `json:"attachments"`
	Sample      *Sample  `json:"sample,omitempty"`
}

// modeRule names the fields a mode requires to be non-empty, besides
// the mode name itself.
type modeRule struct {
	mode     Mode
	required func(cm ClientMessage) []string
}

var modeRules = map[string]modeRule{
	"broadcast": {
		mode:     ModeBroadcast,
		required: func(cm ClientMessage) []string { return []string{cm.Status, cm.Message} },
	},
	"whisper": {
		mode:     ModeWhisper,
		required: func(cm ClientMessage) []string { return []string{cm.Status, cm.ConnID, cm.Message} },
	},
	"action": {
		mode:     ModeAction,
		required: func(cm ClientMessage) []string { return []string{cm.Status, cm.ConnID, cm.Message} },
	},
	"request": {
		mode:     ModeRequest,
		required: func(cm ClientMessage) []string { return []string{cm.Status, cm.ConnID, cm.Message} },
	},
}

// ResolveMode validates the message against its declared mode and
// returns the resolved Mode, or an error envelope ready to send back
// to the sender without routing, matching ws.rs's get_mode.
func (cm ClientMessage) ResolveMode() (Mode, []byte, bool) {
	if cm.Mode == "telemetry" {
		if cm.VID == "" || cm.Sample == nil {
			return 0, ErrorEnvelope(cm.ConnID, "Your message is missing one or more parameters required for the given mode"), false
		}
		return ModeTelemetry, nil, true
	}

	rule, ok := modeRules[cm.Mode]
	if !ok {
		return 0, ErrorEnvelope(cm.ConnID, "Your message is missing or has an incorrect mode parameter"), false
	}
	for _, field := range rule.required(cm) {
		if field == "" {
			return 0, ErrorEnvelope(cm.ConnID, "Your message is missing one or more parameters required for the given mode"), false
		}
	}
	return rule.mode, nil, true
}
