package model

import "encoding/json"

// Envelope is the single JSON shape every server-to-client socket
// message uses, per spec.md §6. Only the fields relevant to a given
// event are populated; the rest marshal as their zero value.
type Envelope struct {
	Event   string         `json:"event"`
	Client  EnvelopeClient `json:"client"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
}

type EnvelopeClient struct {
	UID    string `json:"uid"`
	ConnID string `json:"conn_id"`
}

func ConnectEnvelope(uid, connID string) []byte {
	return mustMarshal(Envelope{
		Event:   "connect",
		Client:  EnvelopeClient{UID: uid, ConnID: connID},
		Message: "Connection successful",
	})
}

func ConnectedEnvelope(uid, connID string) []byte {
	return mustMarshal(Envelope{
		Event:  "connected",
		Client: EnvelopeClient{UID: uid, ConnID: connID},
	})
}

func DisconnectEnvelope(connID, reason string) []byte {
	return mustMarshal(Envelope{
		Event:   "disconnect",
		Client:  EnvelopeClient{ConnID: connID},
		Message: reason,
	})
}

func ErrorEnvelope(connID, errMsg string) []byte {
	return mustMarshal(Envelope{
		Event:  "error",
		Client: EnvelopeClient{ConnID: connID},
		Error:  errMsg,
	})
}

func mustMarshal(e Envelope) []byte {
	data, err := json.Marshal(e)
	if err != nil {
		// Envelope has no fields that can fail to marshal; a failure here
		// means the type changed underneath this function.
		panic(err)
	}
	return data
}
