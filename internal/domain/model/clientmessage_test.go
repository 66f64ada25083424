package model

import "testing"

func intPtr(n int) *int { return &n }

func TestResolveModeBroadcast(t *testing.T) {
	cm := ClientMessage{Mode: "broadcast", Status: "ok", Message: "hi"}
	mode, _, ok := cm.ResolveMode()
	if !ok || mode != ModeBroadcast {
		t.Fatalf("got mode=%v ok=%v, want ModeBroadcast/true", mode, ok)
	}
}

func TestResolveModeBroadcastMissingFields(t *testing.T) {
	cm := ClientMessage{Mode: "broadcast"}
	_, envelope, ok := cm.ResolveMode()
	if ok {
		t.Fatal("expected broadcast with no status/message to be rejected")
	}
	if len(envelope) == 0 {
		t.Fatal("expected a non-empty error envelope")
	}
}

func TestResolveModeWhisper(t *testing.T) {
	cm := ClientMessage{Mode: "whisper", Status: "ok", ConnID: "c1", Message: "hi"}
	mode, _, ok := cm.ResolveMode()
	if !ok || mode != ModeWhisper {
		t.Fatalf("got mode=%v ok=%v, want ModeWhisper/true", mode, ok)
	}
}

func TestResolveModeWhisperMissingConnID(t *testing.T) {
	cm := ClientMessage{Mode: "whisper", Status: "ok", Message: "hi"}
	_, _, ok := cm.ResolveMode()
	if ok {
		t.Fatal("expected whisper without conn_id to be rejected")
	}
}

func TestResolveModeAction(t *testing.T) {
	cm := ClientMessage{Mode: "action", Status: "ok", ConnID: "c1", Message: "hi"}
	mode, _, ok := cm.ResolveMode()
	if !ok || mode != ModeAction {
		t.Fatalf("got mode=%v ok=%v, want ModeAction/true", mode, ok)
	}
}

func TestResolveModeRequest(t *testing.T) {
	cm := ClientMessage{Mode: "request", Status: "ok", ConnID: "c1", Message: "hi"}
	mode, _, ok := cm.ResolveMode()
	if !ok || mode != ModeRequest {
		t.Fatalf("got mode=%v ok=%v, want ModeRequest/true", mode, ok)
	}
}

func TestResolveModeTelemetry(t *testing.T) {
	cm := ClientMessage{Mode: "telemetry", VID: "v1", Sample: &Sample{Speed: intPtr(40), Odo: 100}}
	mode, _, ok := cm.ResolveMode()
	if !ok || mode != ModeTelemetry {
		t.Fatalf("got mode=%v ok=%v, want ModeTelemetry/true", mode, ok)
	}
}

func TestResolveModeTelemetryMissingVID(t *testing.T) {
	cm := ClientMessage{Mode: "telemetry", Sample: &Sample{Odo: 100}}
	_, _, ok := cm.ResolveMode()
	if ok {
		t.Fatal("expected telemetry without vid to be rejected")
	}
}

func TestResolveModeTelemetryMissingSample(t *testing.T) {
	cm := ClientMessage{Mode: "telemetry", VID: "v1"}
	_, _, ok := cm.ResolveMode()
	if ok {
		t.Fatal("expected telemetry without sample to be rejected")
	}
}

func TestResolveModeUnknown(t *testing.T) {
	cm := ClientMessage{Mode: "bogus"}
	_, envelope, ok := cm.ResolveMode()
	if ok {
		t.Fatal("expected an unknown mode to be rejected")
	}
	if len(envelope) == 0 {
		t.Fatal("expected a non-empty error envelope")
	}
}
