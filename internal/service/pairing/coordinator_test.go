package pairing

import (
	"context"
	"testing"

	"github.com/alpadrive/fleet-server/internal/apperr"
)

func TestOutcomeMessageSuccess(t *testing.T) {
	if got := outcomeMessage(nil); got != "Pair successful" {
		t.Errorf("outcomeMessage(nil) = %q, want %q", got, "Pair successful")
	}
}

func TestOutcomeMessageStorageError(t *testing.T) {
	err := apperr.Wrap(apperr.KindStorage, "prepend vehicle", context.DeadlineExceeded)
	got := outcomeMessage(err)
	if got == "Pair successful" {
		t.Fatal("a storage error must not report success")
	}
	if got != "Database reported an error: prepend vehicle: context deadline exceeded" {
		t.Errorf("outcomeMessage = %q", got)
	}
}

func TestOutcomeMessageUnknownError(t *testing.T) {
	err := apperr.New(apperr.KindUnknown, "mystery")
	if got := outcomeMessage(err); got != "Database had an unknown error" {
		t.Errorf("outcomeMessage = %q, want the unknown-error fallback", got)
	}
}

// TestPairRejectsMalformedIdentifiers exercises Pair's validation step,
// which runs before any storage access, so it needs no live Mongo client.
func TestPairRejectsMalformedIdentifiers(t *testing.T) {
	c := &Coordinator{}

	if _, err := c.Pair(context.Background(), "vehicle-1", "not-an-object-id", true); err == nil {
		t.Fatal("expected a malformed user id to be rejected")
	} else if apperr.KindOf(err) != apperr.KindParse {
		t.Errorf("kind = %v, want KindParse", apperr.KindOf(err))
	}
}

func TestPairRejectsMalformedVehicleID(t *testing.T) {
	c := &Coordinator{}

	if _, err := c.Pair(context.Background(), "not-an-object-id", "000000000000000000000000", true); err == nil {
		t.Fatal("expected a malformed vehicle id to be rejected")
	} else if apperr.KindOf(err) != apperr.KindParse {
		t.Errorf("kind = %v, want KindParse", apperr.KindOf(err))
	}
}

func TestHasVehicleRejectsMalformedIdentifiers(t *testing.T) {
	c := &Coordinator{}
	if _, err := c.HasVehicle(context.Background(), "bad", "000000000000000000000000"); err == nil {
		t.Fatal("expected a malformed user id to be rejected")
	}
}
