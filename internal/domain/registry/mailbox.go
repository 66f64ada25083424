package registry

import "github.com/alpadrive/fleet-server/internal/domain/model"

// Mailbox is the Lobby's view of a Connection Endpoint: a send-only,
// non-blocking sink for outbound directives. Implementations must make
// Post a no-op once the endpoint has closed, matching spec.md §4.3's
// failure-handling clause ("a send to an endpoint mailbox that has
// already closed is dropped silently").
type Mailbox interface {
	Post(model.Outbound) bool
}
