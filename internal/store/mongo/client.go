// Package mongo wraps the document-store operations spec.md §6
// contracts but does not otherwise specify: users, vehicles, and one
// collection per vehicle for logs. Every round trip goes through a
// gobreaker circuit breaker so a flapping Mongo instance fails fast
// instead of stacking up goroutines blocked on socket timeouts.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alpadrive/fleet-server/config"
)

// Client owns the mongo.Client/Database handle and the circuit breaker
// every repository in this package executes its operations through.
type Client struct {
	raw     *mongo.Client
	db      *mongo.Database
	breaker *gobreaker.CircuitBreaker
}

// NewClient connects to Mongo and pings it once to fail fast at
// startup rather than on the first request.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	raw, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := raw.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{raw: raw, db: raw.Database(cfg.Database), breaker: breaker}, nil
}

// Close disconnects the underlying mongo.Client.
func (c *Client) Close(ctx context.Context) error {
	return c.raw.Disconnect(ctx)
}

// Collection returns the named collection on this client's database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// execute runs fn through the circuit breaker, wrapping its error as a
// Storage-kind apperr at the call site (each repository method does
// that wrapping, since it knows the right message).
func (c *Client) execute(fn func() (interface{}, error)) (interface{}, error) {
	return c.breaker.Execute(fn)
}

// isNoDocuments reports whether err is (or wraps) mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
