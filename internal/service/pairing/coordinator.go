// Package pairing implements the one-shot handshake that links a user
// to a vehicle, spec.md §4.4: the Pairing Coordinator.
package pairing

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
	"github.com/alpadrive/fleet-server/internal/metrics"
	"github.com/alpadrive/fleet-server/internal/store/mongo"
)

// Coordinator implements internal/handler/http's PairService and
// Authorizer interfaces.
type Coordinator struct {
	users    *mongo.Users
	vehicles *mongo.Vehicles

	// userCache and vehicleCache avoid a repeated document lookup for
	// the common case of the same vehicle pairing repeatedly against
	// the same handful of users within a short window, the same
	// cache-aside shape as the teacher's PeerEnricher.
	userCache    *lru.Cache[string, model.User]
	vehicleCache *lru.Cache[string, model.Vehicle]
}

func NewCoordinator(users *mongo.Users, vehicles *mongo.Vehicles, cacheSize int) *Coordinator {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	userCache, _ := lru.New[string, model.User](cacheSize)
	vehicleCache, _ := lru.New[string, model.Vehicle](cacheSize)
	return &Coordinator{users: users, vehicles: vehicles, userCache: userCache, vehicleCache: vehicleCache}
}

// Pair runs the full spec.md §4.4 procedure. A non-nil error means the
// caller should respond with an HTTP error and never open the socket
// (unknown user, unauthorized vehicle). Once those checks pass, a
// persistence failure during step 4 does not become an error: it is
// folded into the returned message, since the confirmation is always
// delivered over the socket to the vehicle's admin per step 6.
func (c *Coordinator) Pair(ctx context.Context, vehicleID, userID string, initial bool) (string, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindParse, "user id is not a valid identifier", err)
	}
	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindParse, "vehicle id is not a valid identifier", err)
	}

	if _, err := c.lookupUser(ctx, uid); err != nil {
		metrics.PairOutcomes.WithLabelValues("unknown_user").Inc()
		return "", err
	}

	count, err := c.users.CountByVehicle(ctx, vid)
	if err != nil {
		metrics.PairOutcomes.WithLabelValues("storage_error").Inc()
		return "", err
	}
	if initial && count > 0 {
		metrics.PairOutcomes.WithLabelValues("expired_code").Inc()
		return "", apperr.New(apperr.KindAuth, "This code has expired.")
	}

	if _, err := c.lookupVehicle(ctx, vid); err != nil {
		metrics.PairOutcomes.WithLabelValues("unknown_vehicle").Inc()
		return "", err
	}

	persistErr := c.users.PrependVehicle(ctx, uid, vid)
	c.userCache.Remove(userID)
	if persistErr != nil {
		metrics.PairOutcomes.WithLabelValues("persist_error").Inc()
	} else {
		metrics.PairOutcomes.WithLabelValues("ok").Inc()
	}
	return outcomeMessage(persistErr), nil
}

// HasVehicle implements the join-user authorization check, going
// through the same cache as Pair.
func (c *Coordinator) HasVehicle(ctx context.Context, userID, vehicleID string) (bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindParse, "user id is not a valid identifier", err)
	}
	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindParse, "vehicle id is not a valid identifier", err)
	}
	user, err := c.lookupUser(ctx, uid)
	if err != nil {
		return false, err
	}
	return user.HasVehicle(vid), nil
}

func (c *Coordinator) lookupUser(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	key := id.Hex()
	if cached, ok := c.userCache.Get(key); ok {
		return cached, nil
	}
	user, err := c.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	c.userCache.Add(key, *user)
	return *user, nil
}

func (c *Coordinator) lookupVehicle(ctx context.Context, id primitive.ObjectID) (model.Vehicle, error) {
	key := id.Hex()
	if cached, ok := c.vehicleCache.Get(key); ok {
		return cached, nil
	}
	vehicle, err := c.vehicles.FindByID(ctx, id)
	if err != nil {
		return model.Vehicle{}, err
	}
	c.vehicleCache.Add(key, *vehicle)
	return *vehicle, nil
}

func outcomeMessage(err error) string {
	if err == nil {
		return "Pair successful"
	}
	if apperr.KindOf(err) == apperr.KindStorage {
		return fmt.Sprintf("Database reported an error: %v", err)
	}
	return "Database had an unknown error"
}
