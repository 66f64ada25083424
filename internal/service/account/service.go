// Package account implements the thin document-store operations
// backing signup, login, registration, edit, and refresh — spec.md's
// Account/Vehicle Registry component. Its only coupling to the core
// lobby/aggregator subsystems is the user→vehicles list the join-user
// flow reads and the Pairing Coordinator mutates.
package account

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
	"github.com/alpadrive/fleet-server/internal/store/mongo"
)

// Service implements internal/handler/http's AccountService and
// Authorizer interfaces.
type Service struct {
	users    *mongo.Users
	vehicles *mongo.Vehicles
}

func NewService(users *mongo.Users, vehicles *mongo.Vehicles) *Service {
	return &Service{users: users, vehicles: vehicles}
}

func (s *Service) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.New(apperr.KindConflict, "A user with that username or email already exists.")
	}
	return s.users.Create(ctx, model.User{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
}

// Login compares the stored password as an opaque string, per spec.md
// §1: credential hashing discipline is an external collaborator this
// system does not implement. It hydrates the user's vehicles list into
// full Vehicle documents, matching manager.rs's login join. The user
// lookup and the vehicle hydration run in sequence (the user is needed
// before its vehicles are known); hydrateVehicles then fans the
// per-vehicle lookups out over an errgroup.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.User, []model.Vehicle, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, err
	}
	if user.Password != req.Password {
		return nil, nil, apperr.New(apperr.KindAuth, "Incorrect username or password.")
	}
	vehicles, err := s.hydrateVehicles(ctx, user.Vehicles)
	if err != nil {
		return nil, nil, err
	}
	return user, vehicles, nil
}

func (s *Service) RefreshVehicles(ctx context.Context, userID string) ([]model.Vehicle, error) {
	oid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.hydrateVehicles(ctx, user.Vehicles)
}

// hydrateVehicles resolves every vehicle document named in ids
// concurrently, one goroutine per id, the same ResolvePeers shape the
// teacher uses to fan out independent per-peer lookups. A vehicle that
// no longer exists is dropped rather than failing the whole refresh,
// since a stale id in a user's list shouldn't break login.
func (s *Service) hydrateVehicles(ctx context.Context, ids []primitive.ObjectID) ([]model.Vehicle, error) {
	if len(ids) == 0 {
		return []model.Vehicle{}, nil
	}
	resolved := make([]*model.Vehicle, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			vehicle, err := s.vehicles.FindByID(gctx, id)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindNotFound {
					return nil
				}
				return err
			}
			resolved[i] = vehicle
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]model.Vehicle, 0, len(ids))
	for _, v := range resolved {
		if v != nil {
			ordered = append(ordered, *v)
		}
	}
	return ordered, nil
}

func (s *Service) RegisterVehicle(ctx context.Context, req model.RegisterVehicleRequest) (*model.Vehicle, error) {
	return s.vehicles.Create(ctx, model.Vehicle{Company: req.Company, Model: req.Model})
}

func (s *Service) EditVehicle(ctx context.Context, req model.EditVehicleRequest) (*model.Vehicle, error) {
	oid, err := parseID(req.ID, "vehicle")
	if err != nil {
		return nil, err
	}
	return s.vehicles.Update(ctx, oid, req.Company, req.Model)
}

func (s *Service) GetVehicle(ctx context.Context, vehicleID string) (*model.Vehicle, error) {
	oid, err := parseID(vehicleID, "vehicle")
	if err != nil {
		return nil, err
	}
	return s.vehicles.FindByID(ctx, oid)
}

func (s *Service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	oid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, oid)
}

func (s *Service) HasVehicle(ctx context.Context, userID, vehicleID string) (bool, error) {
	uid, err := parseID(userID, "user")
	if err != nil {
		return false, err
	}
	vid, err := parseID(vehicleID, "vehicle")
	if err != nil {
		return false, err
	}
	return s.users.HasVehicle(ctx, uid, vid)
}

func parseID(raw, kind string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.KindParse, fmt.Sprintf("%s id is not a valid identifier", kind), err)
	}
	return oid, nil
}
