package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
)

const usersCollection = "users"

// Users is the repository backing signup/login/pair's user→vehicles
// relation, per spec.md §3/§6.
type Users struct {
	client *Client
}

func NewUsers(client *Client) *Users {
	return &Users{client: client}
}

func (r *Users) Create(ctx context.Context, user model.User) (*model.User, error) {
	user.ID = primitive.NewObjectID()
	if user.Vehicles == nil {
		user.Vehicles = []primitive.ObjectID{}
	}
	_, err := r.client.execute(func() (interface{}, error) {
		return r.client.Collection(usersCollection).InsertOne(ctx, user)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "insert user", err)
	}
	return &user, nil
}

func (r *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		var user model.User
		err := r.client.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
		return &user, err
	})
	return decodeOne[model.User](res, err, "There is no user with the specified ID.")
}

func (r *Users) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		var user model.User
		err := r.client.Collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&user)
		return &user, err
	})
	return decodeOne[model.User](res, err, "There is no user with the specified username.")
}

// ExistsByUsernameOrEmail reports whether a user with either value
// already exists, for the signup conflict check.
func (r *Users) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		count, err := r.client.Collection(usersCollection).CountDocuments(ctx, bson.M{
			"$or": bson.A{bson.M{"username": username}, bson.M{"email": email}},
		})
		return count, err
	})
	if err != nil {
		return false, apperr.Wrap(apperr.KindStorage, "check existing username/email", err)
	}
	return res.(int64) > 0, nil
}

// CountByVehicle counts users whose vehicles list already contains
// vehicleID, the authorization check spec.md §4.4 step 3 needs.
func (r *Users) CountByVehicle(ctx context.Context, vehicleID primitive.ObjectID) (int64, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		count, err := r.client.Collection(usersCollection).CountDocuments(ctx, bson.M{"vehicles": vehicleID})
		return count, err
	})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindStorage, "count users by vehicle", err)
	}
	return res.(int64), nil
}

// HasVehicle reports whether userID's vehicles list already contains
// vehicleID, the join-user authorization check spec.md §6 needs.
func (r *Users) HasVehicle(ctx context.Context, userID, vehicleID primitive.ObjectID) (bool, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		count, err := r.client.Collection(usersCollection).CountDocuments(ctx, bson.M{"_id": userID, "vehicles": vehicleID})
		return count, err
	})
	if err != nil {
		return false, apperr.Wrap(apperr.KindStorage, "check user vehicle access", err)
	}
	return res.(int64) > 0, nil
}

// PrependVehicle inserts vehicleID at position 0 of userID's vehicles
// list, preserving previous entries in order, per spec.md §4.4 step 4.
func (r *Users) PrependVehicle(ctx context.Context, userID, vehicleID primitive.ObjectID) error {
	_, err := r.client.execute(func() (interface{}, error) {
		return r.client.Collection(usersCollection).UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$pull": bson.M{"vehicles": vehicleID}},
		)
	})
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "pull vehicle before prepend", err)
	}
	_, err = r.client.execute(func() (interface{}, error) {
		return r.client.Collection(usersCollection).UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$push": bson.M{"vehicles": bson.M{"$each": bson.A{vehicleID}, "$position": 0}}},
		)
	})
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "prepend vehicle", err)
	}
	return nil
}

// decodeOne turns the (interface{}, error) pair execute returns for a
// single-document FindOne into a typed pointer, mapping
// mongo.ErrNoDocuments to a NotFound apperr with notFoundMsg.
func decodeOne[T any](res interface{}, err error, notFoundMsg string) (*T, error) {
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindNotFound, notFoundMsg)
		}
		return nil, apperr.Wrap(apperr.KindStorage, "document lookup", err)
	}
	return res.(*T), nil
}
