package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
)

const vehiclesCollection = "vehicles"

// Vehicles is the repository backing register/edit/refresh, per
// spec.md §3/§6.
type Vehicles struct {
	client *Client
}

func NewVehicles(client *Client) *Vehicles {
	return &Vehicles{client: client}
}

func (r *Vehicles) Create(ctx context.Context, vehicle model.Vehicle) (*model.Vehicle, error) {
	vehicle.ID = primitive.NewObjectID()
	_, err := r.client.execute(func() (interface{}, error) {
		return r.client.Collection(vehiclesCollection).InsertOne(ctx, vehicle)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "insert vehicle", err)
	}
	return &vehicle, nil
}

func (r *Vehicles) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Vehicle, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		var vehicle model.Vehicle
		err := r.client.Collection(vehiclesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
		return &vehicle, err
	})
	return decodeOne[model.Vehicle](res, err, "There is no vehicle with the specified ID. Consider registering it first.")
}

// Update applies whichever of company/model is non-nil via $set,
// leaving the rest unchanged, per spec.md's recovered /vehicle/edit
// route (SPEC_FULL.md Supplemented Features).
func (r *Vehicles) Update(ctx context.Context, id primitive.ObjectID, company, modelName *string) (*model.Vehicle, error) {
	set := bson.M{}
	if company != nil {
		set["company"] = *company
	}
	if modelName != nil {
		set["model"] = *modelName
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	_, err := r.client.execute(func() (interface{}, error) {
		return r.client.Collection(vehiclesCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "update vehicle", err)
	}
	return r.FindByID(ctx, id)
}
