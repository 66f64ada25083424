package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Vehicle is the document shape backing registration, grounded on
// types/src/lib.rs's Vehicle struct.
type Vehicle struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Company string             `bson:"company" json:"company"`
	Model   string             `bson:"model" json:"model"`
}

// RegisterVehicleRequest is the payload for POST /vehicle/register.
type RegisterVehicleRequest struct {
	Company string `json:"company"`
	Model   string `json:"model"`
}

// EditVehicleRequest is the payload for POST /vehicle/edit. Either
// field may be omitted, in which case the existing value is kept.
type EditVehicleRequest struct {
	ID      string  `json:"id"`
	Company *string `json:"company,omitempty"`
	Model   *string `json:"model,omitempty"`
}
