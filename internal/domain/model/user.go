package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the document shape backing signup/login/pair, grounded on
// types/src/lib.rs's User struct. Credentials are stored and compared
// as opaque strings; hashing discipline is an external collaborator
// per spec.md §1.
type User struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"uid"`
	Name     string               `bson:"name" json:"name"`
	Username string               `bson:"username" json:"username"`
	Password string               `bson:"password" json:"-"`
	Email    string               `bson:"email" json:"email"`
	Vehicles []primitive.ObjectID `bson:"vehicles" json:"vehicles"`
}

// SignupRequest is the account-management payload for POST /signup,
// parsed by the HTTP layer (out of scope per spec.md §1) and handed to
// the account service as a typed value.
type SignupRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HasVehicle reports whether the given vehicle ID is already present
// in this user's vehicles list.
func (u User) HasVehicle(vehicleID primitive.ObjectID) bool {
	for _, v := range u.Vehicles {
		if v == vehicleID {
			return true
		}
	}
	return false
}
