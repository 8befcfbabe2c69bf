package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a document in the MongoDB users collection. The password hash is
// never serialized to JSON.
type User struct {
	ID         primitive.ObjectID `json:"_id"        bson:"_id,omitempty"`
	Email      string             `json:"email"      bson:"email"`
	FullName   string             `json:"fullName"   bson:"fullName"`
	Password   string             `json:"-"          bson:"password,omitempty"`
	ProfilePic string             `json:"profilePic" bson:"profilePic"`
	CreatedAt  time.Time          `json:"createdAt"  bson:"created_at"`
}

// SignupRequest is the JSON body for POST /api/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login. Identifier matches
// either the email or the full name.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// UpdateProfileRequest is the JSON body for PUT /api/auth/update-profile.
// ProfilePic carries inline base64 image data, not a URL.
type UpdateProfileRequest struct {
	ProfilePic *string `json:"profilePic"`
	FullName   *string `json:"fullName"`
	Email      *string `json:"email"`
}

// UpdateFields names the mutable user attributes. A nil field is left
// untouched. ProfilePic here is the durable URL after upload.
type UpdateFields struct {
	ProfilePic *string
	FullName   *string
	Email      *string
}

// Empty reports whether no field is set.
func (f UpdateFields) Empty() bool {
	return f.ProfilePic == nil && f.FullName == nil && f.Email == nil
}
