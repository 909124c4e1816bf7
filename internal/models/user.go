package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserType string

const (
	UserTypeRider  UserType = "rider"
	UserTypeDriver UserType = "driver"
	UserTypeAdmin  UserType = "admin"
)

// User carries the contact surface the engine needs for notification
// fan-out. Account management itself is an external concern.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName    string             `json:"first_name" bson:"first_name"`
	LastName     string             `json:"last_name" bson:"last_name"`
	Email        string             `json:"email" bson:"email" validate:"omitempty,email"`
	Phone        string             `json:"phone" bson:"phone"`
	UserType     UserType           `json:"user_type" bson:"user_type" default:"rider"`
	DeviceTokens []string           `json:"device_tokens" bson:"device_tokens"`
	IsActive     bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
