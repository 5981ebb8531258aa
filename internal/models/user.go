package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	Username   string `bson:"username" json:"username"`
	Email      string `bson:"email" json:"email"`
	FullName   string `bson:"fullName" json:"fullName"`
	Avatar     string `bson:"avatar" json:"avatar"`
	CoverImage string `bson:"coverImage" json:"coverImage"`

	Password     string `bson:"password" json:"-"`
	RefreshToken string `bson:"refreshToken,omitempty" json:"-"`
}

// SanitizedUser is the only user shape written to clients: no password, no refresh token.
type SanitizedUser struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Sanitize strips credential fields from u.
func (u *User) Sanitize() SanitizedUser {
	return SanitizedUser{
		ID:         u.ID.Hex(),
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
