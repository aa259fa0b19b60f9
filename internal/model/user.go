package model

import "time"

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a registered account
type User struct {
	ID           int64     `json:"id" db:"id"`
	ClientID     string    `json:"clientId" db:"client_id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateUserRequest struct {
	ClientID string `json:"clientId" binding:"required,min=6,max=15"`
	Password string `json:"password" binding:"required,min=8,max=16"`
	Nickname string `json:"nickname" binding:"required,notblank,min=1,max=30"`
}

type UpdateUserRequest struct {
	Nickname *string `json:"nickname" binding:"omitempty,notblank,min=1,max=30"`
	Password *string `json:"password" binding:"omitempty,min=8,max=16"`
}

type LoginRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}
