package model

import "time"

// Role distinguishes ordinary test-takers from the reviewer/proctor role.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleReviewer    Role = "reviewer"
)

// Participant is an authenticated principal: either a test-taker or a reviewer.
type Participant struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for participant/reviewer login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4,max=72"`
}
