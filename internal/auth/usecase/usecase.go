package usecase

import (
	authdomain "subwatch-backend/internal/auth/domain"
	authdto "subwatch-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for authentication business logic
type AuthUsecase interface {
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	GetUser(userID string) (*authdomain.User, error)
	ValidateToken(token string) (*authdomain.User, error)

	// SaveGroqKey encrypts and stores the user's Groq API key
	SaveGroqKey(userID, apiKey string) error
	// DeleteGroqKey removes the stored key
	DeleteGroqKey(userID string) error
}
