package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/auth"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	repos *repositories.Repositories
}

func NewAuthService(repos *repositories.Repositories) *AuthService {
	return &AuthService{repos: repos}
}

// Login checks the credentials and issues a token. Disabled accounts and
// accounts of disabled restaurants are refused.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	const op = "services.AuthService.Login"
	invalid := &apperr.Error{Code: apperr.EUnauthorized, Op: op, Msg: "Invalid credentials"}

	u, err := s.repos.Users.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(in.Email))})
	if apperr.Is(err, apperr.ENotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return nil, invalid
	}
	if !u.Active {
		return nil, apperr.Forbidden(op, "This account has been deactivated.")
	}
	if u.RestaurantID != nil {
		r, err := s.repos.Restaurants.FindOne(ctx, bson.M{"_id": *u.RestaurantID})
		if err != nil && !apperr.Is(err, apperr.ENotFound) {
			return nil, err
		}
		if r == nil || !r.Active {
			return nil, apperr.Forbidden(op, "This restaurant has been deactivated.")
		}
	}

	token, err := auth.GenerateToken(u.ID.Hex(), u.Role, u.HomeRestaurant())
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return &LoginResult{Token: token, User: u}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperr.NotFound("services.AuthService.Me", "User")
	}
	return s.repos.Users.FindOne(ctx, bson.M{"_id": id})
}
