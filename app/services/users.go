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
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

type CreateUserInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,in=kitchen|admin|superadmin"`
}

type UpdateUserInput struct {
	Name     *string `json:"name" validate:"nullable,min=1,max=120"`
	Email    *string `json:"email" validate:"nullable,email"`
	Password *string `json:"password" validate:"nullable,min=8,max=72"`
	Role     *string `json:"role" validate:"nullable,in=kitchen|admin|superadmin"`
}

// Actor is the authenticated caller performing a user operation.
type Actor struct {
	ID   string
	Role tenant.Role
}

type UserService struct {
	repos *repositories.Repositories
}

func NewUserService(repos *repositories.Repositories) *UserService {
	return &UserService{repos: repos}
}

func (s *UserService) List(ctx context.Context, d tenant.Decision) ([]models.User, error) {
	filter, ok := readFilter(d)
	if !ok {
		return []models.User{}, nil
	}
	return s.repos.Users.Find(ctx, filter, docstore.SortBy("name"))
}

func (s *UserService) Get(ctx context.Context, d tenant.Decision, id string) (*models.User, error) {
	filter, err := byID(d, "services.UserService.Get", id, "User")
	if err != nil {
		return nil, err
	}
	return s.repos.Users.FindOne(ctx, filter)
}

// Create adds a user to the scoped restaurant. Only a superadmin may create
// another superadmin, which needs no restaurant.
func (s *UserService) Create(ctx context.Context, d tenant.Decision, actor Actor, in CreateUserInput) (*models.User, error) {
	const op = "services.UserService.Create"

	role, _ := tenant.ParseRole(in.Role)
	if role == tenant.Superadmin && !actor.Role.Elevated() {
		return nil, apperr.Forbidden(op, "Only a superadmin may create superadmin accounts.")
	}

	u := &models.User{Name: in.Name, Role: role.String(), Active: true}
	if role != tenant.Superadmin || d.Resolved() {
		rid, err := requireRestaurant(d, op)
		if err != nil {
			return nil, err
		}
		u.RestaurantID = &rid
	}

	email, err := s.uniqueEmail(ctx, op, in.Email, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	u.Email = email

	if u.Password, err = auth.HashPassword(in.Password); err != nil {
		return nil, apperr.Internal(op, err)
	}
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	if err := s.repos.Users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, d tenant.Decision, actor Actor, id string, in UpdateUserInput) (*models.User, error) {
	const op = "services.UserService.Update"

	u, err := s.Get(ctx, d, id)
	if err != nil {
		return nil, err
	}
	if err := canManage(op, actor, u); err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		if u.Email, err = s.uniqueEmail(ctx, op, *in.Email, u.ID); err != nil {
			return nil, err
		}
	}
	if in.Password != nil {
		if u.Password, err = auth.HashPassword(*in.Password); err != nil {
			return nil, apperr.Internal(op, err)
		}
	}
	if in.Role != nil && *in.Role != u.Role {
		role, _ := tenant.ParseRole(*in.Role)
		switch {
		case u.ID.Hex() == actor.ID:
			return nil, apperr.Forbidden(op, "You cannot change your own role.")
		case role == tenant.Superadmin && !actor.Role.Elevated():
			return nil, apperr.Forbidden(op, "Only a superadmin may grant the superadmin role.")
		}
		u.Role = role.String()
	}

	u.UpdatedAt = now()
	if err := s.repos.Users.Replace(ctx, bson.M{"_id": u.ID}, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetActive enables or disables an account. Callers cannot deactivate
// themselves.
func (s *UserService) SetActive(ctx context.Context, d tenant.Decision, actor Actor, id string, active bool) (*models.User, error) {
	const op = "services.UserService.SetActive"

	u, err := s.Get(ctx, d, id)
	if err != nil {
		return nil, err
	}
	if err := canManage(op, actor, u); err != nil {
		return nil, err
	}
	if !active && u.ID.Hex() == actor.ID {
		return nil, apperr.Forbidden(op, "You cannot deactivate your own account.")
	}

	u.Active, u.UpdatedAt = active, now()
	if _, err := s.repos.Users.UpdateMany(ctx, bson.M{"_id": u.ID}, bson.M{"active": active, "updatedAt": u.UpdatedAt}); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, d tenant.Decision, actor Actor, id string) error {
	const op = "services.UserService.Delete"

	u, err := s.Get(ctx, d, id)
	if err != nil {
		return err
	}
	if err := canManage(op, actor, u); err != nil {
		return err
	}
	if u.ID.Hex() == actor.ID {
		return apperr.Forbidden(op, "You cannot delete your own account.")
	}
	return s.repos.Users.Delete(ctx, bson.M{"_id": u.ID})
}

// canManage stops admins from touching superadmin accounts.
func canManage(op string, actor Actor, target *models.User) error {
	if target.Role == tenant.Superadmin.String() && !actor.Role.Elevated() {
		return apperr.Forbidden(op, "Only a superadmin may manage superadmin accounts.")
	}
	return nil
}

func (s *UserService) uniqueEmail(ctx context.Context, op, raw string, self primitive.ObjectID) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	existing, err := s.repos.Users.FindOne(ctx, bson.M{"email": email})
	switch {
	case err == nil && existing.ID != self:
		e := apperr.Invalid(op, "A user with this email already exists.")
		e.Details = map[string]any{"email": "The email has already been taken."}
		return "", e
	case err != nil && !apperr.Is(err, apperr.ENotFound):
		return "", err
	}
	return email, nil
}
