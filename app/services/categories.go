package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

type CategoryService struct {
	repos *repositories.Repositories
}

func NewCategoryService(repos *repositories.Repositories) *CategoryService {
	return &CategoryService{repos: repos}
}

func (s *CategoryService) List(ctx context.Context, d tenant.Decision) ([]models.Category, error) {
	filter, ok := readFilter(d)
	if !ok {
		return []models.Category{}, nil
	}
	return s.repos.Categories.Find(ctx, filter, docstore.SortBy("name"))
}

func (s *CategoryService) Get(ctx context.Context, d tenant.Decision, id string) (*models.Category, error) {
	filter, err := byID(d, "services.CategoryService.Get", id, "Category")
	if err != nil {
		return nil, err
	}
	return s.repos.Categories.FindOne(ctx, filter)
}

func (s *CategoryService) Create(ctx context.Context, d tenant.Decision, in CategoryInput) (*models.Category, error) {
	rid, err := requireRestaurant(d, "services.CategoryService.Create")
	if err != nil {
		return nil, err
	}

	ts := now()
	cat := &models.Category{RestaurantID: rid, Name: in.Name, Description: in.Description, CreatedAt: ts, UpdatedAt: ts}
	if err := s.repos.Categories.Insert(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CategoryService) Update(ctx context.Context, d tenant.Decision, id string, in CategoryInput) (*models.Category, error) {
	filter, err := byID(d, "services.CategoryService.Update", id, "Category")
	if err != nil {
		return nil, err
	}
	cat, err := s.repos.Categories.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}

	cat.Name, cat.Description, cat.UpdatedAt = in.Name, in.Description, now()
	if err := s.repos.Categories.Replace(ctx, bson.M{"_id": cat.ID, "restaurantId": cat.RestaurantID}, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Delete removes a category. A category still referenced by items is kept and
// the error carries the number of blocking items.
func (s *CategoryService) Delete(ctx context.Context, d tenant.Decision, id string) error {
	const op = "services.CategoryService.Delete"

	filter, err := byID(d, op, id, "Category")
	if err != nil {
		return err
	}
	cat, err := s.repos.Categories.FindOne(ctx, filter)
	if err != nil {
		return err
	}

	n, err := s.repos.Items.Count(ctx, bson.M{"restaurantId": cat.RestaurantID, "categoryId": cat.ID})
	if err != nil {
		return err
	}
	if n > 0 {
		return &apperr.Error{
			Code:    apperr.EInvalid,
			Op:      op,
			Msg:     fmt.Sprintf("Cannot delete category: %d item(s) are using it", n),
			Details: map[string]any{"blockingItems": n},
		}
	}
	return s.repos.Categories.Delete(ctx, bson.M{"_id": cat.ID, "restaurantId": cat.RestaurantID})
}
