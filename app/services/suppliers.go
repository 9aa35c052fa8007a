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

type SupplierInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

type SupplierService struct {
	repos *repositories.Repositories
}

func NewSupplierService(repos *repositories.Repositories) *SupplierService {
	return &SupplierService{repos: repos}
}

func (s *SupplierService) List(ctx context.Context, d tenant.Decision) ([]models.Supplier, error) {
	filter, ok := readFilter(d)
	if !ok {
		return []models.Supplier{}, nil
	}
	return s.repos.Suppliers.Find(ctx, filter, docstore.SortBy("name"))
}

func (s *SupplierService) Get(ctx context.Context, d tenant.Decision, id string) (*models.Supplier, error) {
	filter, err := byID(d, "services.SupplierService.Get", id, "Supplier")
	if err != nil {
		return nil, err
	}
	return s.repos.Suppliers.FindOne(ctx, filter)
}

func (s *SupplierService) Create(ctx context.Context, d tenant.Decision, in SupplierInput) (*models.Supplier, error) {
	rid, err := requireRestaurant(d, "services.SupplierService.Create")
	if err != nil {
		return nil, err
	}

	ts := now()
	sup := &models.Supplier{
		RestaurantID: rid,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := s.repos.Suppliers.Insert(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *SupplierService) Update(ctx context.Context, d tenant.Decision, id string, in SupplierInput) (*models.Supplier, error) {
	filter, err := byID(d, "services.SupplierService.Update", id, "Supplier")
	if err != nil {
		return nil, err
	}
	sup, err := s.repos.Suppliers.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}

	sup.Name, sup.Email, sup.Phone, sup.Address = in.Name, in.Email, in.Phone, in.Address
	sup.UpdatedAt = now()
	if err := s.repos.Suppliers.Replace(ctx, bson.M{"_id": sup.ID, "restaurantId": sup.RestaurantID}, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

// Delete removes a supplier that no item references.
func (s *SupplierService) Delete(ctx context.Context, d tenant.Decision, id string) error {
	const op = "services.SupplierService.Delete"

	filter, err := byID(d, op, id, "Supplier")
	if err != nil {
		return err
	}
	sup, err := s.repos.Suppliers.FindOne(ctx, filter)
	if err != nil {
		return err
	}

	n, err := s.repos.Items.Count(ctx, bson.M{"restaurantId": sup.RestaurantID, "supplierId": sup.ID})
	if err != nil {
		return err
	}
	if n > 0 {
		return &apperr.Error{
			Code:    apperr.EInvalid,
			Op:      op,
			Msg:     fmt.Sprintf("Cannot delete supplier: %d item(s) are supplied by it", n),
			Details: map[string]any{"blockingItems": n},
		}
	}
	return s.repos.Suppliers.Delete(ctx, bson.M{"_id": sup.ID, "restaurantId": sup.RestaurantID})
}
