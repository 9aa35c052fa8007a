package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

type UnitInput struct {
	Name         string `json:"name" validate:"required,max=50"`
	Abbreviation string `json:"abbreviation" validate:"required,max=10"`
	IsDefault    bool   `json:"isDefault"`
}

type UnitService struct {
	repos *repositories.Repositories
}

func NewUnitService(repos *repositories.Repositories) *UnitService {
	return &UnitService{repos: repos}
}

func (s *UnitService) List(ctx context.Context, d tenant.Decision) ([]models.Unit, error) {
	filter, ok := readFilter(d)
	if !ok {
		return []models.Unit{}, nil
	}
	return s.repos.Units.Find(ctx, filter, docstore.SortBy("name"))
}

func (s *UnitService) Get(ctx context.Context, d tenant.Decision, id string) (*models.Unit, error) {
	filter, err := byID(d, "services.UnitService.Get", id, "Unit")
	if err != nil {
		return nil, err
	}
	return s.repos.Units.FindOne(ctx, filter)
}

func (s *UnitService) Create(ctx context.Context, d tenant.Decision, in UnitInput) (*models.Unit, error) {
	rid, err := requireRestaurant(d, "services.UnitService.Create")
	if err != nil {
		return nil, err
	}

	ts := now()
	unit := &models.Unit{RestaurantID: rid, Name: in.Name, Abbreviation: in.Abbreviation, CreatedAt: ts, UpdatedAt: ts}
	if err := s.repos.Units.Insert(ctx, unit); err != nil {
		return nil, err
	}
	if in.IsDefault {
		if err := s.makeDefault(ctx, unit); err != nil {
			return nil, err
		}
	}
	return unit, nil
}

func (s *UnitService) Update(ctx context.Context, d tenant.Decision, id string, in UnitInput) (*models.Unit, error) {
	filter, err := byID(d, "services.UnitService.Update", id, "Unit")
	if err != nil {
		return nil, err
	}
	unit, err := s.repos.Units.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}

	unit.Name, unit.Abbreviation, unit.UpdatedAt = in.Name, in.Abbreviation, now()
	if err := s.repos.Units.Replace(ctx, bson.M{"_id": unit.ID, "restaurantId": unit.RestaurantID}, unit); err != nil {
		return nil, err
	}
	if in.IsDefault && !unit.IsDefault {
		if err := s.makeDefault(ctx, unit); err != nil {
			return nil, err
		}
	}
	return unit, nil
}

// SetDefault marks the unit as its restaurant's default. Repeating the call
// leaves the same single default.
func (s *UnitService) SetDefault(ctx context.Context, d tenant.Decision, id string) (*models.Unit, error) {
	filter, err := byID(d, "services.UnitService.SetDefault", id, "Unit")
	if err != nil {
		return nil, err
	}
	unit, err := s.repos.Units.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.makeDefault(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *UnitService) Delete(ctx context.Context, d tenant.Decision, id string) error {
	filter, err := byID(d, "services.UnitService.Delete", id, "Unit")
	if err != nil {
		return err
	}
	return s.repos.Units.Delete(ctx, filter)
}

// makeDefault clears the flag on every other unit of the restaurant before
// setting it on unit.
func (s *UnitService) makeDefault(ctx context.Context, unit *models.Unit) error {
	ts := now()
	others := bson.M{"restaurantId": unit.RestaurantID, "_id": bson.M{"$ne": unit.ID}, "isDefault": true}
	if _, err := s.repos.Units.UpdateMany(ctx, others, bson.M{"isDefault": false, "updatedAt": ts}); err != nil {
		return err
	}
	if _, err := s.repos.Units.UpdateMany(ctx, bson.M{"_id": unit.ID}, bson.M{"isDefault": true, "updatedAt": ts}); err != nil {
		return err
	}
	unit.IsDefault = true
	unit.UpdatedAt = ts
	return nil
}
