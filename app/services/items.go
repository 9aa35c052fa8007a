package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

type ItemInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Unit        string `json:"unit" validate:"required,max=50"`
	SupplierID  string `json:"supplierId" validate:"required,objectid"`
	CategoryID  string `json:"categoryId" validate:"nullable,objectid"`
	Active      *bool  `json:"active"`
	// ActiveDays defaults to every weekday when omitted. An explicit empty
	// list is rejected.
	ActiveDays []string `json:"activeDays"`
}

// ItemFilter narrows List. Zero values mean no filter.
type ItemFilter struct {
	Day        string
	Active     *bool
	SupplierID string
	CategoryID string
}

type ItemService struct {
	repos *repositories.Repositories
}

func NewItemService(repos *repositories.Repositories) *ItemService {
	return &ItemService{repos: repos}
}

func (s *ItemService) List(ctx context.Context, d tenant.Decision, f ItemFilter) ([]models.Item, error) {
	const op = "services.ItemService.List"

	filter, ok := readFilter(d)
	if !ok {
		return []models.Item{}, nil
	}
	if f.Day != "" {
		day, ok := models.ParseWeekday(f.Day)
		if !ok {
			return nil, apperr.Invalid(op, "day %q is not a weekday", f.Day)
		}
		filter["activeDays"] = day
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}
	for field, raw := range map[string]string{"supplierId": f.SupplierID, "categoryId": f.CategoryID} {
		id, err := optionalID(op, field, raw)
		if err != nil {
			return nil, err
		}
		if id != nil {
			filter[field] = *id
		}
	}
	return s.repos.Items.Find(ctx, filter, docstore.SortBy("name"))
}

func (s *ItemService) Get(ctx context.Context, d tenant.Decision, id string) (*models.Item, error) {
	filter, err := byID(d, "services.ItemService.Get", id, "Item")
	if err != nil {
		return nil, err
	}
	return s.repos.Items.FindOne(ctx, filter)
}

func (s *ItemService) Create(ctx context.Context, d tenant.Decision, in ItemInput) (*models.Item, error) {
	const op = "services.ItemService.Create"

	rid, err := requireRestaurant(d, op)
	if err != nil {
		return nil, err
	}

	item := &models.Item{RestaurantID: rid, Active: true}
	if err := s.apply(ctx, op, item, in); err != nil {
		return nil, err
	}
	item.CreatedAt = item.UpdatedAt
	if err := s.repos.Items.Insert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, d tenant.Decision, id string, in ItemInput) (*models.Item, error) {
	const op = "services.ItemService.Update"

	filter, err := byID(d, op, id, "Item")
	if err != nil {
		return nil, err
	}
	item, err := s.repos.Items.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if in.ActiveDays == nil {
		in.ActiveDays = item.ActiveDays
	}
	if err := s.apply(ctx, op, item, in); err != nil {
		return nil, err
	}
	if err := s.repos.Items.Replace(ctx, bson.M{"_id": item.ID, "restaurantId": item.RestaurantID}, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, d tenant.Decision, id string) error {
	filter, err := byID(d, "services.ItemService.Delete", id, "Item")
	if err != nil {
		return err
	}
	return s.repos.Items.Delete(ctx, filter)
}

// apply copies in onto item after checking that the referenced supplier and
// category belong to the item's restaurant.
func (s *ItemService) apply(ctx context.Context, op string, item *models.Item, in ItemInput) error {
	supplierID, err := primitive.ObjectIDFromHex(in.SupplierID)
	if err != nil {
		return apperr.Invalid(op, "The supplierId must be a valid id.")
	}
	if err := s.sameRestaurant(ctx, op, s.repos.Suppliers.Count, "supplier", supplierID, item.RestaurantID); err != nil {
		return err
	}

	categoryID, err := optionalID(op, "categoryId", in.CategoryID)
	if err != nil {
		return err
	}
	if categoryID != nil {
		if err := s.sameRestaurant(ctx, op, s.repos.Categories.Count, "category", *categoryID, item.RestaurantID); err != nil {
			return err
		}
	}

	days, err := normalizeDays(op, in.ActiveDays)
	if err != nil {
		return err
	}

	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Unit = strings.TrimSpace(in.Unit)
	item.SupplierID = supplierID
	item.CategoryID = categoryID
	item.ActiveDays = days
	if in.Active != nil {
		item.Active = *in.Active
	}
	item.UpdatedAt = now()
	return nil
}

func (s *ItemService) sameRestaurant(
	ctx context.Context,
	op string,
	count func(context.Context, bson.M) (int64, error),
	entity string,
	id, restaurantID primitive.ObjectID,
) error {
	n, err := count(ctx, bson.M{"_id": id, "restaurantId": restaurantID})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Invalid(op, "The selected %s does not belong to this restaurant.", entity)
	}
	return nil
}

// normalizeDays defaults a nil list to every weekday, rejects an empty or
// unknown one, and returns the tokens in calendar order.
func normalizeDays(op string, in []string) ([]string, error) {
	if in == nil {
		return append([]string(nil), models.Weekdays...), nil
	}
	seen := make(map[string]bool, len(in))
	for _, raw := range in {
		day, ok := models.ParseWeekday(raw)
		if !ok {
			return nil, apperr.Invalid(op, "%q is not a weekday", raw)
		}
		seen[day] = true
	}
	if len(seen) == 0 {
		return nil, apperr.Invalid(op, "An item must be orderable on at least one day.")
	}
	out := make([]string, 0, len(seen))
	for _, d := range models.Weekdays {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out, nil
}
