package services

import (
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/metrics"
	"github.com/shashiranjanraj/pantry/pkg/notification"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

const maxQuantity = 100000

// OrderLineInput is one requested line. Quantity is decoded as a number so a
// fractional value is reported per line instead of failing the whole body.
type OrderLineInput struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type OrderInput struct {
	Items         []OrderLineInput  `json:"items" validate:"required,max=500"`
	SupplierNotes map[string]string `json:"supplierNotes"`
}

type StatusInput struct {
	Status string `json:"status" validate:"required,max=40"`
}

// SubmitResult is the persisted order plus the outcome of every supplier
// notification.
type SubmitResult struct {
	Order         *models.Order       `json:"order"`
	Notifications notification.Report `json:"notifications"`
}

type OrderService struct {
	repos    *repositories.Repositories
	notifier *notification.Notifier
}

func NewOrderService(repos *repositories.Repositories, notifier *notification.Notifier) *OrderService {
	return &OrderService{repos: repos, notifier: notifier}
}

// List returns orders newest first. limit <= 0 returns all.
func (s *OrderService) List(ctx context.Context, d tenant.Decision, limit int) ([]models.Order, error) {
	filter, ok := readFilter(d)
	if !ok {
		return []models.Order{}, nil
	}
	return s.repos.Orders.Find(ctx, filter, docstore.Newest("createdAt", int64(limit)))
}

func (s *OrderService) Get(ctx context.Context, d tenant.Decision, id string) (*models.Order, error) {
	filter, err := byID(d, "services.OrderService.Get", id, "Order")
	if err != nil {
		return nil, err
	}
	return s.repos.Orders.FindOne(ctx, filter)
}

// UpdateStatus is the only change an order accepts after creation.
func (s *OrderService) UpdateStatus(ctx context.Context, d tenant.Decision, id, status string) (*models.Order, error) {
	filter, err := byID(d, "services.OrderService.UpdateStatus", id, "Order")
	if err != nil {
		return nil, err
	}
	order, err := s.repos.Orders.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	order.Status, order.UpdatedAt = status, now()
	if _, err := s.repos.Orders.UpdateMany(ctx, bson.M{"_id": order.ID}, bson.M{"status": order.Status, "updatedAt": order.UpdatedAt}); err != nil {
		return nil, err
	}
	return order, nil
}

// Submit persists the order and then notifies each supplier once. The order
// stays persisted whatever happens to the notifications; failures are
// reported per supplier in the result.
func (s *OrderService) Submit(ctx context.Context, d tenant.Decision, userID string, in OrderInput) (*SubmitResult, error) {
	const op = "services.OrderService.Submit"

	rid, err := requireRestaurant(d, op)
	if err != nil {
		return nil, err
	}
	lines, err := parseLines(op, in.Items)
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx, op, rid, lines)
	if err != nil {
		return nil, err
	}

	ts := now()
	order := &models.Order{
		RestaurantID:  rid,
		Items:         lines,
		Status:        models.OrderPending,
		SupplierNotes: in.SupplierNotes,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if uid, err := primitive.ObjectIDFromHex(userID); err == nil {
		order.CreatedBy = &uid
	}
	if err := s.repos.Orders.Insert(ctx, order); err != nil {
		return nil, err
	}
	metrics.OrdersSubmitted.Inc()

	report, err := s.notify(ctx, order, items)
	if err != nil {
		logger.WithCtx(ctx).Warn("order saved with notification failures",
			"order_id", order.ID.Hex(),
			"failed", len(report.Failed),
			"sent", len(report.Sent),
		)
	}
	return &SubmitResult{Order: order, Notifications: report}, nil
}

func parseLines(op string, in []OrderLineInput) ([]models.OrderLine, error) {
	if len(in) == 0 {
		return nil, apperr.Invalid(op, "An order needs at least one item.")
	}
	out := make([]models.OrderLine, 0, len(in))
	errs := map[string]any{}
	for i, l := range in {
		id, err := primitive.ObjectIDFromHex(l.ItemID)
		if err != nil {
			errs[fmt.Sprintf("items.%d.itemId", i)] = "The itemId must be a valid id."
			continue
		}
		if msg := checkQuantity(l.Quantity); msg != "" {
			errs[fmt.Sprintf("items.%d.quantity", i)] = msg
			continue
		}
		out = append(out, models.OrderLine{ItemID: id, Quantity: int(l.Quantity), Unit: l.Unit})
	}
	if len(errs) > 0 {
		return nil, &apperr.Error{Code: apperr.EInvalid, Op: op, Msg: "Validation failed", Details: errs}
	}
	return out, nil
}

// checkQuantity accepts positive whole numbers up to maxQuantity.
func checkQuantity(q float64) string {
	switch {
	case q <= 0:
		return "The quantity must be greater than 0."
	case q != math.Trunc(q):
		return "The quantity must be a whole number."
	case q > maxQuantity:
		return fmt.Sprintf("The quantity may not be greater than %d.", maxQuantity)
	}
	return ""
}

// loadItems resolves every line's item inside the restaurant. Unknown or
// foreign items reject the order before anything is written.
func (s *OrderService) loadItems(ctx context.Context, op string, rid primitive.ObjectID, lines []models.OrderLine) (map[primitive.ObjectID]models.Item, error) {
	ids := make([]primitive.ObjectID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	found, err := s.repos.Items.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "restaurantId": rid}, docstore.Query{})
	if err != nil {
		return nil, err
	}

	items := make(map[primitive.ObjectID]models.Item, len(found))
	for _, it := range found {
		items[it.ID] = it
	}
	for _, l := range lines {
		if _, ok := items[l.ItemID]; !ok {
			return nil, apperr.Invalid(op, "Item %s was not found in this restaurant.", l.ItemID.Hex())
		}
	}
	return items, nil
}

func (s *OrderService) notify(ctx context.Context, order *models.Order, items map[primitive.ObjectID]models.Item) (notification.Report, error) {
	supplierIDs := make([]primitive.ObjectID, 0)
	seen := map[primitive.ObjectID]bool{}
	for _, l := range order.Items {
		sid := items[l.ItemID].SupplierID
		if !seen[sid] {
			seen[sid] = true
			supplierIDs = append(supplierIDs, sid)
		}
	}

	suppliers := map[primitive.ObjectID]models.Supplier{}
	found, err := s.repos.Suppliers.Find(ctx, bson.M{"_id": bson.M{"$in": supplierIDs}, "restaurantId": order.RestaurantID}, docstore.Query{})
	if err != nil {
		logger.WithCtx(ctx).Error("supplier lookup failed", "order_id", order.ID.Hex(), "error", err)
	}
	for _, sup := range found {
		suppliers[sup.ID] = sup
	}

	entries := make([]notification.Entry, 0, len(order.Items))
	for _, l := range order.Items {
		item := items[l.ItemID]
		unit := l.Unit
		if unit == "" {
			unit = item.Unit
		}
		e := notification.Entry{
			SupplierID: item.SupplierID.Hex(),
			Line:       notification.Line{ItemName: item.Name, Quantity: l.Quantity, Unit: unit},
		}
		if sup, ok := suppliers[item.SupplierID]; ok {
			e.SupplierName, e.Email = sup.Name, sup.Email
		} else {
			e.Err = apperr.NotFound("services.OrderService.notify", "Supplier")
		}
		entries = append(entries, e)
	}

	env := notification.Envelope{
		RestaurantID: order.RestaurantID.Hex(),
		OrderID:      order.ID.Hex(),
		CreatedAt:    order.CreatedAt,
	}
	if r, err := s.repos.Restaurants.FindOne(ctx, bson.M{"_id": order.RestaurantID}); err == nil {
		env.RestaurantName = r.Name
		env.Sender = r.EmailConfig.SMTP()
	}

	return s.notifier.Dispatch(ctx, env, notification.Group(entries, order.SupplierNotes))
}
