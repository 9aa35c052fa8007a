package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/config"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/auth"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/mail"
	"github.com/shashiranjanraj/pantry/pkg/notification"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

type RestaurantInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=500"`
	Phone   string `json:"phone" validate:"max=50"`
	Email   string `json:"email" validate:"nullable,email"`
}

// EmailSettingsInput replaces a restaurant's mail account. An empty password
// keeps the stored one.
type EmailSettingsInput struct {
	FromName     string `json:"fromName" validate:"required,max=120"`
	FromAddress  string `json:"fromAddress" validate:"required,email"`
	SMTPHost     string `json:"smtpHost" validate:"max=255"`
	SMTPPort     int    `json:"smtpPort" validate:"nullable,gt=0,lte=65535"`
	SMTPUser     string `json:"smtpUser" validate:"required,max=255"`
	SMTPPassword string `json:"smtpPassword" validate:"max=255"`
	Secure       bool   `json:"secure"`
}

type TestEmailInput struct {
	To string `json:"to" validate:"required,email"`
}

// BootstrapResult is a new restaurant with its seed accounts.
type BootstrapResult struct {
	Restaurant *models.Restaurant `json:"restaurant"`
	Users      []models.User      `json:"users"`
}

var (
	seedCategories = []string{"Produce", "Dairy", "Meat & Fish", "Dry Goods", "Beverages", "Cleaning"}
	seedUnits      = []models.Unit{
		{Name: "Kilogram", Abbreviation: "kg", IsDefault: true},
		{Name: "Gram", Abbreviation: "g"},
		{Name: "Liter", Abbreviation: "l"},
		{Name: "Piece", Abbreviation: "pcs"},
		{Name: "Box", Abbreviation: "box"},
	}
	slugRE = regexp.MustCompile(`[^a-z0-9]+`)
)

// SeedEmails returns the deterministic admin and kitchen addresses for a
// restaurant name.
func SeedEmails(name string) (admin, kitchen string) {
	slug := strings.Trim(slugRE.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "restaurant"
	}
	return "admin@" + slug + ".local", "kitchen@" + slug + ".local"
}

type RestaurantService struct {
	repos    *repositories.Repositories
	notifier *notification.Notifier
}

func NewRestaurantService(repos *repositories.Repositories, notifier *notification.Notifier) *RestaurantService {
	return &RestaurantService{repos: repos, notifier: notifier}
}

func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	return s.repos.Restaurants.Find(ctx, bson.M{}, docstore.SortBy("name"))
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	filter, err := byID(tenant.Decision{Global: true}, "services.RestaurantService.Get", id, "Restaurant")
	if err != nil {
		return nil, err
	}
	return s.repos.Restaurants.FindOne(ctx, filter)
}

// Current returns the restaurant the request is scoped to.
func (s *RestaurantService) Current(ctx context.Context, d tenant.Decision) (*models.Restaurant, error) {
	id, err := d.Require("services.RestaurantService.Current")
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Bootstrap creates a restaurant, its admin and kitchen accounts (created
// concurrently), default categories and units, and a placeholder supplier.
func (s *RestaurantService) Bootstrap(ctx context.Context, in RestaurantInput) (*BootstrapResult, error) {
	const op = "services.RestaurantService.Bootstrap"

	adminEmail, kitchenEmail := SeedEmails(in.Name)
	n, err := s.repos.Users.Count(ctx, bson.M{"email": bson.M{"$in": []string{adminEmail, kitchenEmail}}})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperr.Conflict(op, fmt.Sprintf("Seed accounts for %q already exist; choose a different name.", in.Name))
	}

	hash, err := auth.HashPassword(config.SeedPassword())
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	ts := now()
	r := &models.Restaurant{
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Active:    true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.repos.Restaurants.Insert(ctx, r); err != nil {
		return nil, err
	}
	rid := r.ID

	seeds := []models.User{
		{Name: in.Name + " Admin", Email: adminEmail, Role: tenant.Admin.String()},
		{Name: in.Name + " Kitchen", Email: kitchenEmail, Role: tenant.Kitchen.String()},
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := range seeds {
		u := &seeds[i]
		u.Password, u.RestaurantID, u.Active = hash, &rid, true
		u.CreatedAt, u.UpdatedAt = ts, ts
		g.Go(func() error { return s.repos.Users.Insert(gctx, u) })
	}
	if err := g.Wait(); err != nil {
		s.discardBootstrap(ctx, r, seeds)
		return nil, err
	}

	if err := s.seedCatalog(ctx, r); err != nil {
		logger.WithCtx(ctx).Warn("restaurant catalog seeding incomplete", "restaurant_id", rid.Hex(), "error", err)
	}

	return &BootstrapResult{Restaurant: r, Users: seeds}, nil
}

// discardBootstrap removes the restaurant and whichever seed accounts were
// written before a seed insert failed. Failures are logged only.
func (s *RestaurantService) discardBootstrap(ctx context.Context, r *models.Restaurant, seeds []models.User) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithCtx(ctx)
	for _, u := range seeds {
		err := s.repos.Users.Delete(ctx, bson.M{"email": u.Email, "restaurantId": r.ID})
		if err != nil && !apperr.Is(err, apperr.ENotFound) {
			log.Warn("bootstrap cleanup: seed user not removed", "restaurant_id", r.ID.Hex(), "email", u.Email, "error", err)
		}
	}
	if err := s.repos.Restaurants.Delete(ctx, bson.M{"_id": r.ID}); err != nil {
		log.Warn("bootstrap cleanup: restaurant not removed", "restaurant_id", r.ID.Hex(), "error", err)
	}
}

func (s *RestaurantService) seedCatalog(ctx context.Context, r *models.Restaurant) error {
	ts := now()
	for _, name := range seedCategories {
		if err := s.repos.Categories.Insert(ctx, &models.Category{RestaurantID: r.ID, Name: name, CreatedAt: ts, UpdatedAt: ts}); err != nil {
			return err
		}
	}
	for _, u := range seedUnits {
		u.RestaurantID, u.CreatedAt, u.UpdatedAt = r.ID, ts, ts
		if err := s.repos.Units.Insert(ctx, &u); err != nil {
			return err
		}
	}
	return s.repos.Suppliers.Insert(ctx, &models.Supplier{
		RestaurantID: r.ID,
		Name:         "Default Supplier",
		Email:        r.Email,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	})
}

func (s *RestaurantService) Update(ctx context.Context, id string, in RestaurantInput) (*models.Restaurant, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Name, r.Address, r.Phone, r.Email, r.UpdatedAt = in.Name, in.Address, in.Phone, in.Email, now()
	if err := s.repos.Restaurants.Replace(ctx, bson.M{"_id": r.ID}, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RestaurantService) SetActive(ctx context.Context, id string, active bool) (*models.Restaurant, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Active, r.UpdatedAt = active, now()
	if _, err := s.repos.Restaurants.UpdateMany(ctx, bson.M{"_id": r.ID}, bson.M{"active": active, "updatedAt": r.UpdatedAt}); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes a restaurant that no longer has users.
func (s *RestaurantService) Delete(ctx context.Context, id string) error {
	const op = "services.RestaurantService.Delete"

	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.repos.Users.Count(ctx, bson.M{"restaurantId": r.ID})
	if err != nil {
		return err
	}
	if n > 0 {
		return &apperr.Error{
			Code:    apperr.EConflict,
			Op:      op,
			Msg:     fmt.Sprintf("Cannot delete restaurant: %d user(s) still belong to it", n),
			Details: map[string]any{"blockingUsers": n},
		}
	}
	s.notifier.Transports().Forget(r.ID.Hex())
	return s.repos.Restaurants.Delete(ctx, bson.M{"_id": r.ID})
}

// UpdateEmailSettings stores new mail settings for the scoped restaurant and
// drops its cached transport.
func (s *RestaurantService) UpdateEmailSettings(ctx context.Context, d tenant.Decision, in EmailSettingsInput) (*models.Restaurant, error) {
	r, err := s.Current(ctx, d)
	if err != nil {
		return nil, err
	}

	password := r.EmailConfig.SMTPPassword
	if in.SMTPPassword != "" {
		password = in.SMTPPassword
	}
	r.EmailConfig = models.EmailConfig{
		FromName:     in.FromName,
		FromAddress:  in.FromAddress,
		SMTPHost:     in.SMTPHost,
		SMTPPort:     in.SMTPPort,
		SMTPUser:     in.SMTPUser,
		SMTPPassword: password,
		Secure:       in.Secure,
	}
	r.UpdatedAt = now()
	if err := s.repos.Restaurants.Replace(ctx, bson.M{"_id": r.ID}, r); err != nil {
		return nil, err
	}
	s.notifier.Transports().Forget(r.ID.Hex())
	return r, nil
}

// SendTestEmail sends a short message through the scoped restaurant's
// transport.
func (s *RestaurantService) SendTestEmail(ctx context.Context, d tenant.Decision, to string) error {
	const op = "services.RestaurantService.SendTestEmail"

	r, err := s.Current(ctx, d)
	if err != nil {
		return err
	}
	t, err := s.notifier.Transports().Get(r.ID.Hex(), r.EmailConfig.SMTP())
	if err != nil {
		return err
	}
	msg := mail.To(to).
		Subject("Test email from " + r.Name).
		Body("<p>Your email settings are working.</p>")
	if err := t.Send(ctx, msg); err != nil {
		return apperr.Transport(op, err)
	}
	return nil
}
