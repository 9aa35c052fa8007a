package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/config"
	"github.com/shashiranjanraj/pantry/pkg/cache"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

type Stats struct {
	Items         int64 `json:"items"`
	ActiveItems   int64 `json:"activeItems"`
	Suppliers     int64 `json:"suppliers"`
	Categories    int64 `json:"categories"`
	Units         int64 `json:"units"`
	Users         int64 `json:"users"`
	Orders        int64 `json:"orders"`
	PendingOrders int64 `json:"pendingOrders"`
}

type StatsService struct {
	repos *repositories.Repositories
	cache *cache.Cache
}

func NewStatsService(repos *repositories.Repositories, c *cache.Cache) *StatsService {
	return &StatsService{repos: repos, cache: c}
}

// Counts returns entity counts for the scope, cached for STATS_CACHE_TTL.
func (s *StatsService) Counts(ctx context.Context, d tenant.Decision) (Stats, error) {
	filter, ok := readFilter(d)
	if !ok {
		return Stats{}, nil
	}
	key := "stats:all"
	if d.RestaurantID != "" {
		key = "stats:" + d.RestaurantID
	}
	ttl := config.Duration("STATS_CACHE_TTL", 30*time.Second)

	return cache.Remember(ctx, s.cache, key, ttl, func() (Stats, error) {
		return s.count(ctx, filter)
	})
}

func (s *StatsService) count(ctx context.Context, scope bson.M) (Stats, error) {
	with := func(extra bson.M) bson.M {
		f := bson.M{}
		for k, v := range scope {
			f[k] = v
		}
		for k, v := range extra {
			f[k] = v
		}
		return f
	}

	var st Stats
	for _, c := range []struct {
		dst   *int64
		count func(context.Context, bson.M) (int64, error)
		f     bson.M
	}{
		{&st.Items, s.repos.Items.Count, scope},
		{&st.ActiveItems, s.repos.Items.Count, with(bson.M{"active": true})},
		{&st.Suppliers, s.repos.Suppliers.Count, scope},
		{&st.Categories, s.repos.Categories.Count, scope},
		{&st.Units, s.repos.Units.Count, scope},
		{&st.Users, s.repos.Users.Count, scope},
		{&st.Orders, s.repos.Orders.Count, scope},
		{&st.PendingOrders, s.repos.Orders.Count, with(bson.M{"status": models.OrderPending})},
	} {
		n, err := c.count(ctx, c.f)
		if err != nil {
			return Stats{}, err
		}
		*c.dst = n
	}
	return st, nil
}
