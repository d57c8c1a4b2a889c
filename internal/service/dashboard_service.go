package service

import (
	"context"
	"time"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/pkg/logger"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type SalesSummary struct {
	TotalRevenue int64 `json:"totalRevenue"`
	OrderCount   int64 `json:"orderCount"`
}

type UserGrowth struct {
	TotalUsers int64 `json:"totalUsers"`
}

type GrossProfit struct {
	TotalCost        int64   `json:"totalCost"`
	TotalRevenue     int64   `json:"totalRevenue"`
	TotalMargin      int64   `json:"totalMargin"`
	ProfitPercentage float64 `json:"profitPercentage"`
}

type AvgMargin struct {
	AvgMarginRate float64 `json:"avgMarginRate"`
}

type StockValue struct {
	TotalStockValue int64                     `json:"totalStockValue"`
	Products        []repository.ProductValue `json:"products"`
}

type DashboardService interface {
	Sales(ctx context.Context, q *PeriodQuery) (*SalesSummary, error)
	Orders(ctx context.Context, q *PeriodQuery) (map[model.OrderStatus]int64, error)
	Users(ctx context.Context, q *PeriodQuery) (*UserGrowth, error)
	Shops(ctx context.Context, q *PeriodQuery) ([]repository.ShopRevenue, error)
	GrossProfit(ctx context.Context, q *PeriodQuery) (*GrossProfit, error)
	AvgMargin(ctx context.Context, q *PeriodQuery) (*AvgMargin, error)
	ProductValue(ctx context.Context) (*StockValue, error)
	// Revalidate drops every cached rollup.
	Revalidate(ctx context.Context) error
}

type dashboardService struct {
	repo  repository.DashboardRepository
	cache cache.Cache
	ttl   time.Duration
	loc   *time.Location
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewDashboardService(repo repository.DashboardRepository, c cache.Cache, ttl time.Duration, loc *time.Location, log logrus.FieldLogger) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{repo: repo, cache: c, ttl: ttl, loc: loc, log: log, now: time.Now}
}

// cached serves key from the cache or computes and stores it. Cache failures
// are logged and the value is computed from the database.
func cached[T any](ctx context.Context, s *dashboardService, funcName, key string, tags []string, load func() (T, error)) (T, error) {
	var out T
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &out)
		if err != nil {
			logger.LogError(s.log, "dashboardService", funcName, "read dashboard cache", key, err)
		}
		if hit {
			return out, nil
		}
	}

	out, err := load()
	if err != nil {
		return out, repoError(err, "")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.ttl, tags...); err != nil {
			logger.LogError(s.log, "dashboardService", funcName, "write dashboard cache", key, err)
		}
	}
	return out, nil
}

func (s *dashboardService) Sales(ctx context.Context, q *PeriodQuery) (*SalesSummary, error) {
	w, err := q.Range(s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "Sales", w.cacheKey("sales"), []string{cache.TagSales}, func() (*SalesSummary, error) {
		revenue, count, err := s.repo.CompletedSales(ctx, w.Start, w.End)
		if err != nil {
			return nil, err
		}
		return &SalesSummary{TotalRevenue: revenue, OrderCount: count}, nil
	})
}

func (s *dashboardService) Orders(ctx context.Context, q *PeriodQuery) (map[model.OrderStatus]int64, error) {
	w, err := q.Range(s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "Orders", w.cacheKey("orders"), []string{cache.TagOrders}, func() (map[model.OrderStatus]int64, error) {
		return s.repo.CountOrdersByStatus(ctx, w.Start, w.End)
	})
}

func (s *dashboardService) Users(ctx context.Context, q *PeriodQuery) (*UserGrowth, error) {
	w, err := q.Range(s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "Users", w.cacheKey("user"), []string{cache.TagUser}, func() (*UserGrowth, error) {
		total, err := s.repo.CountUsersCreated(ctx, w.Start, w.End)
		if err != nil {
			return nil, err
		}
		return &UserGrowth{TotalUsers: total}, nil
	})
}

func (s *dashboardService) Shops(ctx context.Context, q *PeriodQuery) ([]repository.ShopRevenue, error) {
	w, err := q.Range(s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "Shops", w.cacheKey("shops"), []string{cache.TagShops, cache.TagSales}, func() ([]repository.ShopRevenue, error) {
		rows, err := s.repo.ShopRevenue(ctx, w.Start, w.End)
		if rows == nil {
			rows = []repository.ShopRevenue{}
		}
		return rows, err
	})
}

// marginAndRevenue loads the margin totals and completed revenue of w in parallel.
func (s *dashboardService) marginAndRevenue(ctx context.Context, w Window) (repository.MarginTotals, int64, error) {
	var (
		totals  repository.MarginTotals
		revenue int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.repo.MarginTotals(gctx, w.Start, w.End)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, _, err = s.repo.CompletedSales(gctx, w.Start, w.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return repository.MarginTotals{}, 0, err
	}
	return totals, revenue, nil
}

func (s *dashboardService) GrossProfit(ctx context.Context, q *PeriodQuery) (*GrossProfit, error) {
	w, err := q.Range(s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	tags := []string{cache.TagGrossProfit, cache.TagSales, cache.TagAvgMargin}
	return cached(ctx, s, "GrossProfit", w.cacheKey("gross-profit"), tags, func() (*GrossProfit, error) {
		totals, revenue, err := s.marginAndRevenue(ctx, w)
		if err != nil {
			return nil, err
		}
		return &GrossProfit{
			TotalCost:        totals.TotalCost,
			TotalRevenue:     revenue,
			TotalMargin:      totals.TotalMargin,
			ProfitPercentage: percentOf(totals.TotalMargin, revenue, 2),
		}, nil
	})
}

func (s *dashboardService) AvgMargin(ctx context.Context, q *PeriodQuery) (*AvgMargin, error) {
	w, err := q.Range(s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	tags := []string{cache.TagAvgMargin, cache.TagSales, cache.TagGrossProfit}
	return cached(ctx, s, "AvgMargin", w.cacheKey("avg-margin"), tags, func() (*AvgMargin, error) {
		totals, revenue, err := s.marginAndRevenue(ctx, w)
		if err != nil {
			return nil, err
		}
		return &AvgMargin{AvgMarginRate: percentOf(totals.TotalMargin, revenue, 2)}, nil
	})
}

func (s *dashboardService) ProductValue(ctx context.Context) (*StockValue, error) {
	return cached(ctx, s, "ProductValue", "dashboard:product-value", []string{cache.TagProductValue}, func() (*StockValue, error) {
		rows, err := s.repo.ProductValues(ctx)
		if err != nil {
			return nil, err
		}
		out := &StockValue{Products: rows}
		if out.Products == nil {
			out.Products = []repository.ProductValue{}
		}
		for _, p := range rows {
			out.TotalStockValue += p.Value
		}
		return out, nil
	})
}

func (s *dashboardService) Revalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateTags(ctx, cache.AllTags...); err != nil {
		logger.LogError(s.log, "dashboardService", "Revalidate", "invalidate dashboard cache", cache.AllTags, err)
		return repoError(err, "")
	}
	return nil
}
