package service

import (
	"context"
	"time"

	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"

	"github.com/google/uuid"
)

type SalesUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type PerformanceSummary struct {
	TotalRevenue      int64   `json:"totalRevenue"`
	OrderCount        int     `json:"orderCount"`
	CompletedOrders   int     `json:"completedOrders"`
	CompletionRate    float64 `json:"completionRate"`
	AverageOrderValue int64   `json:"averageOrderValue"`
}

type MarginMetrics struct {
	TotalMargin   int64   `json:"totalMargin"`
	AvgMarginRate float64 `json:"avgMarginRate"`
}

type MyPerformance struct {
	User            SalesUser                   `json:"user"`
	Summary         PerformanceSummary          `json:"summary"`
	StatusBreakdown map[model.OrderStatus]int64 `json:"statusBreakdown"`
	MarginMetrics   MarginMetrics               `json:"marginMetrics"`
	Period          PeriodInfo                  `json:"period"`
}

type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	UserID          uuid.UUID `json:"userId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	TotalRevenue    int64     `json:"totalRevenue"`
	OrderCount      int64     `json:"orderCount"`
	CompletedOrders int64     `json:"completedOrders"`
	CompletionRate  float64   `json:"completionRate"`
}

type Leaderboard struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	CurrentUser *LeaderboardEntry  `json:"currentUser"`
	Period      PeriodInfo         `json:"period"`
}

type SalesPerformanceService interface {
	Me(ctx context.Context, actor Actor, q *MonthQuery) (*MyPerformance, error)
	Leaderboard(ctx context.Context, actor Actor, q *MonthQuery) (*Leaderboard, error)
}

type salesPerformanceService struct {
	store     repository.Store
	dashboard repository.DashboardRepository
	loc       *time.Location
	now       func() time.Time
}

func NewSalesPerformanceService(store repository.Store, dashboard repository.DashboardRepository, loc *time.Location) SalesPerformanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &salesPerformanceService{store: store, dashboard: dashboard, loc: loc, now: time.Now}
}

func (s *salesPerformanceService) Me(ctx context.Context, actor Actor, q *MonthQuery) (*MyPerformance, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	repos := s.store.Repositories()
	user, err := repos.Users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, repoError(err, "User not found")
	}

	// 1. Resolve window: a month, or everything since the account was created
	w := Window{Start: user.CreatedAt, End: s.now()}
	period := PeriodInfo{Type: "all-time", Since: &user.CreatedAt}
	if q.monthly() {
		w = q.window(s.loc)
		period = PeriodInfo{Type: "monthly", Month: q.Month, Year: q.Year}
	}

	orders, err := repos.Orders.ListByCreator(ctx, user.ID, w.Start, w.End)
	if err != nil {
		return nil, repoError(err, "")
	}

	// 2. Summary and breakdown
	out := &MyPerformance{
		User:            SalesUser{ID: user.ID, Name: user.Name, Email: user.Email, CreatedAt: user.CreatedAt},
		StatusBreakdown: make(map[model.OrderStatus]int64, len(model.OrderStatuses)),
		Period:          period,
	}
	for _, st := range model.OrderStatuses {
		out.StatusBreakdown[st] = 0
	}
	for _, o := range orders {
		out.Summary.TotalRevenue += o.TotalAmount
		out.StatusBreakdown[o.Status]++
	}
	out.Summary.OrderCount = len(orders)
	out.Summary.CompletedOrders = int(out.StatusBreakdown[model.OrderCompleted])
	out.Summary.CompletionRate = percentOf(int64(out.Summary.CompletedOrders), int64(len(orders)), 1)
	if len(orders) > 0 {
		out.Summary.AverageOrderValue = int64(round(float64(out.Summary.TotalRevenue)/float64(len(orders)), 0))
	}

	// 3. Margins: plain mean of per-order rates over orders with cost data
	out.MarginMetrics = orderMargins(orders)
	return out, nil
}

func orderMargins(orders []model.Order) MarginMetrics {
	var (
		m       MarginMetrics
		rates   float64
		counted int
	)
	for _, o := range orders {
		var margin int64
		hasCost := false
		for _, item := range o.OrderItems {
			if item.TotalCost != nil {
				hasCost = true
			}
			if item.TotalMargin != nil {
				margin += *item.TotalMargin
			}
		}
		if !hasCost {
			continue
		}
		m.TotalMargin += margin
		if o.TotalAmount > 0 {
			rates += float64(margin) / float64(o.TotalAmount) * 100
			counted++
		}
	}
	if counted > 0 {
		m.AvgMarginRate = round(rates/float64(counted), 1)
	}
	return m
}

func (s *salesPerformanceService) Leaderboard(ctx context.Context, actor Actor, q *MonthQuery) (*Leaderboard, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	var start *time.Time
	end := s.now()
	period := PeriodInfo{Type: "all-time"}
	if q.monthly() {
		w := q.window(s.loc)
		start, end = &w.Start, w.End
		period = PeriodInfo{Type: "monthly", Month: q.Month, Year: q.Year}
	}

	stats, err := s.dashboard.SalesLeaderboard(ctx, start, end)
	if err != nil {
		return nil, repoError(err, "")
	}

	out := &Leaderboard{Leaderboard: make([]LeaderboardEntry, 0, len(stats)), Period: period}
	for i, st := range stats {
		out.Leaderboard = append(out.Leaderboard, LeaderboardEntry{
			Rank:            i + 1,
			UserID:          st.UserID,
			Name:            st.Name,
			Email:           st.Email,
			TotalRevenue:    st.TotalRevenue,
			OrderCount:      st.OrderCount,
			CompletedOrders: st.CompletedOrders,
			CompletionRate:  percentOf(st.CompletedOrders, st.OrderCount, 1),
		})
	}
	for i := range out.Leaderboard {
		if out.Leaderboard[i].UserID == actor.ID {
			entry := out.Leaderboard[i]
			out.CurrentUser = &entry
			break
		}
	}
	return out, nil
}
