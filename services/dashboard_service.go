package services

import (
	"context"
	"sort"

	"pcstore/models"
	repositories "pcstore/repository"

	"github.com/shopspring/decimal"
)

// DashboardSummary is the admin overview: money taken, orders per
// status and the best-selling components by units sold.
type DashboardSummary struct {
	TotalRevenue decimal.Decimal            `json:"total_revenue"`
	OrderCounts  []repositories.StatusCount `json:"order_counts"`
	TopSelling   []TopSellingComponent      `json:"top_selling"`
	RecentOrders []models.Order             `json:"recent_orders"`
}

// TopSellingComponent aggregates units sold per component across paid
// orders, build lines counting their contained parts.
type TopSellingComponent struct {
	ComponentID string `json:"component_id"`
	Name        string `json:"name"`
	UnitsSold   int    `json:"units_sold"`
}

// DashboardService derives the admin overview from order data.
type DashboardService struct {
	orders repositories.OrderRepository
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(orders repositories.OrderRepository) *DashboardService {
	return &DashboardService{orders: orders}
}

// Summary assembles the dashboard. Top sellers come from line-item
// snapshots, so a component deleted from the catalog still shows up
// under the name it sold with.
func (s *DashboardService) Summary(ctx context.Context, topN, recentN int) (*DashboardSummary, error) {
	revenue, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	top, err := s.topSelling(ctx, topN)
	if err != nil {
		return nil, err
	}

	recent, err := s.orders.FindRecent(ctx, recentN)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalRevenue: revenue,
		OrderCounts:  counts,
		TopSelling:   top,
		RecentOrders: recent,
	}, nil
}

func (s *DashboardService) topSelling(ctx context.Context, topN int) ([]TopSellingComponent, error) {
	units := make(map[string]int)
	names := make(map[string]string)

	page := 1
	const pageSize = 200
	for {
		orders, total, err := s.orders.FindAll(ctx, "", page, pageSize)
		if err != nil {
			return nil, err
		}
		for _, order := range orders {
			if order.PaymentStatus != models.PaymentCompleted && order.PaymentStatus != models.PaymentRefunded {
				continue
			}
			for componentID, quantity := range stockRequirements(order.LineItems) {
				units[componentID] += quantity
			}
			for _, item := range order.LineItems {
				if item.ItemType == models.LineItemComponent {
					names[item.ComponentID] = item.Name
					continue
				}
				for _, contained := range item.ContainedItems {
					names[contained.ComponentID] = contained.Name
				}
			}
		}
		if int64(page*pageSize) >= total {
			break
		}
		page++
	}

	top := make([]TopSellingComponent, 0, len(units))
	for componentID, sold := range units {
		top = append(top, TopSellingComponent{
			ComponentID: componentID,
			Name:        names[componentID],
			UnitsSold:   sold,
		})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].UnitsSold != top[j].UnitsSold {
			return top[i].UnitsSold > top[j].UnitsSold
		}
		return top[i].ComponentID < top[j].ComponentID
	})
	if len(top) > topN {
		top = top[:topN]
	}
	return top, nil
}
