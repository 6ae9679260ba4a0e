package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
)

type topProductDTO struct {
	ID        flexString `json:"id"`
	ProductID flexString `json:"product_id"`
	Name      string     `json:"name"`
	Image     string     `json:"image"`
	Sold      flexInt64  `json:"sold"`
	TotalSold flexInt64  `json:"total_sold"`
}

type recentOrderDTO struct {
	OrderNumber      string    `json:"order_number"`
	CustomerNameFull string    `json:"customer_name_full"`
	CustomerName     string    `json:"customer_name"`
	ItemsCount       flexInt64 `json:"items_count"`
	FinalTotal       flexInt64 `json:"final_total"`
	Status           string    `json:"status"`
	CreatedAt        flexTime  `json:"created_at"`
}

// productName accepts either a bare name or an object with a name field.
type productName string

func (p *productName) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*p = productName(obj.Name)
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*p = productName(s)
	return nil
}

type dashboardDTO struct {
	TodaySales       flexInt64        `json:"today_sales"`
	SalesChange      flexFloat        `json:"sales_change"`
	MonthlyRevenue   flexInt64        `json:"monthly_revenue"`
	RevenueChange    flexFloat        `json:"revenue_change"`
	NewOrders        flexInt64        `json:"new_orders"`
	ActiveProducts   flexInt64        `json:"active_products"`
	TotalProducts    flexInt64        `json:"total_products"`
	NewReviews       flexInt64        `json:"new_reviews"`
	TopProducts      []topProductDTO  `json:"top_products"`
	RecentOrders     []recentOrderDTO `json:"recent_orders"`
	LowStockProducts []productName    `json:"low_stock_products"`
}

func (d dashboardDTO) toDomain() *domain.DashboardStats {
	stats := &domain.DashboardStats{
		TodaySales:       int64(d.TodaySales),
		SalesChange:      float64(d.SalesChange),
		MonthlyRevenue:   int64(d.MonthlyRevenue),
		RevenueChange:    float64(d.RevenueChange),
		NewOrders:        int(d.NewOrders),
		ActiveProducts:   int(d.ActiveProducts),
		TotalProducts:    int(d.TotalProducts),
		NewReviews:       int(d.NewReviews),
		TopProducts:      make([]domain.TopProduct, 0, len(d.TopProducts)),
		RecentOrders:     make([]domain.RecentOrderSummary, 0, len(d.RecentOrders)),
		LowStockProducts: make([]string, 0, len(d.LowStockProducts)),
	}

	for _, p := range d.TopProducts {
		id := p.ProductID
		if id == "" {
			id = p.ID
		}
		sold := p.Sold
		if sold == 0 {
			sold = p.TotalSold
		}
		stats.TopProducts = append(stats.TopProducts, domain.TopProduct{
			ProductID: string(id),
			Name:      p.Name,
			Image:     p.Image,
			Sold:      int(sold),
		})
	}

	for _, o := range d.RecentOrders {
		name := o.CustomerNameFull
		if name == "" {
			name = o.CustomerName
		}
		stats.RecentOrders = append(stats.RecentOrders, domain.RecentOrderSummary{
			OrderNumber:  o.OrderNumber,
			CustomerName: name,
			ItemsCount:   int(o.ItemsCount),
			Total:        int64(o.FinalTotal),
			Status:       domain.OrderStatus(o.Status),
			CreatedAt:    o.CreatedAt.Time(),
		})
	}

	for _, name := range d.LowStockProducts {
		if name != "" {
			stats.LowStockProducts = append(stats.LowStockProducts, string(name))
		}
	}

	return stats
}

// DashboardStore implements repository.DashboardStore.
type DashboardStore struct {
	client *Client
}

// NewDashboardStore creates a dashboard store.
func NewDashboardStore(client *Client) *DashboardStore {
	return &DashboardStore{client: client}
}

// Stats fetches the seller dashboard aggregate.
func (s *DashboardStore) Stats(ctx context.Context, sellerID string) (*domain.DashboardStats, error) {
	var dto dashboardDTO
	if err := s.client.get(ctx, "/dashboard", url.Values{"seller_id": {sellerID}}, &dto); err != nil {
		return nil, fmt.Errorf("get dashboard stats: %w", err)
	}
	return dto.toDomain(), nil
}
