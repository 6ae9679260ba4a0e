package domain

import "time"

// DashboardStats summarises a seller's store. The zero value is what the
// dashboard shows when the stats cannot be loaded.
type DashboardStats struct {
	TodaySales       int64                `json:"today_sales"`
	SalesChange      float64              `json:"sales_change"`
	MonthlyRevenue   int64                `json:"monthly_revenue"`
	RevenueChange    float64              `json:"revenue_change"`
	NewOrders        int                  `json:"new_orders"`
	ActiveProducts   int                  `json:"active_products"`
	TotalProducts    int                  `json:"total_products"`
	NewReviews       int                  `json:"new_reviews"`
	TopProducts      []TopProduct         `json:"top_products"`
	RecentOrders     []RecentOrderSummary `json:"recent_orders"`
	LowStockProducts []string             `json:"low_stock_products"`
}

// TopProduct is a best-selling product on the seller dashboard.
type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Sold      int    `json:"sold"`
}

// RecentOrderSummary is one row of the dashboard's recent orders.
type RecentOrderSummary struct {
	OrderNumber  string      `json:"order_number"`
	CustomerName string      `json:"customer_name"`
	ItemsCount   int         `json:"items_count"`
	Total        int64       `json:"total"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}
