package domain

// DefaultStockCeiling is the quantity ceiling for a line whose stock the API
// does not report.
const DefaultStockCeiling = 99

// CartLineItem is one product row in a buyer's cart. Amounts are whole rupiah.
type CartLineItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id,omitempty"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	Selected  bool   `json:"selected"`
}

// LineSubtotal returns unit price times quantity.
func (i CartLineItem) LineSubtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// StockCeiling returns the largest quantity the buyer may request.
func (i CartLineItem) StockCeiling() int {
	if i.Stock <= 0 {
		return DefaultStockCeiling
	}
	return i.Stock
}

// CartTotals is derived from the line items and the applied voucher. It is
// never stored.
type CartTotals struct {
	SelectedItemCount int   `json:"selected_item_count"`
	Subtotal          int64 `json:"subtotal"`
	Discount          int64 `json:"discount"`
	ShippingCost      int64 `json:"shipping_cost"`
	Total             int64 `json:"total"`
}
