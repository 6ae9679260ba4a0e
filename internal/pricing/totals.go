// Package pricing turns cart lines and an optional voucher into payable
// totals. Everything here is pure: no I/O and no shared state.
package pricing

import "github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"

// Subtotal sums the line subtotals of selected items.
func Subtotal(items []domain.CartLineItem) int64 {
	var subtotal int64
	for _, item := range items {
		if item.Selected {
			subtotal += item.LineSubtotal()
		}
	}
	return subtotal
}

// ComputeTotals derives cart totals from scratch. The discount is taken off
// the subtotal before shipping is added, and the total never goes below zero.
func ComputeTotals(items []domain.CartLineItem, voucher *domain.AppliedVoucher, shippingCost int64) domain.CartTotals {
	totals := domain.CartTotals{ShippingCost: shippingCost}

	for _, item := range items {
		if !item.Selected {
			continue
		}
		totals.SelectedItemCount++
		totals.Subtotal += item.LineSubtotal()
	}

	if voucher != nil {
		totals.Discount = voucher.DiscountAmount
	}

	totals.Total = totals.Subtotal - totals.Discount + shippingCost
	if totals.Total < 0 {
		totals.Total = 0
	}

	return totals
}

// Quote evaluates voucher against the selected subtotal of items and computes
// the totals in one step. When the voucher no longer applies the returned
// applied voucher is nil and the rejection explains why.
func Quote(items []domain.CartLineItem, voucher *domain.Voucher, shippingCost int64) (domain.CartTotals, *domain.AppliedVoucher, *VoucherRejection) {
	applied, rejection := Evaluate(voucher, Subtotal(items))
	return ComputeTotals(items, applied, shippingCost), applied, rejection
}
