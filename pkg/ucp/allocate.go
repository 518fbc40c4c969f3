package ucp

import "fmt"

// Allocate splits a discount amount across line items. The "each"
// method splits evenly with the rounding remainder on the first item;
// "across" splits proportionally to subtotals with the remainder on
// the last item, so allocations always sum to the discount exactly.
// With no line items the whole amount targets the order totals.
func Allocate(amount int64, items []LineItem, method DiscountMethod) []DiscountAllocation {
	if len(items) == 0 {
		return []DiscountAllocation{{Target: "$.totals", Amount: amount}}
	}

	if method == MethodEach {
		return allocateEach(amount, len(items))
	}
	return allocateAcross(amount, items)
}

func allocateEach(amount int64, count int) []DiscountAllocation {
	perItem := amount / int64(count)
	remainder := amount - perItem*int64(count)

	allocations := make([]DiscountAllocation, count)
	for i := range allocations {
		itemAmount := perItem
		if i == 0 {
			itemAmount += remainder
		}
		allocations[i] = DiscountAllocation{
			Target: lineItemTarget(i),
			Amount: itemAmount,
		}
	}
	return allocations
}

func allocateAcross(amount int64, items []LineItem) []DiscountAllocation {
	var totalValue int64
	for _, item := range items {
		totalValue += item.Subtotal()
	}
	if totalValue == 0 {
		// No subtotals to weight by, fall back to an even split.
		return allocateEach(amount, len(items))
	}

	allocations := make([]DiscountAllocation, len(items))
	var allocated int64
	for i, item := range items {
		var itemAmount int64
		if i == len(items)-1 {
			itemAmount = amount - allocated
		} else {
			itemAmount = roundDiv(amount*item.Subtotal(), totalValue)
		}
		allocated += itemAmount

		allocations[i] = DiscountAllocation{
			Target: lineItemTarget(i),
			Amount: itemAmount,
		}
	}
	return allocations
}

func lineItemTarget(index int) string {
	return fmt.Sprintf("$.line_items[%d]", index)
}

// roundDiv divides with round-half-up, matching how proportional
// shares are rounded before the last item absorbs the remainder.
func roundDiv(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}
