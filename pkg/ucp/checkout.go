package ucp

import "fmt"

// Money is an amount in minor currency units with its ISO 4217 code.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// String formats the amount for display, e.g. "USD 12.34".
func (m Money) String() string {
	return fmt.Sprintf("%s %d.%02d", m.Currency, m.Amount/100, m.Amount%100)
}

// TotalType identifies a total line in the checkout summary.
type TotalType string

const (
	TotalSubtotal      TotalType = "subtotal"
	TotalItemsDiscount TotalType = "items_discount"
	TotalDiscount      TotalType = "discount"
	TotalFulfillment   TotalType = "fulfillment"
	TotalTax           TotalType = "tax"
	TotalFee           TotalType = "fee"
	TotalTotal         TotalType = "total"
)

// Total is a single line in the checkout totals breakdown.
type Total struct {
	Type        TotalType `json:"type"`
	Amount      int64     `json:"amount"`
	DisplayText string    `json:"display_text,omitempty"`
}

// Item is a catalog item. Price is the unit price in minor units.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// LineItem is an item in a checkout session. Totals may be empty on
// requests that have not been priced yet, in which case the item's
// unit price times quantity stands in for the subtotal.
type LineItem struct {
	ID       string  `json:"id,omitempty"`
	Item     Item    `json:"item"`
	Quantity int     `json:"quantity"`
	Totals   []Total `json:"totals,omitempty"`

	// ParentID links bundled child items to their parent.
	ParentID string `json:"parent_id,omitempty"`
}

// Subtotal returns the line item's subtotal in minor units, falling
// back to price * quantity when the totals breakdown is missing or
// carries a zero subtotal.
func (li LineItem) Subtotal() int64 {
	if sub := totalAmount(li.Totals, TotalSubtotal); sub != 0 {
		return sub
	}
	return li.Item.Price * int64(li.Quantity)
}

// totalAmount extracts one total type from a totals breakdown.
func totalAmount(totals []Total, typ TotalType) int64 {
	for _, t := range totals {
		if t.Type == typ {
			return t.Amount
		}
	}
	return 0
}
