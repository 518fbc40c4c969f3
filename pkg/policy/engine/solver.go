package engine

import "sort"

// Limiting factor names reported by the solver. Candidate order is fixed:
// ties between numerically equal ceilings resolve to the first entry in
// {max_discount, margin_floor, volume_tier}.
const (
	LimitMaxDiscount = "max_discount"
	LimitMarginFloor = "margin_floor"
	LimitVolumeTier  = "volume_tier"
)

// VolumeTier maps a minimum order quantity to the discount ceiling that
// quantity unlocks.
type VolumeTier struct {
	// MinQuantity is the quantity threshold; an order qualifies when its
	// quantity is >= MinQuantity (the threshold itself is inclusive).
	MinQuantity int `json:"min_quantity" yaml:"min_quantity"`

	// MaxDiscount is the discount ceiling for this tier.
	MaxDiscount float64 `json:"max_discount" yaml:"max_discount"`
}

// Constraints is the arithmetic encoding of the pricing rule set consumed
// by the maximum-discount solver. It mirrors the default policy's condition
// trees; the two must be kept in lockstep.
type Constraints struct {
	// MarginFloor is the minimum acceptable post-discount margin.
	MarginFloor float64 `json:"margin_floor" yaml:"margin_floor"`

	// MaxDiscountCap is the absolute discount ceiling.
	MaxDiscountCap float64 `json:"max_discount_cap" yaml:"max_discount_cap"`

	// VolumeTiers is the quantity-threshold discount ceiling table.
	VolumeTiers []VolumeTier `json:"volume_tiers" yaml:"volume_tiers"`
}

// MaxDiscountResult names the least-restrictive achievable discount and the
// single constraint that produced it. Recomputed fresh per call.
type MaxDiscountResult struct {
	// MaxDiscount is the highest discount that violates no constraint,
	// clamped to >= 0.
	MaxDiscount float64 `json:"max_discount"`

	// LimitingFactor names the constraint that produced the minimum.
	LimitingFactor string `json:"limiting_factor"`
}

// DefaultConstraints returns the constraint set matching DefaultPolicy:
// 15% margin floor, 25% absolute cap, 10% base tier and 15% at 100+ units.
func DefaultConstraints() Constraints {
	return Constraints{
		MarginFloor:    0.15,
		MaxDiscountCap: 0.25,
		VolumeTiers: []VolumeTier{
			{MinQuantity: 0, MaxDiscount: 0.10},
			{MinQuantity: 100, MaxDiscount: 0.15},
		},
	}
}

// MaxDiscount works backward from the constraint set to the highest
// discount the order could receive.
//
// The margin limit is product_margin - margin_floor and may be negative
// when the margin already sits below the floor; the negative intermediate
// value is intentional and only the final result is clamped to zero. The
// volume limit comes from the highest qualifying tier, falling back to the
// lowest-threshold tier when the quantity qualifies for none.
func (c Constraints) MaxDiscount(order Order) MaxDiscountResult {
	marginLimit := order.ProductMargin - c.MarginFloor
	volumeLimit := c.volumeLimit(order.Quantity)

	candidates := []struct {
		name  string
		value float64
	}{
		{LimitMaxDiscount, c.MaxDiscountCap},
		{LimitMarginFloor, marginLimit},
		{LimitVolumeTier, volumeLimit},
	}

	// First minimum encountered wins ties.
	binding := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.value < binding.value {
			binding = cand
		}
	}

	max := binding.value
	if max < 0 {
		max = 0
	}

	return MaxDiscountResult{
		MaxDiscount:    max,
		LimitingFactor: binding.name,
	}
}

// volumeLimit selects the discount ceiling for a quantity: the tier with
// the largest threshold at or below the quantity wins. If no tier
// qualifies, the lowest-threshold tier's ceiling applies.
func (c Constraints) volumeLimit(quantity int) float64 {
	if len(c.VolumeTiers) == 0 {
		return 0
	}

	tiers := make([]VolumeTier, len(c.VolumeTiers))
	copy(tiers, c.VolumeTiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinQuantity > tiers[j].MinQuantity
	})

	for _, tier := range tiers {
		if quantity >= tier.MinQuantity {
			return tier.MaxDiscount
		}
	}

	// Quantity below every threshold: fall back to the lowest tier.
	return tiers[len(tiers)-1].MaxDiscount
}
