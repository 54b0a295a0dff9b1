package cart

import "github.com/shopspring/decimal"

// Product is the slice of a catalog product the cart needs for pricing. It
// decodes directly from the products API.
type Product struct {
	ProductID int64    `json:"productId"`
	Price     float64  `json:"price"`
	Discount  *float64 `json:"discount,omitempty"`
}

// UnitPrice applies a discount fraction to price. A missing or zero discount
// leaves the price unchanged.
func UnitPrice(price float64, discount *float64) decimal.Decimal {
	p := decimal.NewFromFloat(price)
	if discount == nil || *discount == 0 {
		return p
	}
	return p.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(*discount)))
}

// Line is one priced cart line.
type Line struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Quotation is a priced cart. Missing lists product ids absent from the
// catalog; they are excluded from Total.
type Quotation struct {
	Lines   []Line          `json:"lines"`
	Missing []int64         `json:"missing"`
	Total   decimal.Decimal `json:"total"`
}

// Quote prices items against catalog. When catalog lists a product twice the
// first entry is used.
func Quote(items []Item, catalog []Product) Quotation {
	byID := make(map[int64]Product, len(catalog))
	for _, p := range catalog {
		if _, seen := byID[p.ProductID]; !seen {
			byID[p.ProductID] = p
		}
	}
	q := Quotation{Lines: []Line{}, Missing: []int64{}, Total: decimal.Zero}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			q.Missing = append(q.Missing, it.ProductID)
			continue
		}
		unit := UnitPrice(p.Price, p.Discount)
		sub := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
		q.Lines = append(q.Lines, Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: unit, Subtotal: sub})
		q.Total = q.Total.Add(sub)
	}
	return q
}
