package domain

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-supply-api/internal/cart"
)

// Product is an item a supplier sells. Discount is a 0-1 fraction.
type Product struct {
	ProductID   int64    `json:"productId"`
	SupplierID  int64    `json:"supplierId"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"`
	SKU         *string  `json:"sku"`
	Unit        *string  `json:"unit"`
	ImgName     *string  `json:"imgName"`
	Discount    *float64 `json:"discount"`
}

// Pricing is the price breakdown served for a product.
type Pricing struct {
	ProductID int64           `json:"productId"`
	ListPrice decimal.Decimal `json:"listPrice"`
	Discount  decimal.Decimal `json:"discount"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Savings   decimal.Decimal `json:"savings"`
}

// Pricing applies the discount the same way the cart does.
func (p Product) Pricing() Pricing {
	list := decimal.NewFromFloat(p.Price)
	discount := decimal.Zero
	if p.Discount != nil {
		discount = decimal.NewFromFloat(*p.Discount)
	}
	unit := cart.UnitPrice(p.Price, p.Discount)
	return Pricing{
		ProductID: p.ProductID,
		ListPrice: list,
		Discount:  discount,
		UnitPrice: unit,
		Savings:   list.Sub(unit),
	}
}

// CartProduct projects the product onto what cart pricing needs.
func (p Product) CartProduct() cart.Product {
	return cart.Product{ProductID: p.ProductID, Price: p.Price, Discount: p.Discount}
}
