// Package catalog serves suppliers, their products and cart quotes.
package catalog

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-supply-api/internal/domains/catalog/adapters/http/quote"
	catalogdomain "github.com/Apurer/go-gin-supply-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-supply-api/internal/shared/crud"
)

// SupplierEntity configures the suppliers resource.
func SupplierEntity() crud.Entity[catalogdomain.Supplier] {
	return crud.Entity[catalogdomain.Supplier]{
		Name:    "Supplier",
		Path:    "suppliers",
		Table:   "suppliers",
		IDField: "supplierId",
		Columns: []crud.Column{
			{Field: "name", Kind: crud.KindString, Required: true, Rules: "min=1,max=255"},
			{Field: "description", Kind: crud.KindString},
			{Field: "contactPerson", Kind: crud.KindString},
			{Field: "email", Kind: crud.KindString, Rules: "email"},
			{Field: "phone", Kind: crud.KindString},
			{Field: "active", Kind: crud.KindBool},
			{Field: "verified", Kind: crud.KindBool},
		},
		Derived: []crud.Derived[catalogdomain.Supplier]{{
			Name: "status",
			Compute: func(_ context.Context, s catalogdomain.Supplier) (any, error) {
				return gin.H{"status": s.ApprovalStatus()}, nil
			},
		}},
	}
}

// ProductEntity configures the products resource.
func ProductEntity() crud.Entity[catalogdomain.Product] {
	return crud.Entity[catalogdomain.Product]{
		Name:    "Product",
		Path:    "products",
		Table:   "products",
		IDField: "productId",
		Columns: []crud.Column{
			{Field: "supplierId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "name", Kind: crud.KindString, Required: true, Rules: "min=1,max=255"},
			{Field: "description", Kind: crud.KindString},
			{Field: "price", Kind: crud.KindFloat, Required: true, Rules: "gte=0"},
			{Field: "sku", Kind: crud.KindString},
			{Field: "unit", Kind: crud.KindString},
			{Field: "imgName", Kind: crud.KindString},
			{Field: "discount", Kind: crud.KindFloat, Rules: "gte=0,lte=1"},
		},
		ForeignKeys: []crud.ForeignKey{{Route: "supplier", Field: "supplierId"}},
		Derived: []crud.Derived[catalogdomain.Product]{{
			Name: "price",
			Compute: func(_ context.Context, p catalogdomain.Product) (any, error) {
				return p.Pricing(), nil
			},
		}},
	}
}

// Module owns the catalog repositories.
type Module struct {
	Suppliers *crud.Repository[catalogdomain.Supplier]
	Products  *crud.Repository[catalogdomain.Product]
}

// New builds the catalog over db.
func New(db *gorm.DB, opts ...crud.Option) *Module {
	return &Module{
		Suppliers: crud.NewRepository(db, SupplierEntity(), opts...),
		Products:  crud.NewRepository(db, ProductEntity(), opts...),
	}
}

// Register mounts suppliers, products and the cart quote endpoint.
func (m *Module) Register(router gin.IRouter) {
	crud.NewHandler[catalogdomain.Supplier](m.Suppliers, SupplierEntity()).Register(router)
	crud.NewHandler[catalogdomain.Product](m.Products, ProductEntity()).Register(router)
	quote.NewHandler(m.Products).Register(router)
}
