// Package ordering serves orders, their lines and line deliveries.
package ordering

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderingdomain "github.com/Apurer/go-gin-supply-api/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-supply-api/internal/shared/crud"
)

func OrderEntity() crud.Entity[orderingdomain.Order] {
	return crud.Entity[orderingdomain.Order]{
		Name:    "Order",
		Path:    "orders",
		Table:   "orders",
		IDField: "orderId",
		Columns: []crud.Column{
			{Field: "branchId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "orderDate", Kind: crud.KindDate},
			{Field: "name", Kind: crud.KindString},
			{Field: "description", Kind: crud.KindString},
			{Field: "status", Kind: crud.KindString},
		},
		ForeignKeys: []crud.ForeignKey{{Route: "branch", Field: "branchId"}},
	}
}

func OrderDetailEntity() crud.Entity[orderingdomain.OrderDetail] {
	return crud.Entity[orderingdomain.OrderDetail]{
		Name:    "OrderDetail",
		Path:    "order-details",
		Table:   "order_details",
		IDField: "orderDetailId",
		Columns: []crud.Column{
			{Field: "orderId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "productId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "quantity", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "unitPrice", Kind: crud.KindFloat, Required: true, Rules: "gte=0"},
			{Field: "notes", Kind: crud.KindString},
		},
		ForeignKeys: []crud.ForeignKey{
			{Route: "order", Field: "orderId"},
			{Route: "product", Field: "productId"},
		},
		Derived: []crud.Derived[orderingdomain.OrderDetail]{{
			Name: "total",
			Compute: func(_ context.Context, d orderingdomain.OrderDetail) (any, error) {
				return d.LineTotal(), nil
			},
		}},
	}
}

func OrderDetailDeliveryEntity() crud.Entity[orderingdomain.OrderDetailDelivery] {
	return crud.Entity[orderingdomain.OrderDetailDelivery]{
		Name:    "OrderDetailDelivery",
		Path:    "order-detail-deliveries",
		Table:   "order_detail_deliveries",
		IDField: "orderDetailDeliveryId",
		Columns: []crud.Column{
			{Field: "orderDetailId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "deliveryId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "quantity", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "notes", Kind: crud.KindString},
		},
		ForeignKeys: []crud.ForeignKey{
			{Route: "order-detail", Field: "orderDetailId"},
			{Route: "delivery", Field: "deliveryId"},
		},
	}
}

type Module struct {
	Orders                *crud.Repository[orderingdomain.Order]
	OrderDetails          *crud.Repository[orderingdomain.OrderDetail]
	OrderDetailDeliveries *crud.Repository[orderingdomain.OrderDetailDelivery]
}

func New(db *gorm.DB, opts ...crud.Option) *Module {
	return &Module{
		Orders:                crud.NewRepository(db, OrderEntity(), opts...),
		OrderDetails:          crud.NewRepository(db, OrderDetailEntity(), opts...),
		OrderDetailDeliveries: crud.NewRepository(db, OrderDetailDeliveryEntity(), opts...),
	}
}

func (m *Module) Register(router gin.IRouter) {
	crud.NewHandler[orderingdomain.Order](m.Orders, OrderEntity()).Register(router)
	crud.NewHandler[orderingdomain.OrderDetail](m.OrderDetails, OrderDetailEntity()).Register(router)
	crud.NewHandler[orderingdomain.OrderDetailDelivery](m.OrderDetailDeliveries, OrderDetailDeliveryEntity()).Register(router)
}
