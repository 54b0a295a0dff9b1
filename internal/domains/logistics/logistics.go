// Package logistics serves delivery vehicles and deliveries.
package logistics

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	logisticsdomain "github.com/Apurer/go-gin-supply-api/internal/domains/logistics/domain"
	"github.com/Apurer/go-gin-supply-api/internal/shared/crud"
)

// VehicleEntity configures the delivery vehicles resource. Status values are
// constrained by the store, not here.
func VehicleEntity() crud.Entity[logisticsdomain.DeliveryVehicle] {
	return crud.Entity[logisticsdomain.DeliveryVehicle]{
		Name:    "DeliveryVehicle",
		Path:    "delivery-vehicles",
		Table:   "delivery_vehicles",
		IDField: "deliveryVehicleId",
		Columns: []crud.Column{
			{Field: "supplierId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "vehicleType", Kind: crud.KindString, Required: true, Rules: "min=1"},
			{Field: "licensePlate", Kind: crud.KindString, Required: true, Rules: "min=1,max=32"},
			{Field: "capacity", Kind: crud.KindFloat, Required: true, Rules: "gte=0"},
			{Field: "status", Kind: crud.KindString},
			{Field: "lastInspectionDate", Kind: crud.KindDate},
		},
		ForeignKeys: []crud.ForeignKey{{Route: "supplier", Field: "supplierId"}},
		Derived: []crud.Derived[logisticsdomain.DeliveryVehicle]{{
			Name: "availability",
			Compute: func(_ context.Context, v logisticsdomain.DeliveryVehicle) (any, error) {
				return v.Availability(), nil
			},
		}},
	}
}

// DeliveryEntity configures the deliveries resource, including the
// status-only update at PUT /deliveries/:id/status.
func DeliveryEntity() crud.Entity[logisticsdomain.Delivery] {
	return crud.Entity[logisticsdomain.Delivery]{
		Name:    "Delivery",
		Path:    "deliveries",
		Table:   "deliveries",
		IDField: "deliveryId",
		Columns: []crud.Column{
			{Field: "supplierId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "deliveryDate", Kind: crud.KindDate},
			{Field: "name", Kind: crud.KindString, Required: true, Rules: "min=1,max=255"},
			{Field: "description", Kind: crud.KindString},
			{Field: "status", Kind: crud.KindString},
		},
		ForeignKeys: []crud.ForeignKey{{Route: "supplier", Field: "supplierId"}},
		Actions:     []crud.Action{{Name: "status", Fields: []string{"status"}}},
	}
}

type Module struct {
	Vehicles   *crud.Repository[logisticsdomain.DeliveryVehicle]
	Deliveries *crud.Repository[logisticsdomain.Delivery]
}

func New(db *gorm.DB, opts ...crud.Option) *Module {
	return &Module{
		Vehicles:   crud.NewRepository(db, VehicleEntity(), opts...),
		Deliveries: crud.NewRepository(db, DeliveryEntity(), opts...),
	}
}

func (m *Module) Register(router gin.IRouter) {
	crud.NewHandler[logisticsdomain.DeliveryVehicle](m.Vehicles, VehicleEntity()).Register(router)
	crud.NewHandler[logisticsdomain.Delivery](m.Deliveries, DeliveryEntity()).Register(router)
}
