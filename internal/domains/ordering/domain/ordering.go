package domain

import "github.com/shopspring/decimal"

// Order is placed by a branch.
type Order struct {
	OrderID     int64   `json:"orderId"`
	BranchID    int64   `json:"branchId"`
	OrderDate   *string `json:"orderDate"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// OrderDetail is one product line of an order.
type OrderDetail struct {
	OrderDetailID int64   `json:"orderDetailId"`
	OrderID       int64   `json:"orderId"`
	ProductID     int64   `json:"productId"`
	Quantity      int64   `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	Notes         *string `json:"notes"`
}

// OrderDetailDelivery records how much of an order line a delivery carries.
type OrderDetailDelivery struct {
	OrderDetailDeliveryID int64   `json:"orderDetailDeliveryId"`
	OrderDetailID         int64   `json:"orderDetailId"`
	DeliveryID            int64   `json:"deliveryId"`
	Quantity              int64   `json:"quantity"`
	Notes                 *string `json:"notes"`
}

// LineTotal is the priced view of an order line.
type LineTotal struct {
	OrderDetailID int64           `json:"orderDetailId"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Total         decimal.Decimal `json:"total"`
}

func (d OrderDetail) LineTotal() LineTotal {
	unit := decimal.NewFromFloat(d.UnitPrice)
	return LineTotal{
		OrderDetailID: d.OrderDetailID,
		Quantity:      d.Quantity,
		UnitPrice:     unit,
		Total:         unit.Mul(decimal.NewFromInt(d.Quantity)),
	}
}
