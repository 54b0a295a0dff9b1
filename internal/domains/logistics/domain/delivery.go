package domain

// Delivery is a supplier shipment. Status is free text owned by the caller.
type Delivery struct {
	DeliveryID   int64   `json:"deliveryId"`
	SupplierID   int64   `json:"supplierId"`
	DeliveryDate *string `json:"deliveryDate"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
}
