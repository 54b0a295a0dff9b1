package domain

// VehicleStatus is the operational state of a delivery vehicle. The store
// rejects any other value.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleInTransit   VehicleStatus = "in-transit"
	VehicleMaintenance VehicleStatus = "maintenance"
)

// DeliveryVehicle is a vehicle a supplier dispatches deliveries with.
type DeliveryVehicle struct {
	DeliveryVehicleID  int64         `json:"deliveryVehicleId"`
	SupplierID         int64         `json:"supplierId"`
	VehicleType        string        `json:"vehicleType"`
	LicensePlate       string        `json:"licensePlate"`
	Capacity           float64       `json:"capacity"`
	Status             VehicleStatus `json:"status"`
	LastInspectionDate *string       `json:"lastInspectionDate"`
}

// Availability tells dispatchers whether the vehicle can take a load.
type Availability struct {
	DeliveryVehicleID int64         `json:"deliveryVehicleId"`
	Status            VehicleStatus `json:"status"`
	Available         bool          `json:"available"`
	Capacity          float64       `json:"capacity"`
}

func (v DeliveryVehicle) Availability() Availability {
	return Availability{
		DeliveryVehicleID: v.DeliveryVehicleID,
		Status:            v.Status,
		Available:         v.Status == VehicleAvailable,
		Capacity:          v.Capacity,
	}
}
