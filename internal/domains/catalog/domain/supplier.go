package domain

// ApprovalStatus summarizes whether a supplier may be ordered from.
type ApprovalStatus string

const (
	StatusApproved            ApprovalStatus = "APPROVED"
	StatusPendingVerification ApprovalStatus = "PENDING_VERIFICATION"
	StatusSuspended           ApprovalStatus = "SUSPENDED"
	StatusInactive            ApprovalStatus = "INACTIVE"
)

// Supplier provides products and runs deliveries.
type Supplier struct {
	SupplierID    int64   `json:"supplierId"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	ContactPerson *string `json:"contactPerson"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Active        bool    `json:"active"`
	Verified      bool    `json:"verified"`
}

// ApprovalStatus derives the supplier's standing from its flags.
func (s Supplier) ApprovalStatus() ApprovalStatus {
	switch {
	case s.Active && s.Verified:
		return StatusApproved
	case s.Active:
		return StatusPendingVerification
	case s.Verified:
		return StatusSuspended
	default:
		return StatusInactive
	}
}
