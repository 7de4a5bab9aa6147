package models

// PurchaseRecord is an immutable log entry for one purchase event. It
// references the buyer by national id only; no database-level constraint
// ties it to the users table, so a record may outlive its user.
type PurchaseRecord struct {
	ID             string
	UserNationalID int64
	Product        string
	Quantity       float64
	Cost           float64
}

// TotalCost is derived, never stored.
func (r *PurchaseRecord) TotalCost() float64 {
	return r.Cost * r.Quantity
}
