// Package models defines the persistent entities of the Store API.
package models

// User is a customer identified by a caller-supplied national id. MoneySpent
// is the denormalized running total over all purchase records referencing
// NationalID; it is only ever advanced through the atomic increment on the
// purchase write path.
type User struct {
	ID         int64
	NationalID int64
	FirstName  string
	LastName   string
	MoneySpent float64
}
