package models

import "fmt"

// Asset represents an investment held by a user.
// OwnerID references a User.ID but is never checked against the user directory.
type Asset struct {
	ID      int     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OwnerID int     `json:"owner_id" gorm:"index"`
	Type    string  `json:"type" gorm:"type:varchar(100)" validate:"required,max=100"`
	Value   float64 `json:"value" validate:"gte=0"`
}

// GetID returns the store-assigned identifier.
func (a Asset) GetID() int { return a.ID }

// WithID returns a copy of the asset carrying the given identifier.
func (a Asset) WithID(id int) Asset {
	a.ID = id
	return a
}

// String renders the asset the way the console lists it.
func (a Asset) String() string {
	return fmt.Sprintf("Asset ID: %d | Type: %s | Value: %v", a.ID, a.Type, a.Value)
}
