package models

// User represents an investor account.
// Passwords are kept in plaintext; credential hashing is out of scope for this store.
type User struct {
	ID       int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Username string `json:"username" gorm:"type:varchar(100);index" validate:"required,max=100"`
	Password string `json:"password" gorm:"type:varchar(255)" validate:"required"`
}

// GetID returns the store-assigned identifier.
func (u User) GetID() int { return u.ID }

// WithID returns a copy of the user carrying the given identifier.
func (u User) WithID(id int) User {
	u.ID = id
	return u
}
