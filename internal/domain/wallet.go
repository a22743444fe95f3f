package domain

// Wallet Model, one per user; balances move only through Transactions
type Wallet struct {
	ID        uint    `gorm:"primaryKey"`           // Primary key
	UserID    uint    `gorm:"uniqueIndex"`          // Foreign key to User
	Balance   float64 `gorm:"not null;default:0"`   // Wallet balance, never negative
	UpdatedAt int64   `gorm:"autoUpdateTime:milli"` // Last balance change in milliseconds
}
