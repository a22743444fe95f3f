package domain

// Service Model, an offering sold by a provider
type Service struct {
	ID          uint    `gorm:"primaryKey"`                  // Primary key
	OwnerID     uint    `gorm:"index;not null"`              // Owning user
	Title       string  `gorm:"size:200;not null"`           // Service title
	Description string  `gorm:"type:text"`                   // Long description
	Category    string  `gorm:"size:100;index"`              // Marketplace category
	Price       float64 `gorm:"not null;default:0"`          // Price per unit
	PriceUnit   string  `gorm:"size:20;default:fixed"`       // hour, session or fixed
	Location    string  `gorm:"size:200"`                    // Where the service is delivered
	Status      string  `gorm:"size:20;default:draft;index"` // draft, active or archived
	CreatedAt   int64   `gorm:"autoCreateTime:milli"`        // Timestamp of creation in milliseconds
	UpdatedAt   int64   `gorm:"autoUpdateTime:milli"`        // Timestamp of last update in milliseconds
}
