package domain

// Listing statuses shared by products and services
const (
	ListingDraft    = "draft"    // Visible to the owner only
	ListingActive   = "active"   // Listed on the marketplace
	ListingArchived = "archived" // Hidden, kept for history
)

// Product Model
type Product struct {
	ID          uint    `gorm:"primaryKey"`                  // Primary key
	OwnerID     uint    `gorm:"index;not null"`              // Owning user
	Title       string  `gorm:"size:200;not null"`           // Product title
	Description string  `gorm:"type:text"`                   // Long description
	Category    string  `gorm:"size:100;index"`              // Marketplace category
	Price       float64 `gorm:"not null;default:0"`          // Unit price
	Stock       int     `gorm:"not null;default:0"`          // Units in stock
	ImageURL    string  `gorm:"size:500"`                    // Public image location
	Status      string  `gorm:"size:20;default:draft;index"` // draft, active or archived
	CreatedAt   int64   `gorm:"autoCreateTime:milli"`        // Timestamp of creation in milliseconds
	UpdatedAt   int64   `gorm:"autoUpdateTime:milli"`        // Timestamp of last update in milliseconds
}
