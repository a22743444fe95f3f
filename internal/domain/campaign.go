package domain

// Campaign statuses
const (
	CampaignDraft     = "draft"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

// Campaign Model, an ad campaign run by a user
type Campaign struct {
	ID        uint    `gorm:"primaryKey"`                  // Primary key
	OwnerID   uint    `gorm:"index;not null"`              // Owning user
	Name      string  `gorm:"size:200;not null"`           // Campaign name
	Channel   string  `gorm:"size:30;not null"`            // Ad channel
	Objective string  `gorm:"type:text"`                   // What the campaign should achieve
	Budget    float64 `gorm:"not null;default:0"`          // Planned budget
	Funded    float64 `gorm:"not null;default:0"`          // Amount moved in from the wallet
	Status    string  `gorm:"size:20;default:draft;index"` // draft, active, paused or completed
	StartsAt  *int64  // Planned start in milliseconds
	EndsAt    *int64  // Planned end in milliseconds
	CreatedAt int64   `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
	UpdatedAt int64   `gorm:"autoUpdateTime:milli"` // Timestamp of last update in milliseconds
}
