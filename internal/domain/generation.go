package domain

// Generation statuses
const (
	GenerationCompleted = "completed" // Stream reached its end
	GenerationFailed    = "failed"    // Upstream refused or the stream broke
)

// Generation Model, one AI assistant request and what it produced
type Generation struct {
	ID        uint   `gorm:"primaryKey"`                 // Primary key
	RequestID string `gorm:"size:36;uniqueIndex"`        // Request identifier returned to the caller
	UserID    uint   `gorm:"index;not null"`             // Requesting user
	Type      string `gorm:"size:40;index"`              // Generation type, e.g. marketing_copy
	Model     string `gorm:"size:100"`                   // Upstream model
	Input     string `gorm:"type:text"`                  // Request data as JSON
	Output    string `gorm:"type:text"`                  // Concatenated fragments
	Status    string `gorm:"size:20;index"`              // completed or failed
	Error     string `gorm:"size:500"`                   // Failure reason
	CreatedAt int64  `gorm:"autoCreateTime:milli;index"` // Timestamp of creation in milliseconds
}
