package domain

// Transaction types
const (
	TxDeposit       = "deposit"        // Wallet top-up
	TxTransfer      = "transfer"       // Wallet to wallet
	TxCampaignSpend = "campaign_spend" // Wallet to campaign budget
)

// Transaction Model
type Transaction struct {
	ID           uint    `gorm:"primaryKey"`           // Primary key
	FromWalletID *uint   `gorm:"index"`                // Foreign key to Wallet of the sender
	ToWalletID   *uint   `gorm:"index"`                // Foreign key to Wallet of the receiver
	CampaignID   *uint   `gorm:"index"`                // Campaign funded by a campaign_spend
	Amount       float64 // Amount of the transaction
	Type         string  // Transaction type: deposit, transfer, campaign_spend
	CreatedAt    int64   `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
