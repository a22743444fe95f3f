package domain

// User roles
const (
	RoleSeller   = "seller"   // Sells products
	RoleProvider = "provider" // Offers services
	RoleInvestor = "investor" // Browses and backs businesses
	RoleAdmin    = "admin"    // Platform administrator
)

// User Model
type User struct {
	ID           uint   `gorm:"primaryKey"`                                     // Primary key
	Username     string `gorm:"unique;not null"`                                // Unique username
	Password     string `gorm:"not null" json:"-"`                              // Hashed password
	Role         string `gorm:"default:seller"`                                 // Role: seller, provider, investor or admin
	BusinessName string `gorm:"size:200"`                                       // Display name of the business
	Wallet       Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"` // One-to-one relationship with Wallet
	CreatedAt    int64  `gorm:"autoCreateTime:milli"`                           // Timestamp of creation in milliseconds
}

// IsSelfServiceRole reports whether a role may be chosen at registration
func IsSelfServiceRole(role string) bool {
	return role == RoleSeller || role == RoleProvider || role == RoleInvestor
}
