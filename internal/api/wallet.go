package api

import (
	"errors"                     // Sentinel errors
	"growth_hub/internal/domain" // Importing domain models
	"growth_hub/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"strconv"                    // String conversion
	"time"                       // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// errInsufficientFunds aborts a wallet debit inside a transaction
var errInsufficientFunds = errors.New("insufficient funds")

// TransferRequest represents a transfer request
type TransferRequest struct {
	ToUsername string  `json:"to_username" binding:"required"` // Target username
	Amount     float64 `json:"amount" binding:"required,gt=0"` // Transfer amount
}

// DepositRequest represents a wallet top-up
type DepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0,lte=1000000"` // Deposit amount
}

// FundCampaignRequest moves wallet funds into a campaign budget
type FundCampaignRequest struct {
	CampaignID uint    `json:"campaign_id" binding:"required"` // Campaign to fund
	Amount     float64 `json:"amount" binding:"required,gt=0"` // Amount to move
}

// transactionPage is the cached shape of a transaction listing
type transactionPage struct {
	Transactions []domain.Transaction `json:"transactions"` // List of transactions
	Page         int                  `json:"page"`         // Current page
	PageSize     int                  `json:"page_size"`    // Page size
	Total        int64                `json:"total"`        // Total transactions
	TotalPages   int                  `json:"total_pages"`  // Total pages
	Cached       bool                 `json:"cached"`       // Served from cache
}

// debitWallet subtracts amount only if the balance covers it
func debitWallet(tx *gorm.DB, walletID uint, amount float64) error {
	res := tx.Model(&domain.Wallet{}).
		Where("id = ? AND balance >= ?", walletID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errInsufficientFunds // Balance moved under us or never covered the amount
	}
	return nil
}

// creditWallet adds amount to a wallet
func creditWallet(tx *gorm.DB, walletID uint, amount float64) error {
	return tx.Model(&domain.Wallet{}).Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// invalidateWallet drops the cached wallet, history and dashboard of a user
func invalidateWallet(c *gin.Context, rdb *redis.Client, userID uint) {
	invalidate(c.Request.Context(), rdb,
		userKey("wallet", userID),        // Wallet cache
		userKey("txhistory", userID)+":", // Every cached history page
		dashboardKey(userID),             // Dashboard shows the balance
	)
}

// TransferHandler allows a user to transfer funds to another user's wallet
func TransferHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		fromUserID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TransferRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var toUser domain.User // Find target user
		if err := db.Where("username = ?", req.ToUsername).First(&toUser).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
			return
		}
		// Prevent transferring to self
		if toUser.ID == fromUserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot transfer to yourself"})
			return
		}
		var fromWallet, toWallet domain.Wallet // Find wallets
		if err := db.Where("user_id = ?", fromUserID).First(&fromWallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sender wallet not found"})
			return
		}
		if err := db.Where("user_id = ?", toUser.ID).First(&toWallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient wallet not found"})
			return
		}
		// Atomic transfer
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := debitWallet(tx, fromWallet.ID, req.Amount); err != nil {
				return err // Return error to rollback
			}
			if err := creditWallet(tx, toWallet.ID, req.Amount); err != nil {
				return err
			}
			t := domain.Transaction{
				FromWalletID: &fromWallet.ID,    // Pointer to handle nullability
				ToWalletID:   &toWallet.ID,      // Pointer to handle nullability
				Amount:       req.Amount,        // Transfer amount
				Type:         domain.TxTransfer, // Transaction type
			}
			return tx.Create(&t).Error // Commit on nil
		})
		if errors.Is(err, errInsufficientFunds) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"from_user_id": fromUserID,  // Sender user ID
				"to_user_id":   toUser.ID,   // Recipient user ID
				"amount":       req.Amount,  // Transfer amount
				"error":        err.Error(), // Error message
			}).Error("Transfer failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Transfer failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"from_user_id": fromUserID,                      // Sender user ID
			"to_user_id":   toUser.ID,                       // Recipient user ID
			"amount":       req.Amount,                      // Transfer amount
			"type":         domain.TxTransfer,               // Transaction type
			"timestamp":    time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Transfer transaction")
		invalidateWallet(c, rdb, fromUserID) // Invalidate sender caches
		invalidateWallet(c, rdb, toUser.ID)  // Invalidate recipient caches
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful"})
	}
}

// DepositHandler allows a user to top up their wallet
func DepositHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req DepositRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		var wallet domain.Wallet // Find user's wallet
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		// Update balance atomically
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := creditWallet(tx, wallet.ID, req.Amount); err != nil {
				return err
			}
			t := domain.Transaction{
				ToWalletID: &wallet.ID,       // Pointer to handle nullability
				Amount:     req.Amount,       // Deposit amount
				Type:       domain.TxDeposit, // Transaction type
			}
			return tx.Create(&t).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  req.Amount,  // Deposit amount
				"error":   err.Error(), // Error message
			}).Error("Deposit failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Deposit failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // User ID
			"amount":    req.Amount,                      // Deposit amount
			"type":      domain.TxDeposit,                // Transaction type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Deposit transaction")
		invalidateWallet(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Deposit successful"})
	}
}

// FundCampaignHandler moves money from the caller's wallet into one of their campaigns
func FundCampaignHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req FundCampaignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var campaign domain.Campaign // Campaign must belong to the caller
		if err := db.Where("id = ? AND owner_id = ?", req.CampaignID, userID).First(&campaign).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		if campaign.Status == domain.CampaignCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Campaign is completed"})
			return
		}
		var wallet domain.Wallet
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := debitWallet(tx, wallet.ID, req.Amount); err != nil {
				return err
			}
			if err := tx.Model(&domain.Campaign{}).Where("id = ?", campaign.ID).
				Update("funded", gorm.Expr("funded + ?", req.Amount)).Error; err != nil {
				return err
			}
			t := domain.Transaction{
				FromWalletID: &wallet.ID,             // Money leaves the wallet
				CampaignID:   &campaign.ID,           // and lands in the campaign
				Amount:       req.Amount,             // Amount moved
				Type:         domain.TxCampaignSpend, // Transaction type
			}
			return tx.Create(&t).Error
		})
		if errors.Is(err, errInsufficientFunds) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":     userID,
				"campaign_id": campaign.ID,
				"amount":      req.Amount,
				"error":       err.Error(),
			}).Error("Campaign funding failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Campaign funding failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,
			"campaign_id": campaign.ID,
			"amount":      req.Amount,
			"type":        domain.TxCampaignSpend,
		}).Info("Campaign funded")
		invalidateWallet(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Campaign funded", "funded": campaign.Funded + req.Amount})
	}
}

// CreateWalletHandler creates a wallet for a user (one wallet per user)
func CreateWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var wallet domain.Wallet // Check if wallet already exists
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Wallet already exists"})
			return
		}
		wallet = domain.Wallet{UserID: userID, Balance: 0} // New wallet with zero balance
		if err := db.Create(&wallet).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create wallet")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wallet"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // User ID
			"wallet_id": wallet.ID,                       // Wallet ID
			"type":      "create_wallet",                 // Event type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Wallet created")
		invalidate(c.Request.Context(), rdb, userKey("wallet", userID), dashboardKey(userID))
		c.JSON(http.StatusCreated, gin.H{"message": "Wallet created", "wallet": wallet})
	}
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()                                // Context for Redis operations
		cacheKey := userKey("wallet", userID)                     // Cache key for wallet
		var wallet domain.Wallet                                  // Wallet struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallet) // Try to get from cache
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, wallet, 60*time.Second)  // Cache the wallet for 60 seconds
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": false}) // Return wallet info
	}
}

// GetTransactionHistoryHandler returns all transactions for the authenticated user's wallet
func GetTransactionHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var wallet domain.Wallet // Get user's wallet
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		page, pageSize := pagination(c)
		offset := (page - 1) * pageSize // Calculate offset
		// Redis cache key
		cacheKey := userKey("txhistory", userID) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := c.Request.Context()
		var cached transactionPage
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		scope := db.Model(&domain.Transaction{}).
			Where("from_wallet_id = ? OR to_wallet_id = ?", wallet.ID, wallet.ID)
		var total int64 // Total count of transactions
		if err := scope.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.Transaction // Slice to hold transactions
		if err := db.Where("from_wallet_id = ? OR to_wallet_id = ?", wallet.ID, wallet.ID).
			Order("created_at desc, id desc").
			Offset(offset).
			Limit(pageSize).
			Find(&transactions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		resp := transactionPage{
			Transactions: transactions,                // List of transactions
			Page:         page,                        // Current page
			PageSize:     pageSize,                    // Page size
			Total:        total,                       // Total transactions
			TotalPages:   totalPages(total, pageSize), // Total pages
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second) // Cache the result for 60 seconds
		c.JSON(http.StatusOK, resp)
	}
}
