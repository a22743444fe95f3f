package api

import (
	"errors"                     // Error inspection
	"growth_hub/internal/domain" // Importing domain models
	"net/http"                   // HTTP status codes
	"strings"                    // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

const marketplacePrefix = "marketplace:" // Every cached marketplace page

// ListingRequest is the body for creating or updating a product or service.
// Nil fields are left untouched on update.
type ListingRequest struct {
	Title       *string  `json:"title"`       // Listing title
	Description *string  `json:"description"` // Long description
	Category    *string  `json:"category"`    // Marketplace category
	Price       *float64 `json:"price"`       // Price, never negative
	Status      *string  `json:"status"`      // draft, active or archived
	Stock       *int     `json:"stock"`       // Products only
	ImageURL    *string  `json:"image_url"`   // Products only
	PriceUnit   *string  `json:"price_unit"`  // Services only: hour, session or fixed
	Location    *string  `json:"location"`    // Services only
}

// validate checks field limits; creating requires a title
func (r *ListingRequest) validate(creating bool) string {
	if creating && (r.Title == nil || strings.TrimSpace(*r.Title) == "") {
		return "Title is required"
	}
	if r.Title != nil && (strings.TrimSpace(*r.Title) == "" || len(*r.Title) > 200) {
		return "Title must be 1-200 characters"
	}
	if r.Description != nil && len(*r.Description) > 5000 {
		return "Description must be at most 5000 characters"
	}
	if r.Category != nil && len(*r.Category) > 100 {
		return "Category must be at most 100 characters"
	}
	if r.Price != nil && *r.Price < 0 {
		return "Price must not be negative"
	}
	if r.Stock != nil && *r.Stock < 0 {
		return "Stock must not be negative"
	}
	if r.Status != nil && !isListingStatus(*r.Status) {
		return "Status must be draft, active or archived"
	}
	if r.PriceUnit != nil && !isPriceUnit(*r.PriceUnit) {
		return "Price unit must be hour, session or fixed"
	}
	return ""
}

func isListingStatus(s string) bool {
	return s == domain.ListingDraft || s == domain.ListingActive || s == domain.ListingArchived
}

func isPriceUnit(s string) bool {
	return s == "hour" || s == "session" || s == "fixed"
}

// applyProduct copies the set fields onto p
func (r *ListingRequest) applyProduct(p *domain.Product) {
	if r.Title != nil {
		p.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Category != nil {
		p.Category = strings.TrimSpace(*r.Category)
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
}

// applyService copies the set fields onto s
func (r *ListingRequest) applyService(s *domain.Service) {
	if r.Title != nil {
		s.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		s.Description = *r.Description
	}
	if r.Category != nil {
		s.Category = strings.TrimSpace(*r.Category)
	}
	if r.Price != nil {
		s.Price = *r.Price
	}
	if r.Status != nil {
		s.Status = *r.Status
	}
	if r.PriceUnit != nil {
		s.PriceUnit = *r.PriceUnit
	}
	if r.Location != nil {
		s.Location = *r.Location
	}
}

// bindListing reads and validates a listing body, answering 400 itself on failure
func bindListing(c *gin.Context, creating bool) (*ListingRequest, bool) {
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return nil, false
	}
	if msg := req.validate(creating); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return nil, false
	}
	return &req, true
}

// ownedRow loads the :id row of the current user into dest, answering 401/404/500 itself
func ownedRow(c *gin.Context, db *gorm.DB, dest any) (uint, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	// Rows of other owners look exactly like missing rows
	err := db.Where("id = ? AND owner_id = ?", id, userID).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record"})
		return 0, false
	}
	return userID, true
}

// invalidateCatalog drops the marketplace pages and the owner's dashboard
func invalidateCatalog(c *gin.Context, rdb *redis.Client, userID uint) {
	invalidate(c.Request.Context(), rdb, marketplacePrefix, dashboardKey(userID))
}

// CreateProductHandler adds a product owned by the caller
func CreateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		req, ok := bindListing(c, true)
		if !ok {
			return
		}
		product := domain.Product{OwnerID: userID, Status: domain.ListingDraft}
		req.applyProduct(&product)
		if err := db.Create(&product).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Failed to create product")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,     // Owner
			"product_id": product.ID, // New product
		}).Info("Product created")
		invalidateCatalog(c, rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"product": product})
	}
}

// ListProductsHandler returns the caller's products, newest first
func ListProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pagination(c)
		query := db.Model(&domain.Product{}).Where("owner_id = ?", userID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}
		var products []domain.Product
		if err := query.Order("created_at desc, id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"products":    products,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// GetProductHandler returns one of the caller's products
func GetProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product domain.Product
		if _, ok := ownedRow(c, db, &product); !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// UpdateProductHandler changes the fields present in the body
func UpdateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product domain.Product
		userID, ok := ownedRow(c, db, &product)
		if !ok {
			return
		}
		req, ok := bindListing(c, false)
		if !ok {
			return
		}
		req.applyProduct(&product)
		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		invalidateCatalog(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// DeleteProductHandler removes one of the caller's products
func DeleteProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product domain.Product
		userID, ok := ownedRow(c, db, &product)
		if !ok {
			return
		}
		if err := db.Delete(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"product_id": product.ID,
		}).Info("Product deleted")
		invalidateCatalog(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// CreateServiceHandler adds a service owned by the caller
func CreateServiceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		req, ok := bindListing(c, true)
		if !ok {
			return
		}
		service := domain.Service{OwnerID: userID, Status: domain.ListingDraft, PriceUnit: "fixed"}
		req.applyService(&service)
		if err := db.Create(&service).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Failed to create service")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,     // Owner
			"service_id": service.ID, // New service
		}).Info("Service created")
		invalidateCatalog(c, rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"service": service})
	}
}

// ListServicesHandler returns the caller's services, newest first
func ListServicesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pagination(c)
		query := db.Model(&domain.Service{}).Where("owner_id = ?", userID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count services"})
			return
		}
		var services []domain.Service
		if err := query.Order("created_at desc, id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&services).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"services":    services,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// GetServiceHandler returns one of the caller's services
func GetServiceHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var service domain.Service
		if _, ok := ownedRow(c, db, &service); !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"service": service})
	}
}

// UpdateServiceHandler changes the fields present in the body
func UpdateServiceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var service domain.Service
		userID, ok := ownedRow(c, db, &service)
		if !ok {
			return
		}
		req, ok := bindListing(c, false)
		if !ok {
			return
		}
		req.applyService(&service)
		if err := db.Save(&service).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
			return
		}
		invalidateCatalog(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"service": service})
	}
}

// DeleteServiceHandler removes one of the caller's services
func DeleteServiceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var service domain.Service
		userID, ok := ownedRow(c, db, &service)
		if !ok {
			return
		}
		if err := db.Delete(&service).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"service_id": service.ID,
		}).Info("Service deleted")
		invalidateCatalog(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
	}
}
