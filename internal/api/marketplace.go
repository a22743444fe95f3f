package api

import (
	"growth_hub/internal/domain" // Importing domain models
	"growth_hub/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"sort"                       // Ordering merged listings
	"strings"                    // String manipulation
	"time"                       // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Marketplace listing kinds
const (
	KindProduct = "product"
	KindService = "service"
)

// Marketplace sort orders
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortTitle     = "title"
)

// MarketplaceItem is a product or service as shown on the public marketplace
type MarketplaceItem struct {
	Kind        string  `json:"kind"`                 // product or service
	ID          uint    `json:"id"`                   // Row ID within its kind
	OwnerID     uint    `json:"owner_id"`             // Selling user
	Title       string  `json:"title"`                // Listing title
	Description string  `json:"description"`          // Long description
	Category    string  `json:"category"`             // Marketplace category
	Price       float64 `json:"price"`                // Price
	PriceUnit   string  `json:"price_unit,omitempty"` // Services only
	Location    string  `json:"location,omitempty"`   // Services only
	ImageURL    string  `json:"image_url,omitempty"`  // Products only
	CreatedAt   int64   `json:"created_at"`           // Listing time in milliseconds
}

// marketplacePage is the cached marketplace response
type marketplacePage struct {
	Items      []MarketplaceItem `json:"items"`       // Page of listings
	Page       int               `json:"page"`        // Current page
	PageSize   int               `json:"page_size"`   // Page size
	Total      int64             `json:"total"`       // Total matching listings
	TotalPages int               `json:"total_pages"` // Total pages
	Cached     bool              `json:"cached"`      // Served from cache
}

// likeEscaper makes LIKE wildcards in user text literal, paired with ESCAPE '!'
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// listingFilter narrows an active listing query by search text and category
func listingFilter(query *gorm.DB, q, category string) *gorm.DB {
	query = query.Where("status = ?", domain.ListingActive)
	if q != "" {
		like := "%" + likeEscaper.Replace(q) + "%"
		query = query.Where("(title LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!')", like, like)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	return query
}

// listingOrder is the SQL form of sortItems for a single kind
func listingOrder(order string) string {
	const newest = "created_at desc, id desc"
	switch order {
	case SortPriceAsc:
		return "price asc, " + newest
	case SortPriceDesc:
		return "price desc, " + newest
	case SortTitle:
		return "LOWER(title) asc, " + newest
	}
	return newest
}

// pageListings counts the matching rows of one kind and loads limit of them after offset
func pageListings[T any](db *gorm.DB, model *T, q, category, order string, offset, limit int) ([]T, int64, error) {
	query := listingFilter(db.Model(model), q, category)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []T
	err := query.Order(listingOrder(order)).Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

// sortItems orders listings; ties fall back to newest first then kind and ID
func sortItems(items []MarketplaceItem, order string) {
	newer := func(a, b MarketplaceItem) bool {
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID > b.ID
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch order {
		case SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case SortTitle:
			if ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title); ta != tb {
				return ta < tb
			}
		}
		return newer(a, b)
	})
}

// MarketplaceHandler lists active products and services for everyone
func MarketplaceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		kind := c.Query("kind")
		category := strings.TrimSpace(c.Query("category"))
		order := c.DefaultQuery("sort", SortNewest)
		if kind != "" && kind != KindProduct && kind != KindService {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Kind must be product or service"})
			return
		}
		switch order {
		case SortNewest, SortPriceAsc, SortPriceDesc, SortTitle:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sort must be newest, price_asc, price_desc or title"})
			return
		}
		page, pageSize := pagination(c)
		ctx := c.Request.Context()
		cacheKey := queryKey(marketplacePrefix, c, "q", "kind", "category", "sort", "page", "page_size")
		var cached marketplacePage
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		// A single kind pages in SQL; a merged page needs each kind's head up to the page end
		offset, limit := 0, page*pageSize
		if kind != "" {
			offset, limit = (page-1)*pageSize, pageSize
		}
		var items []MarketplaceItem
		var total int64
		if kind == "" || kind == KindProduct {
			products, n, err := pageListings(db, &domain.Product{}, q, category, order, offset, limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
				return
			}
			total += n
			for _, p := range products {
				items = append(items, MarketplaceItem{
					Kind: KindProduct, ID: p.ID, OwnerID: p.OwnerID, Title: p.Title,
					Description: p.Description, Category: p.Category, Price: p.Price,
					ImageURL: p.ImageURL, CreatedAt: p.CreatedAt,
				})
			}
		}
		if kind == "" || kind == KindService {
			services, n, err := pageListings(db, &domain.Service{}, q, category, order, offset, limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
				return
			}
			total += n
			for _, s := range services {
				items = append(items, MarketplaceItem{
					Kind: KindService, ID: s.ID, OwnerID: s.OwnerID, Title: s.Title,
					Description: s.Description, Category: s.Category, Price: s.Price,
					PriceUnit: s.PriceUnit, Location: s.Location, CreatedAt: s.CreatedAt,
				})
			}
		}
		sortItems(items, order)
		start := min((page-1)*pageSize-offset, len(items)) // Pages past the end are empty
		end := min(start+pageSize, len(items))
		resp := marketplacePage{
			Items:      append([]MarketplaceItem{}, items[start:end]...),
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp)
	}
}
