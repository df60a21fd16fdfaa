package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"referral_system/internal/domain" // Importing domain models
	"referral_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// pagination extracts page and page_size from the query string within limits
func pagination(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		// Convert page to integer
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		// If valid, set page size
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// ListTransactionsHandler returns the reward ledger, with optional filtering by
// referrer, type, or date. The transaction log is append-only; this surface is
// read-only by construction.
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"user_id", "type", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []domain.WalletTransaction `json:"transactions"` // List of transactions
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int64                      `json:"total"`        // Total number of transactions
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page, pageSize := pagination(c)           // Pagination parameters
		offset := (page - 1) * pageSize           // Calculate offset for pagination
		query := db.Model(&domain.WalletTransaction{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID) // Filter by referrer
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType) // Filter by transaction type
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("created_at >= ?", from) // Filter by start date
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created_at <= ?", to) // Filter by end date
		}
		var total int64 // Total transaction count
		// Get total count of transactions matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var txs []domain.WalletTransaction // Slice to hold transactions
		// Fetch paginated transactions with filters applied
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&txs).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"transactions": txs,        // List of transactions
			"page":         page,       // Current page
			"page_size":    pageSize,   // Page size
			"total":        total,      // Total number of transactions
			"total_pages":  totalPages, // Total pages
			"cached":       false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListBatchesHandler returns recommendation batches with their acceptance counts
func ListBatchesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()     // Use background context for Redis
		page, pageSize := pagination(c) // Pagination parameters
		// Create a cache key based on pagination parameters
		cacheKey := utils.PageKey("admin:batches", page, pageSize)
		var cached struct {
			Batches    []domain.RecommendationBatch `json:"batches"`     // List of batches
			Page       int                          `json:"page"`        // Current page
			PageSize   int                          `json:"page_size"`   // Page size
			Total      int64                        `json:"total"`       // Total number of batches
			TotalPages int                          `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"batches":     cached.Batches,    // List of batches
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of batches
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total batch count
		// Fetch total batch count
		if err := db.Model(&domain.RecommendationBatch{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count batches"}) // Return on error
			return
		}
		var batches []domain.RecommendationBatch // Slice to hold batches
		// Fetch paginated batches
		if err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&batches).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch batches"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		respData := gin.H{
			"batches":     batches,    // List of batches
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of batches
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// GetWalletHandler returns one referrer's wallet
func GetWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.Param("userID")                  // Referrer user ID from path
		ctx := context.Background()                   // Context for Redis operations
		cacheKey := "wallet:user:" + ownerID          // Cache key for wallet
		var wallet domain.Wallet                      // Wallet struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallet) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			// Return cached wallet
			c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Where("owner_id = ?", ownerID).First(&wallet).Error; err != nil {
			// Return not found if wallet doesn't exist
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, wallet, 60*time.Second)  // Cache the wallet for 60 seconds
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": false}) // Return wallet info
	}
}
