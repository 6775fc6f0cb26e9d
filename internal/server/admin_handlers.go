package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var allowedStatuses = map[string]bool{
	"new":       true,
	"contacted": true,
	"measuring": true,
	"won":       true,
	"lost":      true,
	"cancelled": true,
}

//
// --------------------------------------------------
// GET /api/admin/quotes?limit=50
// --------------------------------------------------
//

func (s *Server) listQuotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}

		quotes, err := s.admin.ListQuotes(c.Request.Context(), limit)
		if err != nil {
			s.logger.Error("Failed to list quotes", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list quotes"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"quotes": quotes})
	}
}

//
// --------------------------------------------------
// GET /api/admin/quotes/:id
// --------------------------------------------------
//

func (s *Server) getQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
			return
		}

		quote, err := s.admin.GetQuoteByID(c.Request.Context(), quoteID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
			return
		}

		c.JSON(http.StatusOK, quote)
	}
}

//
// --------------------------------------------------
// PATCH /api/admin/quotes/:id/status
// --------------------------------------------------
//

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateQuoteStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
			return
		}

		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil || !allowedStatuses[req.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		if err := s.admin.UpdateQuoteStatus(c.Request.Context(), quoteID, req.Status); err != nil {
			s.logger.Error("Failed to update quote status",
				zap.Int64("quote_id", quoteID),
				zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "status updated"})
	}
}

//
// --------------------------------------------------
// GET /api/admin/stats
// --------------------------------------------------
//

func (s *Server) quoteStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := s.admin.GetQuoteStatistics(c.Request.Context())
		if err != nil {
			s.logger.Error("Failed to get quote statistics", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get statistics"})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

//
// --------------------------------------------------
// POST /api/admin/quotes/export
// --------------------------------------------------
//

func (s *Server) exportQuotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := "quotes_" + time.Now().Format("20060102_1504")

		filepath, err := s.admin.ExportAllQuotesToExcel(c.Request.Context(), filename)
		if err != nil {
			s.logger.Error("Failed to export quotes", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export quotes"})
			return
		}

		c.FileAttachment(filepath, filename+".xlsx")
	}
}
