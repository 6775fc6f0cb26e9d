package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"doorquote/internal/panels"
	"doorquote/internal/wizard"
)

type sessionResponse struct {
	State  wizard.State  `json:"state"`
	Totals totalsPayload `json:"totals"`
}

type totalsPayload struct {
	Subtotal         float64 `json:"subtotal"`
	DeliveryCost     float64 `json:"delivery_cost"`
	InstallationCost float64 `json:"installation_cost"`
	Tax              float64 `json:"tax"`
	GrandTotal       float64 `json:"grand_total"`
}

func (s *Server) sessionResponse(state wizard.State) sessionResponse {
	totals := s.reducer.Totals(state, s.rates)
	return sessionResponse{
		State: state,
		Totals: totalsPayload{
			Subtotal:         totals.Subtotal,
			DeliveryCost:     totals.DeliveryCost,
			InstallationCost: totals.InstallationCost,
			Tax:              totals.Tax,
			GrandTotal:       totals.GrandTotal,
		},
	}
}

//
// --------------------------------------------------
// GET /api/products
// --------------------------------------------------
//

func (s *Server) listProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"products": s.registry.Products()})
	}
}

//
// --------------------------------------------------
// GET /api/products/:slug
// --------------------------------------------------
//

func (s *Server) getProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := s.registry.Lookup(c.Param("slug"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

//
// --------------------------------------------------
// GET /api/products/:slug/panel-options?width=120
// --------------------------------------------------
//

type panelOption struct {
	Count         int      `json:"count"`
	PerPanelWidth float64  `json:"per_panel_width"`
	Layouts       []string `json:"layouts,omitempty"`
}

func (s *Server) panelOptions() gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := s.registry.Lookup(c.Param("slug"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown product"})
			return
		}
		if !product.SupportsPanelCount {
			c.JSON(http.StatusOK, gin.H{"options": []panelOption{}})
			return
		}

		width, err := strconv.ParseFloat(c.Query("width"), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid width"})
			return
		}

		counts := panels.AvailableCounts(width, product.PanelRule)
		options := make([]panelOption, 0, len(counts))
		for _, opt := range counts {
			options = append(options, panelOption{
				Count:         opt.Count,
				PerPanelWidth: opt.PerPanelWidth,
				Layouts:       panels.Layouts(opt.Count, product),
			})
		}

		c.JSON(http.StatusOK, gin.H{"options": options})
	}
}

//
// --------------------------------------------------
// POST /api/sessions
// --------------------------------------------------
//

func (s *Server) createSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := uuid.NewString()
		state := wizard.NewState()

		if err := s.sessions.Save(c.Request.Context(), sessionID, state); err != nil {
			s.logger.Error("Failed to create session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id": sessionID,
			"state":      state,
		})
	}
}

//
// --------------------------------------------------
// GET /api/sessions/:id
// --------------------------------------------------
//

func (s *Server) getSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.logger.Error("Failed to load session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		c.JSON(http.StatusOK, s.sessionResponse(state))
	}
}

//
// --------------------------------------------------
// POST /api/sessions/:id/actions
// --------------------------------------------------
//

type actionRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) applyAction() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")

		var req actionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		action, err := wizard.Decode(req.Type, req.Payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		state, err := s.sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			s.logger.Error("Failed to load session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}

		// Unknown action types fall through as no-ops.
		if action != nil {
			state = s.reducer.Reduce(state, action)
			if err := s.sessions.Save(c.Request.Context(), sessionID, state); err != nil {
				s.logger.Error("Failed to save session", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
				return
			}
		}

		c.JSON(http.StatusOK, s.sessionResponse(state))
	}
}

//
// --------------------------------------------------
// POST /api/sessions/:id/submit
// --------------------------------------------------
//

func (s *Server) submitSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sessionID := c.Param("id")

		state, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			s.logger.Error("Failed to load session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}

		if state.Submitting {
			c.JSON(http.StatusConflict, gin.H{"error": "submission already in progress"})
			return
		}
		if len(state.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quote has no items"})
			return
		}

		state = s.reducer.Reduce(state, wizard.SetSubmitting{Submitting: true})
		if err := s.sessions.Save(ctx, sessionID, state); err != nil {
			s.logger.Error("Failed to save session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}

		result, err := s.submitter.Submit(ctx, state)
		if err != nil {
			s.logger.Error("Submission failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
			state = s.reducer.Reduce(state, wizard.SetSubmitting{Submitting: false})
			state = s.reducer.Reduce(state, wizard.SetError{Message: "quote submission failed, please try again"})
			if err := s.sessions.Save(ctx, sessionID, state); err != nil {
				s.logger.Error("Failed to save session", zap.Error(err))
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "quote submission failed"})
			return
		}

		state = s.reducer.Reduce(state, wizard.SetSubmitting{Submitting: false})
		state = s.reducer.Reduce(state, wizard.SetError{Message: ""})
		state = s.reducer.Reduce(state, wizard.SetLeadID{ID: result.LeadID})
		state = s.reducer.Reduce(state, wizard.SetQuoteID{ID: result.QuoteID})
		state = s.reducer.Reduce(state, wizard.SetStep{Step: wizard.StepConfirmation})
		if err := s.sessions.Save(ctx, sessionID, state); err != nil {
			s.logger.Error("Failed to save session", zap.Error(err))
		}

		c.JSON(http.StatusOK, s.sessionResponse(state))
	}
}

//
// --------------------------------------------------
// DELETE /api/sessions/:id
// --------------------------------------------------
//

func (s *Server) clearSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.sessions.Clear(c.Request.Context(), c.Param("id")); err != nil {
			s.logger.Error("Failed to clear session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "session cleared"})
	}
}
