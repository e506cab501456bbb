package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	quotedomain "github.com/jperram92/JamesCRM-sub003/internal/quote/domain"
)

// @Summary      Create Quote
// @Description  Draft a new quote for a deal
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request body quotedomain.CreateQuoteRequest true "Create Quote Request"
// @Success      200  {object}  quotedomain.Quote
// @Router       /quotes [post]
func (s *Server) CreateQuote(c *gin.Context) {
	var req quotedomain.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	targetID := resp.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "quote.create", "quote", &targetID, map[string]any{
		"quote_number": resp.QuoteNumber,
		"deal_id":      resp.DealID.String(),
		"total_amount": resp.TotalAmount,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Quotes
// @Description  List quotes, optionally filtered by deal or status
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        deal_id  query     string  false  "Deal ID"
// @Param        status   query     string  false  "Status"
// @Param        limit    query     int     false  "Limit"
// @Success      200  {object}  []quotedomain.Quote
// @Router       /quotes [get]
func (s *Server) ListQuotes(c *gin.Context) {
	limit, err := parseOptionalLimit(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	resp, err := s.quoteSvc.List(c.Request.Context(), quotedomain.ListRequest{
		DealID: strings.TrimSpace(c.Query("deal_id")),
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Quote
// @Description  Get quote by ID with line items
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  quotedomain.Quote
// @Router       /quotes/{id} [get]
func (s *Server) GetQuote(c *gin.Context) {
	resp, err := s.quoteSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Send Quote
// @Description  Render the quote document, store it and email it to the recipient
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Quote ID"
// @Param        request  body  quotedomain.SendQuoteRequest  true  "Send Quote Request"
// @Success      200  {object}  quotedomain.Quote
// @Router       /quotes/{id}/send [post]
func (s *Server) SendQuote(c *gin.Context) {
	var req quotedomain.SendQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Send(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	targetID := resp.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "quote.send", "quote", &targetID, map[string]any{
		"quote_number": resp.QuoteNumber,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Approve Quote
// @Description  Mark a sent quote as approved
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  quotedomain.Quote
// @Router       /quotes/{id}/approve [post]
func (s *Server) ApproveQuote(c *gin.Context) {
	resp, err := s.quoteSvc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	targetID := resp.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "quote.approve", "quote", &targetID, map[string]any{
		"quote_number": resp.QuoteNumber,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type rejectQuoteRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Reject Quote
// @Description  Mark a sent quote as rejected with a reason
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id       path  string              true  "Quote ID"
// @Param        request  body  rejectQuoteRequest  true  "Reject Quote Request"
// @Success      200  {object}  quotedomain.Quote
// @Router       /quotes/{id}/reject [post]
func (s *Server) RejectQuote(c *gin.Context) {
	var req rejectQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	targetID := resp.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "quote.reject", "quote", &targetID, map[string]any{
		"quote_number": resp.QuoteNumber,
		"reason":       req.Reason,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Quote Document
// @Description  Get the stored document pointer for a quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  documentdomain.GeneratedDocument
// @Router       /quotes/{id}/document [get]
func (s *Server) GetQuoteDocument(c *gin.Context) {
	quote, err := s.quoteSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.docRepo.FindByEntity(c.Request.Context(), s.db, "quote", quote.ID, "quote")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if doc == nil {
		AbortWithError(c, ErrDocumentNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}
