package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/jperram92/JamesCRM-sub003/internal/audit/domain"
	deliverydomain "github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
)

// @Summary      List Delivery Logs
// @Description  List delivery attempts, newest first
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Param        recipient  query     string  false  "Recipient"
// @Param        status     query     string  false  "Status (sent|failed)"
// @Param        start_at   query     string  false  "Start At (RFC 3339)"
// @Param        end_at     query     string  false  "End At (RFC 3339)"
// @Param        limit      query     int     false  "Limit"
// @Success      200  {object}  []deliverydomain.DeliveryLog
// @Router       /delivery-logs [get]
func (s *Server) ListDeliveryLogs(c *gin.Context) {
	filter := deliverydomain.LogFilter{
		Recipient: strings.TrimSpace(c.Query("recipient")),
		Status:    strings.TrimSpace(c.Query("status")),
	}

	startAt, err := parseOptionalTime(c.Query("start_at"))
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}
	filter.StartAt = startAt

	endAt, err := parseOptionalTime(c.Query("end_at"))
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
		return
	}
	filter.EndAt = endAt

	limit, err := parseOptionalLimit(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}
	filter.Limit = limit

	resp, err := s.deliverySvc.ListLogs(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Audit Logs
// @Description  List audit log entries, newest first
// @Tags         audit
// @Accept       json
// @Produce      json
// @Param        action       query     string  false  "Action"
// @Param        target_type  query     string  false  "Target Type"
// @Param        target_id    query     string  false  "Target ID"
// @Param        limit        query     int     false  "Limit"
// @Success      200  {object}  []auditdomain.AuditLog
// @Router       /audit-logs [get]
func (s *Server) ListAuditLogs(c *gin.Context) {
	limit, err := parseOptionalLimit(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	resp, err := s.auditRepo.List(c.Request.Context(), s.db, auditdomain.ListFilter{
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		TargetID:   strings.TrimSpace(c.Query("target_id")),
		Limit:      limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}

func parseOptionalLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, strconv.ErrRange
	}
	return parsed, nil
}
