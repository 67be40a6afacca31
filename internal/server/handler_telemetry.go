package server

import (
	"net/http"
	"strconv"
	"time"

	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleListEnergyLogs(c *gin.Context) {
	lineID, err := s.scopedLineID(c, c.Query("line_id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	req := telemetrydomain.ListLogsRequest{LineID: lineID}
	req.PageToken = c.Query("page_token")
	if size := c.Query("page_size"); size != "" {
		req.PageSize, _ = strconv.Atoi(size)
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			s.abortBadRequest(c, "since must be RFC3339")
			return
		}
		req.Since = t
	}
	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			s.abortBadRequest(c, "until must be RFC3339")
			return
		}
		req.Until = t
	}

	resp, err := s.telemetry.ListLogs(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUsageAnalytics(c *gin.Context) {
	lineID := c.Query("line_id")
	if lineID == "" {
		s.abortBadRequest(c, "line_id is required")
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			s.abortBadRequest(c, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	summary, err := s.telemetry.UsageSummary(c.Request.Context(), lineID,
		time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": summary, "window_days": days})
}
