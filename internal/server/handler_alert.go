package server

import (
	"net/http"
	"strconv"

	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleListAlerts(c *gin.Context) {
	req := alertdomain.ListRequest{
		LineID: c.Query("line_id"),
		Type:   c.Query("type"),
	}
	if limit := c.Query("limit"); limit != "" {
		req.Limit, _ = strconv.Atoi(limit)
	}

	// Admins may browse everything; students only their line's alerts.
	if currentUser(c).Role != authdomain.RoleAdmin {
		lineID, err := s.scopedLineID(c, req.LineID)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		req.LineID = lineID
	}

	alerts, err := s.alerts.List(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
