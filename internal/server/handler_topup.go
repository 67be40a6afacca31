package server

import (
	"net/http"
	"strconv"

	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	topupdomain "github.com/campuswatt/gridline/internal/topup/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleInitializeTopup(c *gin.Context) {
	var req topupdomain.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	lineID, err := s.scopedLineID(c, req.LineID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	req.LineID = lineID
	req.UserID = currentUser(c).ID.String()

	payment, err := s.topups.Initialize(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

func (s *Server) handleVerifyTopup(c *gin.Context) {
	var req topupdomain.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	resp, err := s.topups.Verify(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTopupHistory(c *gin.Context) {
	user := currentUser(c)
	req := topupdomain.ListRequest{LineID: c.Query("line_id")}
	if limit := c.Query("limit"); limit != "" {
		req.Limit, _ = strconv.Atoi(limit)
	}
	if user.Role != authdomain.RoleAdmin {
		req.UserID = user.ID.String()
		req.LineID = ""
	}

	payments, err := s.topups.List(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
