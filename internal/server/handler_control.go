package server

import (
	"net/http"
	"strconv"

	controldomain "github.com/campuswatt/gridline/internal/control/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleEnqueueCommand(c *gin.Context) {
	var req controldomain.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	cmd, err := s.control.Enqueue(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"command": cmd})
}

func (s *Server) handleListCommands(c *gin.Context) {
	lineID := c.Query("line_id")
	if lineID == "" {
		s.abortBadRequest(c, "line_id is required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	cmds, err := s.control.List(c.Request.Context(), lineID, limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commands": cmds})
}
