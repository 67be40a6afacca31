package server

import (
	"net/http"

	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/gin-gonic/gin"
)

// scopedLineID resolves the line a request may touch. Admins may name
// any line; students are pinned to their assigned one.
func (s *Server) scopedLineID(c *gin.Context, requested string) (string, error) {
	user := currentUser(c)
	if user == nil {
		return "", authdomain.ErrInvalidSession
	}
	if user.Role == authdomain.RoleAdmin {
		if requested == "" {
			return "", linedomain.ErrInvalidID
		}
		return requested, nil
	}
	if user.LineID == nil {
		return "", errForbidden
	}
	own := user.LineID.String()
	if requested != "" && requested != own {
		return "", errForbidden
	}
	return own, nil
}

func (s *Server) handleCreateLine(c *gin.Context) {
	var req linedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	line, err := s.lines.Create(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"line": line})
}

func (s *Server) handleListLines(c *gin.Context) {
	lines, err := s.lines.List(c.Request.Context(), linedomain.ListRequest{
		BlockID: c.Query("block_id"),
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (s *Server) handleGetLine(c *gin.Context) {
	lineID, err := s.scopedLineID(c, c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	line, err := s.lines.GetByID(c.Request.Context(), lineID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"line": line})
}

func (s *Server) handleUpdateLine(c *gin.Context) {
	var req linedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}
	req.ID = c.Param("id")

	line, err := s.lines.Update(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"line": line})
}

func (s *Server) handleDeleteLine(c *gin.Context) {
	if err := s.lines.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
