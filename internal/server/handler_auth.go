package server

import (
	"net/http"

	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	"github.com/gin-gonic/gin"
)

const sessionMaxAge = 24 * 60 * 60

func (s *Server) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", s.cfg.AuthCookieSecure, true)
}

func (s *Server) handleRegister(c *gin.Context) {
	var req authdomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	session, err := s.auth.Register(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.setSessionCookie(c, session.Token, sessionMaxAge)
	c.JSON(http.StatusCreated, gin.H{"user": session.User})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	session, err := s.auth.Login(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.setSessionCookie(c, session.Token, sessionMaxAge)
	c.JSON(http.StatusOK, gin.H{"user": session.User})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (s *Server) handleMe(c *gin.Context) {
	user := currentUser(c)
	resp, err := s.auth.GetByID(c.Request.Context(), user.ID.String())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": resp})
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.auth.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) handleAssignUser(c *gin.Context) {
	var req authdomain.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}
	req.UserID = c.Param("id")

	user, err := s.auth.Assign(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
