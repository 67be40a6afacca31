package server

import (
	"net/http"

	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleCreateBlock(c *gin.Context) {
	var req blockdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	block, err := s.blocks.Create(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"block": block})
}

func (s *Server) handleListBlocks(c *gin.Context) {
	blocks, err := s.blocks.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

func (s *Server) handleGetBlock(c *gin.Context) {
	block, err := s.blocks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"block": block})
}

func (s *Server) handleUpdateBlock(c *gin.Context) {
	var req blockdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}
	req.ID = c.Param("id")

	block, err := s.blocks.Update(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"block": block})
}

func (s *Server) handleDeleteBlock(c *gin.Context) {
	if err := s.blocks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
