package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleEstimate(c *gin.Context) {
	lineID, err := s.scopedLineID(c, c.Query("line_id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	prediction, err := s.predictions.Estimate(c.Request.Context(), lineID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prediction": prediction})
}

func (s *Server) handlePredictionHistory(c *gin.Context) {
	lineID, err := s.scopedLineID(c, c.Query("line_id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	history, err := s.predictions.History(c.Request.Context(), lineID, limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": history})
}
