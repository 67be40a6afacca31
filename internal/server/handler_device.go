package server

import (
	"net/http"

	devicedomain "github.com/campuswatt/gridline/internal/device/domain"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleIngestTelemetry(c *gin.Context) {
	var req telemetrydomain.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	// A device only reports on lines inside its own block.
	if err := s.devices.AuthorizeLine(c.Request.Context(), currentDevice(c), req.LineID); err != nil {
		s.abortWithError(c, err)
		return
	}

	resp, err := s.telemetry.Ingest(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePollControl(c *gin.Context) {
	lineID := c.Query("line_id")
	if lineID == "" {
		s.abortBadRequest(c, "line_id is required")
		return
	}

	if err := s.devices.AuthorizeLine(c.Request.Context(), currentDevice(c), lineID); err != nil {
		s.abortWithError(c, err)
		return
	}

	resp, err := s.control.PollAndClaim(c.Request.Context(), lineID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHeartbeat(c *gin.Context) {
	resp, err := s.devices.Heartbeat(c.Request.Context(), c.GetHeader(deviceTokenHdr))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRegisterDevice(c *gin.Context) {
	var req devicedomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortBadRequest(c, "invalid request body")
		return
	}

	resp, err := s.devices.Register(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleListDevices(c *gin.Context) {
	devices, err := s.devices.List(c.Request.Context(), c.Query("block_id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (s *Server) handleRevokeDevice(c *gin.Context) {
	if err := s.devices.Revoke(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
