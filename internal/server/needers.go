package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
	"bloodbridge/internal/entity"
)

type createNeederRequest struct {
	Name        string  `json:"name" binding:"required"`
	BloodGroup  string  `json:"bloodGroup" binding:"required"`
	Phone       string  `json:"phone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	UrgencyNote string  `json:"urgencyNote"`
}

func (s *Server) handleCreateNeeder(c *gin.Context) {
	var req createNeederRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	bg, ok := constants.CanonicalizeBloodGroup(req.BloodGroup)
	if !ok {
		s.respondError(c, fmt.Errorf("%w: invalid blood group %q", common.ErrInvalidInput, req.BloodGroup))
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		s.respondError(c, fmt.Errorf("%w: invalid coordinates", common.ErrInvalidInput))
		return
	}

	needer := &entity.Needer{
		Name:        req.Name,
		BloodGroup:  string(bg),
		Phone:       req.Phone,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		UrgencyNote: req.UrgencyNote,
	}
	if err := s.needers.Create(c.Request.Context(), needer); err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info("needer.created", "needer_id", needer.ID, "blood_group", needer.BloodGroup)
	c.JSON(http.StatusCreated, gin.H{"needer": needer})
}

// handleMatches ranks active compatible donors for a stored needer.
func (s *Server) handleMatches(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid needer id", common.ErrInvalidInput))
		return
	}
	needer, err := s.needers.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	donors, err := s.donors.ListActive(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	candidates := s.scorer.Match(*needer, donors)
	s.logger.Info("match.completed", "needer_id", needer.ID, "candidates", len(candidates))
	c.JSON(http.StatusOK, gin.H{
		"needer":  needer,
		"matches": candidates,
	})
}
