package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
	"bloodbridge/internal/entity"
	"bloodbridge/internal/extract"
	"bloodbridge/internal/match"
)

// handleRegisterDonor registers a donor from their documents. The ID card is
// mandatory; the blood group comes either from an uploaded report or, when
// bloodGroupSource=manual, from the form. Validation issues on either
// document block registration.
func (s *Server) handleRegisterDonor(c *gin.Context) {
	ctx := c.Request.Context()

	lat, lng, err := parseCoords(c.PostForm("latitude"), c.PostForm("longitude"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	idPath, idCleanup, err := s.saveUpload(c, "idCard")
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer idCleanup()

	identity, err := s.hybrid.ExtractIdentity(ctx, idPath)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !identity.Validation.IsValid {
		s.respondError(c, &common.ValidationError{
			Document: constants.DocAadhaar,
			Issues:   identity.Validation.Issues,
		})
		return
	}

	if _, err := s.donors.GetByIDNumber(ctx, identity.Fields.IDNumber); err == nil {
		s.respondError(c, fmt.Errorf("donor with this ID number %w", common.ErrDuplicate))
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		s.respondError(c, err)
		return
	}

	bloodGroup, report, err := s.resolveBloodGroup(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var warnings []string
	if report != nil {
		warnings = extract.CrossValidate(&identity.Fields, &report.Fields).Warnings
	}

	phone := c.PostForm("phone")
	if phone == "" && report != nil {
		phone = report.Fields.Phone
	}

	donor := &entity.Donor{
		Name:       identity.Fields.Name,
		IDNumber:   identity.Fields.IDNumber,
		BloodGroup: bloodGroup,
		Age:        identity.Fields.Age,
		Gender:     identity.Fields.Gender,
		Phone:      phone,
		Latitude:   lat,
		Longitude:  lng,
		Verified:   report != nil && report.Validation.IsValid,
		Active:     true,
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		s.respondError(c, err)
		return
	}

	s.recordExtraction(ctx, &donor.ID, constants.DocAadhaar,
		string(identity.Method), identity.Confidence, identity.Validation, identity.Fields, identity.RawText)
	if report != nil {
		s.recordExtraction(ctx, &donor.ID, constants.DocBloodReport,
			string(report.Method), report.Confidence, report.Validation, report.Fields, report.RawText)
	}

	s.logger.Info("donor.registered",
		"donor_id", donor.ID,
		"blood_group", donor.BloodGroup,
		"verified", donor.Verified,
	)
	c.JSON(http.StatusCreated, gin.H{
		"donor":    donor,
		"warnings": warnings,
		"method":   identity.Method,
	})
}

// resolveBloodGroup picks the donor's group. A manual group is only trusted
// when the caller says so explicitly; otherwise the uploaded report decides.
func (s *Server) resolveBloodGroup(c *gin.Context) (string, *extract.ReportResult, error) {
	if c.PostForm("bloodGroupSource") == "manual" {
		bg, ok := constants.CanonicalizeBloodGroup(c.PostForm("bloodGroup"))
		if !ok {
			return "", nil, fmt.Errorf("%w: invalid blood group %q", common.ErrInvalidInput, c.PostForm("bloodGroup"))
		}
		return string(bg), nil, nil
	}

	file, err := c.FormFile("bloodReport")
	if err != nil {
		return "", nil, fmt.Errorf("%w: upload a bloodReport or set bloodGroupSource=manual with a bloodGroup", common.ErrInvalidInput)
	}
	path, cleanup, err := s.saveFileHeader(c, file)
	if err != nil {
		return "", nil, err
	}
	defer cleanup()

	report, err := s.hybrid.ExtractReport(c.Request.Context(), path)
	if err != nil {
		return "", nil, err
	}
	if !report.Validation.IsValid {
		return "", nil, &common.ValidationError{
			Document: constants.DocBloodReport,
			Issues:   report.Validation.Issues,
		}
	}
	return report.Fields.BloodGroup, report, nil
}

func (s *Server) handleListDonors(c *gin.Context) {
	donors, err := s.donors.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"donors": donors})
}

func (s *Server) handleGetDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid donor id", common.ErrInvalidInput))
		return
	}
	donor, err := s.donors.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"donor": donor})
}

func (s *Server) handleDonorExtractions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid donor id", common.ErrInvalidInput))
		return
	}
	recs, err := s.extractions.ListBySubject(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"extractions": recs})
}

// handleNearbyDonors finds compatible donors around a point without needing
// a stored needer.
func (s *Server) handleNearbyDonors(c *gin.Context) {
	lat, lng, err := parseCoords(c.Query("latitude"), c.Query("longitude"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	bg, ok := constants.CanonicalizeBloodGroup(c.Query("bloodGroup"))
	if !ok {
		s.respondError(c, fmt.Errorf("%w: invalid blood group %q", common.ErrInvalidInput, c.Query("bloodGroup")))
		return
	}

	scorer := s.scorer
	if raw := c.Query("maxKm"); raw != "" {
		maxKm, err := strconv.ParseFloat(raw, 64)
		if err != nil || maxKm <= 0 {
			s.respondError(c, fmt.Errorf("%w: invalid maxKm", common.ErrInvalidInput))
			return
		}
		scorer = match.NewScorer(maxKm)
	}

	donors, err := s.donors.ListActive(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	candidates := scorer.Match(entity.Needer{
		BloodGroup: string(bg),
		Latitude:   lat,
		Longitude:  lng,
		Verified:   true,
	}, donors)
	c.JSON(http.StatusOK, gin.H{"matches": candidates})
}

func parseCoords(latRaw, lngRaw string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: invalid latitude", common.ErrInvalidInput)
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("%w: invalid longitude", common.ErrInvalidInput)
	}
	return lat, lng, nil
}
