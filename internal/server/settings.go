package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/erplora/analytics/internal/settings/domain"
	"github.com/erplora/analytics/pkg/db/pagination"
	"github.com/erplora/analytics/pkg/hubctx"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetSettings(c *gin.Context) {
	settings, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req settingsdomain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.settingsSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) SaveSettings(c *gin.Context) {
	var form settingsdomain.SettingsForm
	if err := c.ShouldBindJSON(&form); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	settings, err := s.settingsSvc.Save(c.Request.Context(), form)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) ListSavedReports(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	reports, err := s.settingsSvc.ListSavedReports(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_reports": reports})
}

func (s *Server) CreateSavedReport(c *gin.Context) {
	var req settingsdomain.CreateSavedReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	report, err := s.settingsSvc.CreateSavedReport(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) RunSavedReport(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}
	if err := s.settingsSvc.TouchSavedReport(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) DeleteSavedReport(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}
	if err := s.settingsSvc.DeleteSavedReport(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// InvalidateSnapshots marks a hub's cached report payloads stale, optionally
// narrowed to one report type. Source-owning modules call this after writes.
func (s *Server) InvalidateSnapshots(c *gin.Context) {
	hubID, ok := hubctx.HubID(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrMissingHub)
		return
	}

	affected, err := s.snapshots.Invalidate(c.Request.Context(), s.db, hubID, c.Query("type"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": affected})
}

func parseSnowflakeParam(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return snowflake.ID(value), true
}
