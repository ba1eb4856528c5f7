package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetDashboardReport(c *gin.Context) {
	report, err := s.analyticsSvc.Dashboard(c.Request.Context(), c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetSalesReport(c *gin.Context) {
	report, err := s.analyticsSvc.SalesReport(c.Request.Context(), c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetProductsReport(c *gin.Context) {
	report, err := s.analyticsSvc.ProductsReport(c.Request.Context(), c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetCustomersReport(c *gin.Context) {
	report, err := s.analyticsSvc.CustomersReport(c.Request.Context(), c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetPipelineReport(c *gin.Context) {
	report, err := s.analyticsSvc.PipelineReport(c.Request.Context(), c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetLoyaltyReport(c *gin.Context) {
	report, err := s.analyticsSvc.LoyaltyReport(c.Request.Context(), c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetChartData(c *gin.Context) {
	chart, err := s.analyticsSvc.ChartData(c.Request.Context(), c.Query("type"), c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (s *Server) ExportCSV(c *gin.Context) {
	export, err := s.analyticsSvc.ExportCSV(c.Request.Context(), c.Query("type"), c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}
