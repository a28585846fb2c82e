package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"analyticsadmin/internal/analytics"
	"analyticsadmin/internal/dashboard"
	"analyticsadmin/internal/results"
	"analyticsadmin/internal/table"
)

const moduleName = "analytics"

type EmbedResponse struct {
	Code string `json:"code"`
}

// DashboardHandler serves the widgets and report tables registered by the configured drivers
type DashboardHandler struct {
	configs *analytics.ConfigService
	embed   *analytics.EmbedCodeService
}

func NewDashboardHandler(configs *analytics.ConfigService, embed *analytics.EmbedCodeService) *DashboardHandler {
	return &DashboardHandler{configs: configs, embed: embed}
}

func (h *DashboardHandler) module(ctx context.Context) (*dashboard.Module, error) {
	module := dashboard.NewModule(moduleName)
	if err := h.configs.RegisterWidgets(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// EmbedHandler returns the concatenated tracking snippets
func (h *DashboardHandler) EmbedHandler(c *gin.Context) {
	code, err := h.embed.Generate(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if c.Query("format") == "raw" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(code))
		return
	}
	c.JSON(http.StatusOK, EmbedResponse{Code: code})
}

func (h *DashboardHandler) ListWidgetsHandler(c *gin.Context) {
	module, err := h.module(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"widgets": module.Widgets(), "charts": module.Charts()})
}

func (h *DashboardHandler) RenderWidgetHandler(c *gin.Context) {
	module, err := h.module(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	data, err := module.RenderWidget(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *DashboardHandler) ListReportsHandler(c *gin.Context) {
	module, err := h.module(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": results.NewManager(module).Tables()})
}

// LoadReportHandler returns one page of a report table. Supports skip, limit
// and format (json|csv|tsv) query parameters.
func (h *DashboardHandler) LoadReportHandler(c *gin.Context) {
	query := table.NewQuery()
	if skip := c.Query("skip"); skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			badRequest(c, "'skip' must be a non-negative integer", err)
			return
		}
		query.Skip(n)
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			badRequest(c, "'limit' must be a non-negative integer", err)
			return
		}
		query.Limit(n)
	}

	module, err := h.module(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	result, err := results.NewManager(module).Fetch(c.Request.Context(), c.Param("name"), query)
	if err != nil {
		abortWithError(c, err)
		return
	}

	options := results.ExportOptions{Format: results.ExportFormat(c.DefaultQuery("format", string(results.FormatJSON))), IncludeStats: true}
	switch options.Format {
	case results.FormatCSV:
		c.Header("Content-Type", "text/csv; charset=utf-8")
	case results.FormatTSV:
		c.Header("Content-Type", "text/tab-separated-values; charset=utf-8")
	case results.FormatJSON:
		c.Header("Content-Type", "application/json; charset=utf-8")
	default:
		badRequest(c, "'format' must be one of json, csv, tsv", nil)
		return
	}

	c.Status(http.StatusOK)
	if err := results.Write(c.Writer, result, options); err != nil {
		abortWithError(c, err)
	}
}
