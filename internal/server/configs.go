package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"analyticsadmin/internal/analytics"
)

// secretValues are never echoed back; edits that omit them keep the stored value
var secretValues = []string{"private_key_data"}

type ConfigRequest struct {
	Driver string         `json:"driver" binding:"required"`
	Values map[string]any `json:"values"`
}

type ConfigResponse struct {
	ID     int64          `json:"id"`
	Driver string         `json:"driver"`
	Values map[string]any `json:"values"`
}

type ValidateResponse struct {
	ID    int64 `json:"id"`
	Valid bool  `json:"valid"`
}

type ConfigsHandler struct {
	service *analytics.ConfigService
}

func NewConfigsHandler(service *analytics.ConfigService) *ConfigsHandler {
	return &ConfigsHandler{service: service}
}

func (h *ConfigsHandler) ListHandler(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]ConfigResponse, 0, len(configs))
	for _, config := range configs {
		response = append(response, toConfigResponse(config))
	}
	c.JSON(http.StatusOK, gin.H{"configs": response})
}

func (h *ConfigsHandler) GetHandler(c *gin.Context) {
	id, ok := configID(c)
	if !ok {
		return
	}

	config, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConfigResponse(config))
}

func (h *ConfigsHandler) CreateHandler(c *gin.Context) {
	var req ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "failed to parse request body", err)
		return
	}

	config, err := h.service.Create(c.Request.Context(), req.Driver, req.Values)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toConfigResponse(config))
}

func (h *ConfigsHandler) UpdateHandler(c *gin.Context) {
	id, ok := configID(c)
	if !ok {
		return
	}

	var req ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "failed to parse request body", err)
		return
	}

	config, err := h.service.Edit(c.Request.Context(), id, req.Driver, req.Values)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConfigResponse(config))
}

func (h *ConfigsHandler) DeleteHandler(c *gin.Context) {
	id, ok := configID(c)
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse())
}

// ValidateHandler runs the driver credential check; an unreachable provider is a valid=false answer, not an error
func (h *ConfigsHandler) ValidateHandler(c *gin.Context) {
	id, ok := configID(c)
	if !ok {
		return
	}

	valid, err := h.service.Validate(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{ID: id, Valid: valid})
}

func configID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "'id' must be an integer", err)
		return 0, false
	}
	return id, true
}

func toConfigResponse(config *analytics.DriverConfig) ConfigResponse {
	values := map[string]any{}
	if config.Options != nil {
		for k, v := range config.Options.Values() {
			values[k] = v
		}
	}
	for _, key := range secretValues {
		delete(values, key)
	}
	return ConfigResponse{ID: config.ID, Driver: config.DriverName, Values: values}
}
