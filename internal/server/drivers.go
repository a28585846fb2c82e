package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"analyticsadmin/internal/analytics"
)

type DriverResponse struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	OptionsClass string `json:"options_class"`
}

type DriverFormResponse struct {
	DriverResponse
	InstallationInstructions string               `json:"installation_instructions"`
	Form                     analytics.FormSchema `json:"form"`
}

type DriversHandler struct {
	registry *analytics.Registry
}

func NewDriversHandler(registry *analytics.Registry) *DriversHandler {
	return &DriversHandler{registry: registry}
}

// ListHandler returns the registered drivers sorted by name
func (h *DriversHandler) ListHandler(c *gin.Context) {
	drivers := []DriverResponse{}
	for _, name := range h.registry.Names() {
		driver, err := h.registry.Load(name)
		if err != nil {
			abortWithError(c, err)
			return
		}
		drivers = append(drivers, describe(driver))
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

// FormHandler returns the options form of one driver
func (h *DriversHandler) FormHandler(c *gin.Context) {
	driver, err := h.registry.Load(c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DriverFormResponse{
		DriverResponse:           describe(driver),
		InstallationInstructions: driver.InstallationInstructions(),
		Form:                     driver.OptionsForm(),
	})
}

func describe(driver analytics.Driver) DriverResponse {
	return DriverResponse{Name: driver.Name(), Label: driver.Label(), OptionsClass: driver.OptionsClass()}
}
