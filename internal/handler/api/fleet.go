package api

import (
	"net/http"

	"mobirent/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FleetHandler struct {
	fleetQueries queries.FleetQueries
}

func NewFleetHandler(fleetQueries queries.FleetQueries) *FleetHandler {
	return &FleetHandler{
		fleetQueries: fleetQueries,
	}
}

// @Summary List vehicles
// @Description List the fleet, optionally filtered by branch
// @Tags fleet
// @Produce json
// @Param branch_id query string false "Branch ID filter"
// @Success 200 {array} queries.VehicleView
// @Failure 400 {object} map[string]string
// @Router /vehicles [get]
func (h *FleetHandler) ListVehicles(c *gin.Context) {
	var branchID *uuid.UUID
	if raw := c.Query("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid branch ID format",
			})
			return
		}
		branchID = &id
	}

	vehicles, err := h.fleetQueries.Vehicles(c.Request.Context(), branchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// @Summary List branches
// @Tags fleet
// @Produce json
// @Success 200 {array} queries.BranchView
// @Router /branches [get]
func (h *FleetHandler) ListBranches(c *gin.Context) {
	branches, err := h.fleetQueries.Branches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, branches)
}

// @Summary List add-ons
// @Tags fleet
// @Produce json
// @Success 200 {array} queries.AddOnCatalogView
// @Router /add-ons [get]
func (h *FleetHandler) ListAddOns(c *gin.Context) {
	addOns, err := h.fleetQueries.AddOns(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, addOns)
}
