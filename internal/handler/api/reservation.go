package api

import (
	"net/http"

	"mobirent/internal/domain/reservation"
	reqdto "mobirent/internal/handler/dto/request"
	resdto "mobirent/internal/handler/dto/response"
	"mobirent/internal/handler/middleware"
	"mobirent/internal/pkg/errs"
	"mobirent/internal/usecase/commands"
	"mobirent/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	reservationCommands commands.ReservationCommands
	reservationQueries  queries.ReservationQueries
}

func NewReservationHandler(
	reservationCommands commands.ReservationCommands,
	reservationQueries queries.ReservationQueries,
) *ReservationHandler {
	return &ReservationHandler{
		reservationCommands: reservationCommands,
		reservationQueries:  reservationQueries,
	}
}

// @Summary Create reservation
// @Description Book a vehicle for a date range, priced at booking time
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	input := commands.CreateReservationInput{
		VehicleID:      req.VehicleID,
		PickupBranchID: req.PickupBranchID,
		ReturnBranchID: req.ReturnBranchID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}

	view, err := h.reservationCommands.Create(c.Request.Context(), input, userID)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrVehicleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Vehicle not found",
			})
		case errs.Is(err, commands.ErrBranchNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Branch not found",
			})
		case errs.Is(err, commands.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid reservation dates",
			})
		case errs.Is(err, commands.ErrVehicleUnavailable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Vehicle is not available for booking",
			})
		case errs.Is(err, commands.ErrOverlappingReservation):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Vehicle already booked for these dates",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromReservationView(view))
}

// @Summary Pay reservation
// @Description Charge the card and confirm a pending reservation
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.PayReservationRequest true "Card details"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id}/pay [post]
func (h *ReservationHandler) PayReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	var req reqdto.PayReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	card := commands.CardDetails{
		Number: req.CardNumber,
		Expiry: req.Expiry,
		CVV:    req.CVV,
		Method: req.Method,
	}

	result, err := h.reservationCommands.Pay(c.Request.Context(), id, userID, card)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errs.Is(err, commands.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Reservation belongs to another user",
			})
		case errs.Is(err, commands.ErrPaymentWindowExpired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Payment window expired, reservation cancelled",
			})
		case errs.Is(err, commands.ErrPaymentDeclined):
			// The reservation stays pending so the caller can retry with
			// another card.
			status := reservation.PaymentRejected.String()
			if result != nil {
				status = result.Status.String()
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Payment declined, try another card",
				"status":  status,
			})
		case errs.Is(err, commands.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Reservation is not awaiting payment",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	view, err := h.reservationQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status": result.Status.String(),
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Cancel reservation
// @Description Cancel a confirmed reservation, computing the refund by lead time
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.CancelResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	result, err := h.reservationCommands.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errs.Is(err, commands.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Reservation belongs to another user",
			})
		case errs.Is(err, commands.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Only confirmed reservations can be cancelled",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromCancelResult(result))
}

// @Summary Pick up reservation
// @Description Hand over the assigned vehicle, or resolve a replacement when it
// is unavailable
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.PickupRequest false "Optional replacement choice"
// @Success 200 {object} resdto.ReservationResponse "Picked up, or a resdto.PickupPendingResponse selection payload"
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id}/pickup [post]
func (h *ReservationHandler) PickupReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	var req reqdto.PickupRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}
	}

	result, err := h.reservationCommands.Pickup(c.Request.Context(), id, req.ReplacementVehicleID)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errs.Is(err, commands.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Reservation is not ready for pickup",
			})
		case errs.Is(err, commands.ErrReplacementNotEligible):
			resp := gin.H{
				"error": "Chosen replacement is not in the eligible pool",
			}
			if result != nil && result.Replacements != nil {
				resp["availableReplacements"] = resdto.FromReplacementSet(result.Replacements)
			}
			c.JSON(http.StatusBadRequest, resp)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	if !result.PickedUp {
		c.JSON(http.StatusOK, resdto.FromReplacementOptions(result.Replacements))
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(result.Reservation))
}

// @Summary Update reservation status
// @Description Move a reservation along its lifecycle (staff only)
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.UpdateStatusRequest true "Target status"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id}/status [patch]
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	var req reqdto.UpdateStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	status, err := reservation.NewStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown reservation status",
		})
		return
	}

	view, err := h.reservationCommands.UpdateStatus(c.Request.Context(), id, status, req.MaintenanceReason)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errs.Is(err, commands.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status transition",
			})
		case errs.Is(err, commands.ErrMaintenanceReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Maintenance reason is required when returning a vehicle",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Update reservation add-ons
// @Description Replace the add-on lines of a reservation and reprice it
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.UpdateAddOnsRequest true "Desired add-on lines"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id}/addons [put]
func (h *ReservationHandler) UpdateAddOns(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	var req reqdto.UpdateAddOnsRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	items := make([]commands.AddOnItemInput, len(req.AddOns))
	for i, a := range req.AddOns {
		items[i] = commands.AddOnItemInput{
			AddOnID:  a.AddOnID,
			Quantity: a.Quantity,
		}
	}

	view, err := h.reservationCommands.UpdateAddOns(c.Request.Context(), id, items)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errs.Is(err, commands.ErrAddOnNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Add-on not found",
			})
		case errs.Is(err, commands.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid add-on quantities",
			})
		case errs.Is(err, commands.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Add-ons can no longer be changed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Get reservation
// @Description Get reservation by ID
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	view, err := h.reservationQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reservation not found",
		})
		return
	}

	if !h.canRead(c, view.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Reservation belongs to another user",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Get reservation by number
// @Description Look up a reservation by its public number
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param number path string true "Reservation number"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/by-number/{number} [get]
func (h *ReservationHandler) GetReservationByNumber(c *gin.Context) {
	view, err := h.reservationQueries.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reservation not found",
		})
		return
	}

	if !h.canRead(c, view.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Reservation belongs to another user",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Get my reservations
// @Description List the current user's reservations
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ReservationListResponse
// @Failure 401 {object} map[string]string
// @Router /reservations/me [get]
func (h *ReservationHandler) GetMyReservations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	items, err := h.reservationQueries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.ReservationListResponse, len(items))
	for i, item := range items {
		response[i] = resdto.FromReservationListItem(item)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Reservation report
// @Description List all reservations (staff only)
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ReservationListResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /reservations/report [get]
func (h *ReservationHandler) GetReport(c *gin.Context) {
	items, err := h.reservationQueries.Report(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.ReservationListResponse, len(items))
	for i, item := range items {
		response[i] = resdto.FromReservationListItem(item)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Total revenue
// @Description Sum of totals over revenue-bearing reservations (staff only)
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.RevenueResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /reservations/total-revenue [get]
func (h *ReservationHandler) GetTotalRevenue(c *gin.Context) {
	total, err := h.reservationQueries.TotalRevenueCents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.RevenueResponse{TotalCents: total})
}

// canRead allows staff to read any reservation, customers only their own.
func (h *ReservationHandler) canRead(c *gin.Context, ownerID uuid.UUID) bool {
	role, ok := middleware.GetUserRole(c)
	if ok && role.IsStaff() {
		return true
	}
	userID, ok := middleware.GetUserID(c)
	return ok && userID == ownerID
}
