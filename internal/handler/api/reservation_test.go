//go:build unit

package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"mobirent/internal/domain/reservation"
	"mobirent/internal/domain/user"
	"mobirent/internal/handler/api"
	resdto "mobirent/internal/handler/dto/response"
	"mobirent/internal/pkg/errs"
	"mobirent/internal/usecase/commands"
	"mobirent/tests/common/builder"
	"mobirent/tests/common/httptest"
	commandsmock "mobirent/tests/mock/commands"
	queriesmock "mobirent/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	handler      *api.ReservationHandler

	userID uuid.UUID
	role   user.Role
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockCommands, s.mockQueries)

	s.userID = uuid.New()
	s.role = user.RoleCustomer

	// Stand-in for the auth middleware so each test can pick the caller.
	s.router.Use(func(c *gin.Context) {
		c.Set("user_id", s.userID)
		c.Set("user_role", s.role)
	})

	s.router.POST("/reservations", s.handler.CreateReservation)
	s.router.GET("/reservations/me", s.handler.GetMyReservations)
	s.router.GET("/reservations/total-revenue", s.handler.GetTotalRevenue)
	s.router.GET("/reservations/:id", s.handler.GetReservation)
	s.router.POST("/reservations/:id/pay", s.handler.PayReservation)
	s.router.POST("/reservations/:id/cancel", s.handler.CancelReservation)
	s.router.POST("/reservations/:id/pickup", s.handler.PickupReservation)
	s.router.PATCH("/reservations/:id/status", s.handler.UpdateStatus)
	s.router.PUT("/reservations/:id/addons", s.handler.UpdateAddOns)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

func (s *ReservationHandlerTestSuite) createBody() map[string]any {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return map[string]any{
		"vehicle_id":       uuid.New().String(),
		"pickup_branch_id": uuid.New().String(),
		"return_branch_id": uuid.New().String(),
		"start_date":       start.Format(time.RFC3339),
		"end_date":         start.AddDate(0, 0, 3).Format(time.RFC3339),
	}
}

func (s *ReservationHandlerTestSuite) TestCreateReservation() {
	url := "/reservations"

	s.Run("success: returns 201 Created with the priced reservation", func() {
		view := builder.NewReservationBuilder(time.Now()).BuildView()
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), s.userID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, s.createBody(), "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(view.ID, response.ID)
		s.Equal(view.TotalCents, response.TotalCents)
		s.Equal("pending", response.Status)
	})

	s.Run("error: 409 Conflict when dates overlap an existing booking", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), s.userID).
			Return(nil, commands.ErrOverlappingReservation).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, s.createBody(), "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "already booked")
	})

	s.Run("error: 404 Not Found for an unknown vehicle", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), s.userID).
			Return(nil, commands.ErrVehicleNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, s.createBody(), "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Vehicle not found")
	})

	s.Run("error: 400 Bad Request when the range is invalid", func() {
		// Commands surface this as a marked cause, not the bare sentinel.
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), s.userID).
			Return(nil, errs.Mark(errs.New("end date before start date"), commands.ErrValidation)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, s.createBody(), "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid reservation dates")
	})
}

func (s *ReservationHandlerTestSuite) TestPayReservation() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/pay"
	body := map[string]any{
		"card_number": "4111 1111 1111 1111",
		"expiry":      "12/27",
		"cvv":         "123",
		"method":      "credit_card",
	}

	s.Run("success: returns 200 OK with the confirmed reservation", func() {
		view := builder.NewReservationBuilder(time.Now()).
			WithStatus(reservation.StatusConfirmed).
			BuildView()
		s.mockCommands.EXPECT().Pay(gomock.Any(), reservationID, s.userID, gomock.Any()).
			Return(&commands.PayResult{Status: reservation.PaymentApproved}, nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), reservationID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("confirmed", response.Status)
	})

	s.Run("error: 400 with the rejected status when the card is declined", func() {
		s.mockCommands.EXPECT().Pay(gomock.Any(), reservationID, s.userID, gomock.Any()).
			Return(&commands.PayResult{Status: reservation.PaymentRejected}, commands.ErrPaymentDeclined).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")

		s.Equal(http.StatusBadRequest, rec.Code)
		var response struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		}
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &response))
		s.Equal("rejected", response.Status)
		s.Contains(response.Message, "declined")
	})

	s.Run("error: 400 Bad Request when the payment window expired", func() {
		s.mockCommands.EXPECT().Pay(gomock.Any(), reservationID, s.userID, gomock.Any()).
			Return(nil, commands.ErrPaymentWindowExpired).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Payment window expired")
	})

	s.Run("error: 403 Forbidden for someone else's reservation", func() {
		s.mockCommands.EXPECT().Pay(gomock.Any(), reservationID, s.userID, gomock.Any()).
			Return(nil, commands.ErrNotOwner).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "another user")
	})
}

func (s *ReservationHandlerTestSuite) TestCancelReservation() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/cancel"

	s.Run("success: returns 200 OK with the computed refund", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), reservationID, s.userID).
			Return(&commands.CancelResult{
				ReservationID: reservationID,
				RefundCents:   16000,
				RefundType:    reservation.RefundPartial,
				Status:        reservation.StatusCancelled,
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")

		var response resdto.CancelResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(int64(16000), response.RefundCents)
		s.Equal("partial", response.RefundType)
		s.Equal("cancelled", response.Status)
	})

	s.Run("error: 400 Bad Request when the reservation is not confirmed", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), reservationID, s.userID).
			Return(nil, commands.ErrInvalidState).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "confirmed")
	})
}

func (s *ReservationHandlerTestSuite) TestPickupReservation() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/pickup"

	s.Run("success: returns 200 OK when the vehicle is handed over", func() {
		view := builder.NewReservationBuilder(time.Now()).
			WithStatus(reservation.StatusPickedUp).
			BuildView()
		s.mockCommands.EXPECT().Pickup(gomock.Any(), reservationID, nil).
			Return(&commands.PickupResult{PickedUp: true, Reservation: view}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("picked_up", response.Status)
	})

	s.Run("success: returns 200 with replacement candidates when the vehicle is out", func() {
		options := &commands.ReplacementOptions{
			HigherOrEqualPrice: []commands.ReplacementOption{
				{ID: uuid.New(), Brand: "Volkswagen", Model: "Golf", LicensePlate: "XY987ZT", DailyRateCents: 12000},
			},
			LowerPrice: []commands.ReplacementOption{
				{ID: uuid.New(), Brand: "Fiat", Model: "Panda", LicensePlate: "CC111DD", DailyRateCents: 6000},
			},
		}
		s.mockCommands.EXPECT().Pickup(gomock.Any(), reservationID, nil).
			Return(&commands.PickupResult{
				PickedUp:                   false,
				OriginalVehicleUnavailable: true,
				Replacements:               options,
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")

		s.Equal(http.StatusOK, rec.Code)
		var response resdto.PickupPendingResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &response))
		s.True(response.OriginalVehicleUnavailable)
		s.Len(response.AvailableReplacements.HigherOrEqualPrice, 1)
		s.Len(response.AvailableReplacements.LowerPrice, 1)
		s.Equal("Golf", response.AvailableReplacements.HigherOrEqualPrice[0].Model)
	})

	s.Run("success: picks the chosen replacement", func() {
		replacementID := uuid.New()
		view := builder.NewReservationBuilder(time.Now()).
			WithStatus(reservation.StatusPickedUp).
			BuildView()
		s.mockCommands.EXPECT().Pickup(gomock.Any(), reservationID, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, chosen *uuid.UUID) (*commands.PickupResult, error) {
				s.Require().NotNil(chosen)
				s.Equal(replacementID, *chosen)
				return &commands.PickupResult{PickedUp: true, Reservation: view}, nil
			}).Times(1)

		body := map[string]any{"replacement_vehicle_id": replacementID.String()}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 with candidates when the chosen vehicle is not eligible", func() {
		options := &commands.ReplacementOptions{
			HigherOrEqualPrice: []commands.ReplacementOption{
				{ID: uuid.New(), Brand: "Volkswagen", Model: "Golf", LicensePlate: "XY987ZT", DailyRateCents: 12000},
			},
		}
		s.mockCommands.EXPECT().Pickup(gomock.Any(), reservationID, gomock.Any()).
			Return(&commands.PickupResult{
				OriginalVehicleUnavailable: true,
				Replacements:               options,
			}, commands.ErrReplacementNotEligible).Times(1)

		body := map[string]any{"replacement_vehicle_id": uuid.New().String()}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "not in the eligible pool")

		var response struct {
			AvailableReplacements resdto.ReplacementSetResponse `json:"availableReplacements"`
		}
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &response))
		s.Len(response.AvailableReplacements.HigherOrEqualPrice, 1)
	})

	s.Run("error: 400 Bad Request when the reservation is not confirmed", func() {
		s.mockCommands.EXPECT().Pickup(gomock.Any(), reservationID, nil).
			Return(nil, commands.ErrInvalidState).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "not ready for pickup")
	})
}

func (s *ReservationHandlerTestSuite) TestUpdateStatus() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/status"

	s.Run("success: returns 200 OK after a legal transition", func() {
		view := builder.NewReservationBuilder(time.Now()).
			WithStatus(reservation.StatusReturned).
			BuildView()
		s.mockCommands.EXPECT().
			UpdateStatus(gomock.Any(), reservationID, reservation.StatusReturned, "flat tire").
			Return(view, nil).Times(1)

		body := map[string]any{"status": "returned", "maintenance_reason": "flat tire"}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, body, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("returned", response.Status)
	})

	s.Run("error: 400 Bad Request for an unknown status value", func() {
		body := map[string]any{"status": "teleported"}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Unknown reservation status")
	})

	s.Run("error: 400 Bad Request for an illegal transition", func() {
		s.mockCommands.EXPECT().
			UpdateStatus(gomock.Any(), reservationID, reservation.StatusCompleted, "").
			Return(nil, errs.Mark(errs.New("pending cannot jump to completed"), commands.ErrInvalidTransition)).Times(1)

		body := map[string]any{"status": "completed"}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid status transition")
	})

	s.Run("error: 400 Bad Request when a return lacks the maintenance reason", func() {
		s.mockCommands.EXPECT().
			UpdateStatus(gomock.Any(), reservationID, reservation.StatusReturned, "").
			Return(nil, commands.ErrMaintenanceReasonRequired).Times(1)

		body := map[string]any{"status": "returned"}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Maintenance reason")
	})
}

func (s *ReservationHandlerTestSuite) TestUpdateAddOns() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/addons"
	body := map[string]any{
		"add_ons": []map[string]any{
			{"add_on_id": uuid.New().String(), "quantity": 1},
		},
	}

	s.Run("error: 404 Not Found for an unknown add-on", func() {
		s.mockCommands.EXPECT().UpdateAddOns(gomock.Any(), reservationID, gomock.Any()).
			Return(nil, errs.Mark(errs.New("add-on missing from catalog"), commands.ErrAddOnNotFound)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Add-on not found")
	})

	s.Run("error: 400 Bad Request for a negative quantity", func() {
		s.mockCommands.EXPECT().UpdateAddOns(gomock.Any(), reservationID, gomock.Any()).
			Return(nil, errs.Mark(errs.New("quantity below zero"), commands.ErrValidation)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid add-on quantities")
	})
}

func (s *ReservationHandlerTestSuite) TestGetReservation() {
	s.Run("success: owner reads their reservation", func() {
		view := builder.NewReservationBuilder(time.Now()).BuildView()
		view.UserID = s.userID
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 403 Forbidden when a customer reads another user's reservation", func() {
		view := builder.NewReservationBuilder(time.Now()).BuildView()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "another user")
	})

	s.Run("success: staff read any reservation", func() {
		s.role = user.RoleStaff
		defer func() { s.role = user.RoleCustomer }()

		view := builder.NewReservationBuilder(time.Now()).BuildView()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})
}

func (s *ReservationHandlerTestSuite) TestGetTotalRevenue() {
	s.Run("success: returns the revenue sum", func() {
		s.mockQueries.EXPECT().TotalRevenueCents(gomock.Any()).
			Return(int64(123400), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/total-revenue", nil, "")

		var response resdto.RevenueResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(int64(123400), response.TotalCents)
	})
}
