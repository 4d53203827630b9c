//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/user"
	"condo-booking/internal/handler/api"
	resdto "condo-booking/internal/handler/dto/response"
	"condo-booking/internal/handler/middleware"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/commands"
	"condo-booking/internal/usecase/queries"
	"condo-booking/internal/usecase/shared"
	"condo-booking/tests/common/builder"
	"condo-booking/tests/common/httptest"
	"condo-booking/tests/common/testutil"
	commandsmock "condo-booking/tests/mock/commands"
	queriesmock "condo-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockAdmission *commandsmock.MockAdmissionCommands
	mockStatus    *commandsmock.MockReservationStatusCommands
	mockQueries   *queriesmock.MockReservationQueries
	handler       *api.ReservationHandler
	actor         user.Actor
}

// fakeAuth authenticates any bearer token as actor.
func fakeAuth(actor *user.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHORIZED", "message": "Unauthorized"}})
			return
		}
		middleware.SetActor(c, *actor)
		c.Next()
	}
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler())

	s.mockCtrl = gomock.NewController(s.T())
	s.mockAdmission = commandsmock.NewMockAdmissionCommands(s.mockCtrl)
	s.mockStatus = commandsmock.NewMockReservationStatusCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockAdmission, s.mockStatus, s.mockQueries)

	unitID := uuid.New()
	s.actor = user.NewActor(uuid.New(), user.RoleResident, &unitID)

	g := s.router.Group("/api/reservations", fakeAuth(&s.actor))
	g.POST("", s.handler.Admit)
	g.GET("", s.handler.ListMine)
	g.GET("/protocol/:protocol", s.handler.GetByProtocol)
	g.GET("/:id", s.handler.Get)
	g.GET("/:id/timeline", s.handler.Timeline)
	g.POST("/:id/cancel", s.handler.Cancel)
	g.POST("/:id/confirm", s.handler.Confirm)
	g.POST("/:id/use", s.handler.MarkUsed)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

type testCaseReservation struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestAdmit
// ================================================================================

func (s *ReservationHandlerTestSuite) TestAdmit() {
	url := "/api/reservations"
	b := builder.NewReservationBuilder()
	reqBody := b.BuildRequestDTO()
	view := b.BuildView(testNow)

	s.Run("success: returns 201 Created with Location", func() {
		s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ any, in commands.AdmitInput, _ *uuid.UUID) (*commands.AdmitResult, error) {
				s.Equal(s.actor, in.Actor)
				s.Equal(b.AreaID, in.AreaID)
				s.Equal(b.Slot, in.Slot)
				s.Equal(b.Date, in.Date)
				return &commands.AdmitResult{Reservation: view}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(view.ID, body.ID)
		s.Equal(view.Protocol, body.Protocol)
		s.Equal("pendente", body.Status)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/reservations/" + view.ID.String()})
	})

	s.Run("success: replay returns 200 with replay header", func() {
		key := uuid.New()
		s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any(), &key).
			Return(&commands.AdmitResult{Reservation: view, IsReplayed: true}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token",
			map[string]string{middleware.HeaderIdempotencyKey: key.String()})

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		httptest.AssertHeaders(s.T(), rec, map[string]string{middleware.HeaderIdempotentReplayed: "true"})
	})

	s.Run("error: 400 on malformed Idempotency-Key", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token",
			map[string]string{middleware.HeaderIdempotencyKey: "not-a-uuid"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "INVALID_REQUEST", "Idempotency-Key")
	})

	s.Run("error: 400 INVALID_REQUEST on validation errors", func() {
		cases := []testCaseReservation{
			{name: "missing area_id", mutate: testutil.Field("area_id", nil), expectCode: http.StatusBadRequest},
			{name: "missing date", mutate: testutil.Field("date", nil), expectCode: http.StatusBadRequest},
			{name: "missing start", mutate: testutil.Field("start", nil), expectCode: http.StatusBadRequest},
			{name: "malformed date", mutate: testutil.Field("date", "10/03/2026"), expectCode: http.StatusBadRequest},
			{name: "end before start", mutate: testutil.Field("end", "09:00"), expectCode: http.StatusBadRequest},
			{name: "negative guests", mutate: testutil.Field("guests", -1), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "INVALID_REQUEST", "")
			})
		}
	})

	s.Run("error: 401 without token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "UNAUTHORIZED", "")
	})

	s.Run("error: rule rejections map onto the taxonomy", func() {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"slot taken", errs.Mark(errs.New("taken"), reservation.ErrSlotUnavailable), http.StatusBadRequest, "SLOT_UNAVAILABLE"},
			{"window", area.ErrOutsideBookingWindow, http.StatusBadRequest, "OUTSIDE_BOOKING_WINDOW"},
			{"terms", area.ErrTermsNotAccepted, http.StatusBadRequest, "TERMS_NOT_ACCEPTED"},
			{"capacity", area.ErrCapacityExceeded, http.StatusBadRequest, "CAPACITY_EXCEEDED"},
			{"key reused", commands.ErrIdempotencyKeyReused, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED"},
			{"area missing", errs.Mark(errs.New("no rows"), shared.ErrAreaNotFound), http.StatusNotFound, "AREA_NOT_FOUND"},
			{"on behalf by resident", shared.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
			{"database down", errs.New("connection refused"), http.StatusInternalServerError, "INTERNAL"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.code, "")
			})
		}
	})

	s.Run("error: quota detail is exposed", func() {
		exceeded := &quota.ExceededError{Dimension: quota.DimensionMonth, Scope: quota.ScopeUnit, Limit: 2, Current: 2}
		s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Wrap(exceeded, "admit")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		body := httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "QUOTA_EXCEEDED", "")
		s.Equal(string(quota.DimensionMonth), body.Detail["dimension"])
		s.Equal(string(quota.ScopeUnit), body.Detail["scope"])
		s.EqualValues(2, body.Detail["limit"])
		s.EqualValues(2, body.Detail["current"])
	})
}

// ================================================================================
// TestTransitions
// ================================================================================

func (s *ReservationHandlerTestSuite) TestCancel() {
	view := builder.NewReservationBuilder().BuildView(testNow)
	url := "/api/reservations/" + view.ID.String() + "/cancel"

	s.Run("success: note is trimmed and passed through", func() {
		s.mockStatus.EXPECT().Cancel(gomock.Any(), view.ID, s.actor, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, _ user.Actor, note *string) (*queries.ReservationView, error) {
				s.Require().NotNil(note)
				s.Equal("viagem", *note)
				cancelled := *view
				cancelled.Status = "cancelada"
				return &cancelled, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"note": "  viagem "}, "bearer-token")

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("cancelada", body.Status)
	})

	s.Run("success: body is optional", func() {
		s.mockStatus.EXPECT().Cancel(gomock.Any(), view.ID, s.actor, gomock.Nil()).Return(view, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 CANCELLATION_TOO_LATE", func() {
		s.mockStatus.EXPECT().Cancel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, area.ErrCancellationTooLate).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "CANCELLATION_TOO_LATE", "")
	})

	s.Run("error: 409 INVALID_TRANSITION on repeated cancel", func() {
		s.mockStatus.EXPECT().Cancel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, reservation.ErrInvalidTransition).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "INVALID_TRANSITION", "")
	})

	s.Run("error: 400 on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations/abc/cancel", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "INVALID_REQUEST", "Invalid id")
	})
}

func (s *ReservationHandlerTestSuite) TestConfirmAndUse() {
	view := builder.NewReservationBuilder().BuildView(testNow)

	s.Run("confirm", func() {
		s.mockStatus.EXPECT().Confirm(gomock.Any(), view.ID, s.actor).Return(view, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations/"+view.ID.String()+"/confirm", nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("use not allowed from pending", func() {
		s.mockStatus.EXPECT().MarkUsed(gomock.Any(), view.ID, s.actor).Return(nil, reservation.ErrInvalidTransition).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations/"+view.ID.String()+"/use", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "INVALID_TRANSITION", "")
	})
}

// ================================================================================
// TestReads
// ================================================================================

func (s *ReservationHandlerTestSuite) TestGet() {
	view := builder.NewReservationBuilder().BuildView(testNow)

	s.Run("success", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.actor, view.ID).Return(view, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+view.ID.String(), nil, "bearer-token")

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.AreaName, body.AreaName)
	})

	s.Run("error: 404", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errs.New("no rows"), shared.ErrReservationNotFound)).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+uuid.NewString(), nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "RESERVATION_NOT_FOUND", "")
	})

	s.Run("by protocol is case-insensitive", func() {
		s.mockQueries.EXPECT().GetByProtocol(gomock.Any(), s.actor, reservation.Protocol("7K3M9QX2PA")).Return(view, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/protocol/7k3m9qx2pa", nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: malformed protocol", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/protocol/SHORT", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "INVALID_REQUEST", "protocol")
	})
}

func (s *ReservationHandlerTestSuite) TestListMine() {
	view := builder.NewReservationBuilder().BuildView(testNow)

	s.Run("success: filters and cursor", func() {
		s.mockQueries.EXPECT().ListMine(gomock.Any(), s.actor, gomock.Any()).
			DoAndReturn(func(_ any, _ user.Actor, f queries.ListFilter) ([]*queries.ReservationView, *queries.Cursor, error) {
				s.Require().NotNil(f.From)
				s.Equal(builder.MustDate("2026-03-01"), *f.From)
				s.Nil(f.To)
				s.Equal(10, f.Limit)
				return []*queries.ReservationView{view}, &queries.Cursor{After: "next"}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations?from=2026-03-01&limit=10", nil, "bearer-token")

		var body resdto.ReservationListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 1)
		s.Equal(view.ID, body.Items[0].ID)
		s.Require().NotNil(body.NextCursor)
		s.Equal("next", *body.NextCursor)
	})

	s.Run("error: invalid cursor", func() {
		s.mockQueries.EXPECT().ListMine(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil, errs.Mark(errs.New("bad base64"), queries.ErrInvalidCursor)).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations?after=zzz", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "INVALID_REQUEST", "cursor")
	})

	s.Run("error: malformed date", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations?to=amanha", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "INVALID_REQUEST", "")
	})
}

func (s *ReservationHandlerTestSuite) TestTimeline() {
	id := uuid.New()
	actorID := s.actor.ID

	s.mockQueries.EXPECT().Timeline(gomock.Any(), s.actor, id).Return([]queries.TimelineEventView{
		{ID: uuid.New(), Action: "criada", ActorID: &actorID, OccurredAt: testNow},
		{ID: uuid.New(), Action: "cancelada", ActorID: &actorID, OccurredAt: testNow.Add(time.Hour)},
	}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+id.String()+"/timeline", nil, "bearer-token")

	var body []resdto.TimelineEventResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Require().Len(body, 2)
	s.Equal("criada", body[0].Action)
	s.Equal("cancelada", body[1].Action)
}
