package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/infrastructure/auth"
	"travel-booking-service/internal/infrastructure/cache"
	"travel-booking-service/internal/interface/handler"
	"travel-booking-service/internal/interface/middleware"
	storage "travel-booking-service/internal/interface/repository"
	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine   *gin.Engine
	store    *storage.MemoryDocumentStore
	cache    *cache.MemoryCache
	jwt      *auth.JWTVerifier
	bookings *usecase.BookingService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNopLogger()
	m := metrics.NewNopMetrics()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(storage.ReferenceModels()...))
	airlines := storage.NewGormAirlineRepository(db)
	airports := storage.NewGormAirportRepository(db)
	ctx := context.Background()
	require.NoError(t, airlines.Upsert(ctx, &entity.Airline{Code: "GA", Name: "Garuda Indonesia", Country: "ID", Active: true}))
	for _, code := range []string{"CGK", "DPS"} {
		require.NoError(t, airports.Upsert(ctx, &entity.Airport{Code: code, Name: code + " Airport", CityCode: code, CityName: code, Country: "ID"}))
	}

	store := storage.NewMemoryDocumentStore()
	responses := cache.NewMemoryCache()
	verifier := auth.NewJWTVerifier("test-secret", "travel-test")

	users := usecase.NewUserService(store, log, m)
	universities := usecase.NewUniversityService(store, log, m)
	bookings := usecase.NewBookingService(store, usecase.ReferenceCatalog{Airlines: airlines, Airports: airports}, nil, log, m)

	h := Handlers{
		Health:        handler.NewHealthHandler("travel-booking-service", map[string]handler.Pinger{"store": store, "redis": nil}),
		Bookings:      handler.NewBookingHandler(bookings, log),
		BookingStream: handler.NewBookingStreamHandler(bookings, nil, log),
		HotelBookings: handler.NewHotelBookingHandler(usecase.NewHotelBookingService(store, nil, log, m), log),
		Visas:         handler.NewVisaApplicationHandler(usecase.NewVisaApplicationService(store, nil, universities, nil, log, m), log),
		Universities:  handler.NewUniversityHandler(universities, log),
		Offers:        handler.NewOfferHandler(usecase.NewOfferService(store, log, m), log),
		PriceAlerts:   handler.NewPriceAlertHandler(usecase.NewPriceAlertService(store, nil, log, m), log),
		Users:         handler.NewUserHandler(users, log),
		Reference:     handler.NewReferenceHandler(airlines, airports, log),
	}
	engine := NewHTTPRouter(h, Options{
		Verifier: verifier,
		Admins:   users,
		Cache:    responses,
		CacheTTL: time.Minute,
		Metrics:  m,
		Logger:   log,
	})

	return &testServer{engine: engine, store: store, cache: responses, jwt: verifier, bookings: bookings}
}

func (s *testServer) token(t *testing.T, userID string, admin bool) string {
	t.Helper()
	tok, err := s.jwt.Issue(auth.Identity{UserID: userID, Email: userID + "@example.com", Admin: admin}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	HasMore    bool            `json:"hasMore"`
	NextCursor *string         `json:"nextCursor"`
	Details    []struct {
		Field string `json:"field"`
		Code  string `json:"code"`
	} `json:"details"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type bookingView struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

func bookingBody(price float64) string {
	return fmt.Sprintf(`{
		"email": "ana@example.com",
		"flight": {"airlineCode":"ga","flightNumber":"GA410","origin":"cgk","destination":"dps",
			"departureDate":"2025-08-01","cabinClass":"economy"},
		"passengers": [{"firstName":"Ana","lastName":"Lee","type":"adult"}],
		"totalPrice": %v
	}`, price)
}

func createBooking(t *testing.T, s *testServer, token string) bookingView {
	t.Helper()
	w := s.do(http.MethodPost, "/api/bookings", token, bookingBody(180))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b bookingView
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &b))
	return b
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"not configured"`)

	s.store.SetUnavailable(true)
	w = s.do(http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not ready")
}

func TestRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/bookings", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decode(t, w).Success)

	w = s.do(http.MethodGet, "/api/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	ana := s.token(t, "ana", false)
	bob := s.token(t, "bob", false)
	admin := s.token(t, "root", true)

	created := createBooking(t, s, ana)
	assert.Equal(t, "ana", created.UserID)
	assert.Equal(t, entity.BookingStatusPending, created.Status)
	assert.Equal(t, entity.PaymentStatusPending, created.PaymentStatus)

	w := s.do(http.MethodGet, "/api/bookings/"+created.ID, bob, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/bookings/"+created.ID+"/pay", ana,
		`{"transactionReference":"TX-1","paymentMethod":"card"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid bookingView
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &paid))
	assert.Equal(t, entity.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, entity.BookingStatusConfirmed, paid.Status)

	w = s.do(http.MethodPost, "/api/bookings/"+created.ID+"/complete", ana, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/bookings/"+created.ID+"/complete", admin, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/bookings/"+created.ID+"/cancel", ana, `{"reason":"changed plans"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/bookings/missing-id", ana, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)

	w = s.do(http.MethodDelete, "/api/bookings/"+created.ID, admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/bookings/"+created.ID, ana, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBooking_ValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	ana := s.token(t, "ana", false)

	body := strings.Replace(bookingBody(0), `"email": "ana@example.com",`, "", 1)
	w := s.do(http.MethodPost, "/api/bookings", ana, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.Len(t, env.Details, 2)
	got := []string{env.Details[0].Field, env.Details[1].Field}
	assert.ElementsMatch(t, []string{"email", "totalPrice"}, got)

	unknownAirline := strings.Replace(bookingBody(100), `"airlineCode":"ga"`, `"airlineCode":"ZZ"`, 1)
	w = s.do(http.MethodPost, "/api/bookings", ana, unknownAirline)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env = decode(t, w)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "flight.airlineCode", env.Details[0].Field)
}

func TestListBookings_Pagination(t *testing.T) {
	s := newTestServer(t)
	ana := s.token(t, "ana", false)
	for i := 0; i < 5; i++ {
		createBooking(t, s, ana)
	}
	createBooking(t, s, s.token(t, "bob", false))

	seen := map[string]bool{}
	path := "/api/bookings?limit=2"
	pages := 0
	for {
		w := s.do(http.MethodGet, path, ana, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		env := decode(t, w)
		var items []bookingView
		require.NoError(t, json.Unmarshal(env.Data, &items))
		for _, b := range items {
			assert.Equal(t, "ana", b.UserID)
			assert.False(t, seen[b.ID], "duplicate %s", b.ID)
			seen[b.ID] = true
		}
		pages++
		if !env.HasMore {
			assert.Nil(t, env.NextCursor)
			break
		}
		require.NotNil(t, env.NextCursor)
		path = "/api/bookings?limit=2&cursor=" + *env.NextCursor
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)

	w := s.do(http.MethodGet, "/api/bookings?cursor=!!!", ana, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/bookings?userId=bob", s.token(t, "root", true), "")
	require.Equal(t, http.StatusOK, w.Code)
	var bobs []bookingView
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &bobs))
	require.Len(t, bobs, 1)
	assert.Equal(t, "bob", bobs[0].UserID)
}

func TestStoreUnavailable(t *testing.T) {
	s := newTestServer(t)
	ana := s.token(t, "ana", false)
	s.store.SetUnavailable(true)

	w := s.do(http.MethodGet, "/api/bookings", ana, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Service temporarily unavailable", decode(t, w).Error)
}

func TestUniversities_CachedAndInvalidated(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "root", true)
	user := s.token(t, "ana", false)

	w := s.do(http.MethodGet, "/api/universities", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(middleware.CacheHeader))
	w = s.do(http.MethodGet, "/api/universities", "", "")
	assert.Equal(t, "HIT", w.Header().Get(middleware.CacheHeader))

	body := `{"name":"Universitas Indonesia","slug":"UI","country":"id","city":"Depok"}`
	w = s.do(http.MethodPost, "/api/universities", user, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/universities", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID      string `json:"id"`
		Slug    string `json:"slug"`
		Country string `json:"country"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "ui", created.Slug)
	assert.Equal(t, "ID", created.Country)

	w = s.do(http.MethodGet, "/api/universities", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(middleware.CacheHeader))
	assert.Contains(t, w.Body.String(), "Universitas Indonesia")

	w = s.do(http.MethodGet, "/api/universities/slug/ui", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, "/api/universities/"+created.ID, admin, `{"city":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/universities/"+created.ID, admin, `{"city":"Jakarta"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"city":"Jakarta"`)
}

func TestReferenceRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/reference/airports/cgk", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"code":"CGK"`)

	w = s.do(http.MethodGet, "/api/reference/airlines/ZZ", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/reference/airlines/TOOLONG", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingStream(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/bookings/stream?token=" + s.token(t, "ana", false)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() handler.StreamMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg handler.StreamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	initial := read()
	assert.Equal(t, handler.StreamSnapshot, initial.Type)
	assert.Empty(t, initial.Bookings)

	createBooking(t, s, s.token(t, "ana", false))
	next := read()
	require.Len(t, next.Bookings, 1)
	assert.Equal(t, "ana", next.Bookings[0].UserID)

	w := s.do(http.MethodGet, "/api/bookings/stream?status=lost&token="+s.token(t, "ana", false), "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "status", env.Details[0].Field)
	assert.Equal(t, "oneof", env.Details[0].Code)

	w = s.do(http.MethodGet, "/api/bookings/stream?status=lost", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
