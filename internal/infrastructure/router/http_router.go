package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travel-booking-service/internal/infrastructure/auth"
	"travel-booking-service/internal/infrastructure/cache"
	"travel-booking-service/internal/interface/dto"
	"travel-booking-service/internal/interface/handler"
	"travel-booking-service/internal/interface/middleware"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// Response cache key prefixes
const (
	CacheUniversities = "universities:"
	CachePrograms     = "programs:"
	CacheOffers       = "offers:"
	CacheDeals        = "deals:"
)

// Handlers groups the HTTP handlers mounted by NewHTTPRouter
type Handlers struct {
	Health        *handler.HealthHandler
	Bookings      *handler.BookingHandler
	BookingStream *handler.BookingStreamHandler
	HotelBookings *handler.HotelBookingHandler
	Visas         *handler.VisaApplicationHandler
	Universities  *handler.UniversityHandler
	Offers        *handler.OfferHandler
	PriceAlerts   *handler.PriceAlertHandler
	Users         *handler.UserHandler
	Reference     *handler.ReferenceHandler
}

// Options configures the ambient middleware of the HTTP router
type Options struct {
	Verifier auth.Verifier
	Admins   middleware.AdminChecker
	Cache    cache.Store
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
	Logger   logger.Logger
	Mode     string
}

// NewHTTPRouter builds the gin engine serving the travel API
func NewHTTPRouter(h Handlers, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNopMetrics()
	}

	r := gin.New()
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})

	rt := &routes{h: h, opts: opts}
	api := r.Group("/api")
	rt.public(api)

	authed := api.Group("")
	authed.Use(middleware.Auth(opts.Verifier, opts.Admins, opts.Logger))
	rt.bookings(api, authed)
	rt.hotelBookings(authed)
	rt.visas(authed)
	rt.priceAlerts(authed)
	rt.users(authed)
	rt.catalogAdmin(authed)

	return r
}

type routes struct {
	h    Handlers
	opts Options
}

func (rt *routes) cached(prefix string) gin.HandlerFunc {
	if rt.opts.Cache == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.ResponseCache(rt.opts.Cache, prefix, rt.opts.CacheTTL, rt.opts.Metrics, rt.opts.Logger)
}

func (rt *routes) invalidates(prefixes ...string) gin.HandlerFunc {
	if rt.opts.Cache == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.InvalidateCache(rt.opts.Cache, rt.opts.Logger, prefixes...)
}

var (
	byID   = middleware.ValidateParams[dto.IDParam]()
	bySlug = middleware.ValidateParams[dto.SlugParam]()
	byCode = middleware.ValidateParams[dto.CodeParam]()
)

func (rt *routes) public(api *gin.RouterGroup) {
	universities := api.Group("/universities")
	{
		universities.GET("", rt.cached(CacheUniversities), middleware.ValidateQuery[dto.UniversityListQuery](), rt.h.Universities.List)
		universities.GET("/slug/:slug", bySlug, rt.h.Universities.GetBySlug)
		universities.GET("/:id", byID, rt.h.Universities.Get)
		universities.GET("/:id/programs", rt.cached(CachePrograms), byID, middleware.ValidateQuery[dto.ProgramListQuery](), rt.h.Universities.ListPrograms)
	}
	api.GET("/programs/:id", byID, rt.h.Universities.GetProgram)

	offers := api.Group("/offers")
	{
		offers.GET("", rt.cached(CacheOffers), middleware.ValidateQuery[dto.CategoryQuery](), rt.h.Offers.List)
		offers.GET("/slug/:slug", rt.cached(CacheOffers), bySlug, rt.h.Offers.GetBySlug)
		offers.GET("/:id", rt.cached(CacheOffers), byID, rt.h.Offers.Get)
	}
	deals := api.Group("/deals")
	{
		deals.GET("", rt.cached(CacheDeals), middleware.ValidateQuery[dto.CategoryQuery](), rt.h.Offers.ListDeals)
		deals.GET("/:id", rt.cached(CacheDeals), byID, rt.h.Offers.GetDeal)
	}

	reference := api.Group("/reference")
	{
		reference.GET("/airlines/:code", byCode, rt.h.Reference.GetAirline)
		reference.GET("/airports/:code", byCode, rt.h.Reference.GetAirport)
	}
}

func (rt *routes) catalogAdmin(authed *gin.RouterGroup) {
	admin := authed.Group("")
	admin.Use(middleware.RequireAdmin())

	universities := admin.Group("/universities")
	{
		universities.POST("", rt.invalidates(CacheUniversities), middleware.ValidateBody[dto.UniversityRequest](), rt.h.Universities.Create)
		universities.PATCH("/:id", rt.invalidates(CacheUniversities), byID, middleware.ValidatePartialBody[dto.UniversityRequest](), rt.h.Universities.Update)
		universities.DELETE("/:id", rt.invalidates(CacheUniversities, CachePrograms), byID, rt.h.Universities.Delete)
		universities.POST("/:id/programs", rt.invalidates(CachePrograms), byID, middleware.ValidateBody[dto.ProgramRequest](), rt.h.Universities.CreateProgram)
	}
	admin.DELETE("/programs/:id", rt.invalidates(CachePrograms), byID, rt.h.Universities.DeleteProgram)

	offers := admin.Group("/offers")
	{
		offers.POST("", rt.invalidates(CacheOffers), middleware.ValidateBody[dto.OfferRequest](), rt.h.Offers.Create)
		offers.PATCH("/:id", rt.invalidates(CacheOffers), byID, middleware.ValidatePartialBody[dto.OfferRequest](), rt.h.Offers.Update)
		offers.DELETE("/:id", rt.invalidates(CacheOffers), byID, rt.h.Offers.Delete)
	}
	deals := admin.Group("/deals")
	{
		deals.POST("", rt.invalidates(CacheDeals), middleware.ValidateBody[dto.DealRequest](), rt.h.Offers.CreateDeal)
		deals.DELETE("/:id", rt.invalidates(CacheDeals), byID, rt.h.Offers.DeleteDeal)
	}

	admin.POST("/users/:id/admin", byID, middleware.ValidateBody[dto.SetAdminRequest](), rt.h.Users.SetAdmin)
	admin.POST("/price-alerts/observations", middleware.ValidateBody[dto.PriceObservationRequest](), rt.h.PriceAlerts.RecordObservation)
}

func (rt *routes) bookings(api, authed *gin.RouterGroup) {
	// browsers cannot set headers on a WebSocket handshake
	api.GET("/bookings/stream",
		middleware.QueryTokenAuth(rt.opts.Verifier, rt.opts.Admins, rt.opts.Logger),
		middleware.ValidateQuery[dto.BookingStreamQuery](),
		rt.h.BookingStream.Stream)

	bookings := authed.Group("/bookings")
	{
		bookings.POST("", middleware.ValidateBody[dto.CreateBookingRequest](), rt.h.Bookings.Create)
		bookings.GET("", middleware.ValidateQuery[dto.BookingListQuery](), rt.h.Bookings.List)
		bookings.GET("/:id", byID, rt.h.Bookings.Get)
		bookings.POST("/:id/cancel", byID, rt.h.Bookings.Cancel)
		bookings.POST("/:id/pay", byID, middleware.ValidateBody[dto.PaymentRequest](), rt.h.Bookings.Pay)
		bookings.POST("/:id/confirm", middleware.RequireAdmin(), byID, rt.h.Bookings.Confirm)
		bookings.POST("/:id/complete", middleware.RequireAdmin(), byID, rt.h.Bookings.Complete)
		bookings.POST("/:id/refund", middleware.RequireAdmin(), byID, rt.h.Bookings.Refund)
		bookings.DELETE("/:id", middleware.RequireAdmin(), byID, rt.h.Bookings.Delete)
	}
}

func (rt *routes) hotelBookings(authed *gin.RouterGroup) {
	hotels := authed.Group("/hotel-bookings")
	{
		hotels.POST("", middleware.ValidateBody[dto.CreateHotelBookingRequest](), rt.h.HotelBookings.Create)
		hotels.GET("", middleware.ValidateQuery[dto.BookingListQuery](), rt.h.HotelBookings.List)
		hotels.GET("/:id", byID, rt.h.HotelBookings.Get)
		hotels.POST("/:id/cancel", byID, rt.h.HotelBookings.Cancel)
		hotels.POST("/:id/pay", byID, middleware.ValidateBody[dto.PaymentRequest](), rt.h.HotelBookings.Pay)
		hotels.POST("/:id/confirm", middleware.RequireAdmin(), byID, rt.h.HotelBookings.Confirm)
		hotels.POST("/:id/complete", middleware.RequireAdmin(), byID, rt.h.HotelBookings.Complete)
		hotels.POST("/:id/refund", middleware.RequireAdmin(), byID, rt.h.HotelBookings.Refund)
		hotels.DELETE("/:id", middleware.RequireAdmin(), byID, rt.h.HotelBookings.Delete)
	}
}

func (rt *routes) visas(authed *gin.RouterGroup) {
	visas := authed.Group("/visa-applications")
	{
		visas.POST("", middleware.ValidateBody[dto.VisaApplicationRequest](), rt.h.Visas.Create)
		visas.GET("", middleware.ValidateQuery[dto.VisaListQuery](), rt.h.Visas.List)
		visas.GET("/:id", byID, rt.h.Visas.Get)
		visas.PATCH("/:id", byID, middleware.ValidatePartialBody[dto.VisaApplicationRequest](), rt.h.Visas.Update)
		visas.POST("/:id/submit", byID, rt.h.Visas.Submit)
		visas.POST("/:id/withdraw", byID, rt.h.Visas.Withdraw)
		visas.POST("/:id/documents/upload-url", byID, middleware.ValidateBody[dto.UploadURLRequest](), rt.h.Visas.UploadURL)
		visas.POST("/:id/review", middleware.RequireAdmin(), byID, rt.h.Visas.StartReview)
		visas.POST("/:id/approve", middleware.RequireAdmin(), byID, rt.h.Visas.Approve)
		visas.POST("/:id/reject", middleware.RequireAdmin(), byID, rt.h.Visas.Reject)
	}
}

func (rt *routes) priceAlerts(authed *gin.RouterGroup) {
	alerts := authed.Group("/price-alerts")
	{
		alerts.POST("", middleware.ValidateBody[dto.PriceAlertRequest](), rt.h.PriceAlerts.Create)
		alerts.GET("", rt.h.PriceAlerts.List)
		alerts.POST("/:id/pause", byID, rt.h.PriceAlerts.Pause)
		alerts.POST("/:id/resume", byID, rt.h.PriceAlerts.Resume)
		alerts.DELETE("/:id", byID, rt.h.PriceAlerts.Delete)
	}
}

func (rt *routes) users(authed *gin.RouterGroup) {
	me := authed.Group("/users/me")
	{
		me.GET("", rt.h.Users.Me)
		me.PUT("", middleware.ValidatePartialBody[dto.ProfileRequest](), rt.h.Users.UpsertMe)
		me.GET("/preferences", rt.h.Users.GetPreferences)
		me.PATCH("/preferences", middleware.ValidatePartialBody[dto.PreferencesRequest](), rt.h.Users.UpdatePreferences)
		me.POST("/push-subscriptions", middleware.ValidateBody[dto.PushSubscriptionRequest](), rt.h.Users.AddPushSubscription)
		me.GET("/push-subscriptions", rt.h.Users.ListPushSubscriptions)
		me.DELETE("/push-subscriptions/:id", byID, rt.h.Users.RemovePushSubscription)
	}
}
