package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/controllers"
	"github.com/yeremiapane/restaurant-booking/live"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"gorm.io/gorm"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Catalog     *services.TableCatalog
	Bookings    *services.BookingService
	Banquets    *services.BanquetService
	Contacts    *services.ContactService
	Dashboard   *services.DashboardService
	Events      services.EventPublisher
	Hub         *live.Hub
	CORSOrigins []string
	Location    *time.Location
}

func SetupRouter(db *gorm.DB, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(deps.Catalog, deps.Events)
	reservationCtrl := controllers.NewReservationController(deps.Bookings)
	banquetCtrl := controllers.NewBanquetController(deps.Banquets)
	contactCtrl := controllers.NewContactController(deps.Contacts)
	dashboardCtrl := controllers.NewDashboardController(deps.Dashboard, deps.Location)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Public endpoints. Writes are rate limited per client IP.
	strict := middlewares.NewStrictRateLimiter().RateLimit()
	public := r.Group("/")
	{
		public.POST("/login", strict, userCtrl.Login)

		public.GET("/booking/widget", reservationCtrl.BookingWidget)
		public.GET("/tables", tableCtrl.GetActiveTables)
		public.POST("/reservations/availability", reservationCtrl.CheckAvailability)
		public.POST("/reservations", strict, reservationCtrl.CreateReservation)
		public.POST("/banquets", strict, banquetCtrl.CreateBanquet)
		public.POST("/contact", strict, contactCtrl.SubmitMessage)
	}

	staffRoles := middlewares.RequireRoles(models.RoleAdmin, models.RoleManager)

	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(db), staffRoles)
	{
		auth.GET("/profile", userCtrl.GetProfile)
		auth.GET("/dashboard/stats", dashboardCtrl.GetStats)

		auth.GET("/tables", tableCtrl.GetAllTables)
		auth.POST("/tables", tableCtrl.CreateTable)
		auth.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
		auth.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		auth.GET("/reservations", reservationCtrl.ListReservations)
		auth.GET("/reservations/:reservation_id", reservationCtrl.GetReservation)
		auth.PATCH("/reservations/:reservation_id", reservationCtrl.UpdateReservation)
		auth.PATCH("/reservations/:reservation_id/status", reservationCtrl.UpdateReservationStatus)
		auth.POST("/reservations/:reservation_id/cancel", reservationCtrl.CancelReservation)
		auth.DELETE("/reservations/:reservation_id", reservationCtrl.DeleteReservation)

		auth.GET("/banquets", banquetCtrl.ListBanquets)
		auth.GET("/banquets/:banquet_id", banquetCtrl.GetBanquet)
		auth.PATCH("/banquets/:banquet_id/status", banquetCtrl.UpdateBanquetStatus)
		auth.DELETE("/banquets/:banquet_id", banquetCtrl.DeleteBanquet)

		auth.GET("/messages", contactCtrl.ListMessages)
		auth.PATCH("/messages/:message_id/read", contactCtrl.MarkRead)
		auth.DELETE("/messages/:message_id", contactCtrl.DeleteMessage)
	}

	if deps.Hub != nil {
		liveCtrl := controllers.NewLiveController(deps.Hub, deps.CORSOrigins)
		ws := r.Group("/admin/live")
		ws.Use(middlewares.WebSocketAuthMiddleware(db), staffRoles)
		ws.GET("", liveCtrl.Connect)
	}

	return r
}
