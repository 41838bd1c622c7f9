package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/live"
	"github.com/yeremiapane/restaurant-booking/router"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

const eventsChannel = "restaurant-booking:events"

func main() {
	utils.InitLogger()
	cfg := config.Load()
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		utils.ErrorLogger.Printf("Error seeding admin: %v", err)
	}
	if err := database.SeedTables(db); err != nil {
		utils.ErrorLogger.Printf("Error seeding tables: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Events go straight to the local hub, or through redis when several
	// instances share one dashboard feed.
	hub := live.NewHub()
	var events services.EventPublisher = hub
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			utils.ErrorLogger.Printf("Redis unavailable at %s, using local events only: %v", cfg.RedisAddr, err)
		} else {
			events = services.NewRedisPublisher(rdb, eventsChannel)
			go live.NewRelay(rdb, eventsChannel, hub).Run(ctx)
		}
	}

	var notifier services.Notifier = services.LogNotifier{}
	if cfg.SMTPHost != "" {
		notifier = services.NewSMTPNotifier(services.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	platform := services.NewBookingPlatformService(services.BookingPlatformConfig{
		BaseURL:      cfg.RemoteBaseURL,
		APIKey:       cfg.RemoteAPIKey,
		RestaurantID: cfg.RemoteRestaurantID,
		WidgetURL:    cfg.RemoteWidgetURL,
	})
	if err := platform.ValidateConfig(); err != nil {
		utils.InfoLogger.Printf("Remote booking sync disabled: %v", err)
	}

	loc := cfg.Location()
	catalog := services.NewTableCatalog(db)
	bookings := services.NewBookingService(db, services.BookingOptions{
		Remote:          platform,
		RemoteTimeout:   cfg.RemoteSyncTimeout,
		Notifier:        notifier,
		Events:          events,
		AdminRecipients: cfg.AdminRecipients,
		Location:        loc,
	})
	banquets := services.NewBanquetService(db, services.BanquetOptions{
		Sheets:          services.NewSheetWebhookClient(cfg.SheetWebhookURL, cfg.SheetAPIKey),
		SheetID:         cfg.SheetID,
		Notifier:        notifier,
		Events:          events,
		AdminRecipients: cfg.AdminRecipients,
		Location:        loc,
	})
	contacts := services.NewContactService(db, notifier, events, cfg.AdminRecipients)
	dashboard := services.NewDashboardService(db, bookings.Store(), banquets, contacts)

	completer := services.NewReservationCompleter(bookings, cfg.CompletionInterval, loc)
	if err := completer.Start(); err != nil {
		utils.ErrorLogger.Printf("Error starting reservation completer: %v", err)
	}
	defer completer.Stop()

	r := router.SetupRouter(db, router.Deps{
		Catalog:     catalog,
		Bookings:    bookings,
		Banquets:    banquets,
		Contacts:    contacts,
		Dashboard:   dashboard,
		Events:      events,
		Hub:         hub,
		CORSOrigins: cfg.CORSOrigins(),
		Location:    loc,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Printf("Error setting trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Error during shutdown: %v", err)
	}
}
