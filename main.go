package main

import (
	"log"

	"github.com/eventhub/booking-platform/config"
	"github.com/eventhub/booking-platform/internal/gateway"
	"github.com/eventhub/booking-platform/internal/handler"
	"github.com/eventhub/booking-platform/internal/middleware"
	"github.com/eventhub/booking-platform/internal/repository"
	"github.com/eventhub/booking-platform/internal/service"
	"github.com/eventhub/booking-platform/pkg/database"
	"github.com/eventhub/booking-platform/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RABBITMQ_URL not set, lifecycle publishing disabled")
	}

	gw, err := gateway.New(cfg.PaymentGateway, &gateway.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.Currency,
	})
	if err != nil {
		log.Fatalf("failed to configure payment gateway: %v", err)
	}
	log.Printf("payment gateway: %s", gw.Name())

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Services
	eventSvc := service.NewEventService(eventRepo, publisher)
	bookingSvc := service.NewBookingService(bookingRepo, eventRepo, publisher)
	paymentSvc := service.NewPaymentService(paymentRepo, bookingRepo, eventRepo, bookingSvc, gw, publisher)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-platform"})
	})

	handler.NewEventHandler(eventSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(e)

	log.Printf("Booking Platform starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
