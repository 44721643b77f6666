package main

import (
	"context"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/NdoloMwende/Homehub-Backend/internal/app"
	"github.com/NdoloMwende/Homehub-Backend/internal/config"
	"github.com/NdoloMwende/Homehub-Backend/internal/constants"
	"github.com/NdoloMwende/Homehub-Backend/internal/controllers"
	"github.com/NdoloMwende/Homehub-Backend/internal/messaging"
	"github.com/NdoloMwende/Homehub-Backend/internal/middleware"
	"github.com/NdoloMwende/Homehub-Backend/internal/outbox"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/routes"
	"github.com/NdoloMwende/Homehub-Backend/internal/services"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

func main() {
	utils.InitLogger("homehub-backend")
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize backend:", err)
	}
	defer application.Close()

	store := repositories.NewPgxStore(application.DB)

	occupancy := services.NewOccupancyTracker()
	leaseService := services.NewLeaseService(store, occupancy, cfg.AutoProvisionUnits)
	invoiceService := services.NewInvoiceService(store)
	reconciliationService := services.NewReconciliationService(store)
	userService := services.NewUserService(store)
	propertyService := services.NewPropertyService(store, occupancy)
	notificationService := services.NewNotificationService(store)

	broker, err := messaging.NewRabbitMQBroker(cfg.AmqpURL, constants.NotificationQueueName)
	if err != nil {
		utils.Logger.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer broker.Close()

	relay := outbox.NewRelay(store, broker)
	relayCtx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	go func() {
		if err := relay.Start(relayCtx); err != nil && relayCtx.Err() == nil {
			utils.Logger.WithError(err).Error("Outbox relay stopped")
		}
	}()

	leasesController := controllers.NewLeasesController(leaseService)
	invoicesController := controllers.NewInvoicesController(invoiceService)
	paymentsController := controllers.NewPaymentsController(reconciliationService)
	usersController := controllers.NewUsersController(userService)
	propertiesController := controllers.NewPropertiesController(propertyService)
	notificationsController := controllers.NewNotificationsController(notificationService)
	healthController := controllers.NewHealthController(application)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc(routes.UsersRegister, usersController.RegisterHandler).Methods(http.MethodPost)

	// Gateway-facing; authenticity rests on the unique receipt number, the
	// gateway does not carry our JWTs.
	router.HandleFunc(routes.PaymentsCallback, paymentsController.StkCallbackHandler).Methods(http.MethodPost)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.UsersBase, usersController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UsersVerify, usersController.VerifyHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.PropertiesBase, propertiesController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PropertiesBase, propertiesController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PropertyReview, propertiesController.ReviewHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PropertyUnits, propertiesController.AddUnitHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PropertyUnits, propertiesController.ListUnitsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitByID, propertiesController.UpdateUnitHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.UnitMaintenance, propertiesController.SetUnitMaintenanceHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.LeaseApply, leasesController.ApplyHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LeaseDecision, leasesController.DecideHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LeaseTerminate, leasesController.TerminateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LeasesBase, leasesController.ListHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.InvoicesBase, invoicesController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.InvoicesBase, invoicesController.ListHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.PaymentsBase, paymentsController.ListHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.NotificationsBase, notificationsController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NotificationMarkRead, notificationsController.MarkReadHandler).Methods(http.MethodPost)

	c := cron.New()
	_, overdueErr := c.AddFunc("10 0 * * *", func() {
		if n, e := invoiceService.SweepOverdue(context.Background(), time.Now()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled overdue sweep failed")
		} else if n > 0 {
			utils.Logger.Infof("Marked %d invoices overdue", n)
		}
	})
	if overdueErr != nil {
		utils.Logger.WithError(overdueErr).Fatal("Failed to schedule overdue sweep cron")
	}
	_, expireErr := c.AddFunc("20 0 * * *", func() {
		if n, e := leaseService.ExpireLeases(context.Background(), time.Now()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled lease expiry failed")
		} else if n > 0 {
			utils.Logger.Infof("Expired %d leases", n)
		}
	})
	if expireErr != nil {
		utils.Logger.WithError(expireErr).Fatal("Failed to schedule lease expiry cron")
	}
	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Backend failed to start:", err)
	}
}
