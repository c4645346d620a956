package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata" // Load timezone data

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/stayextras/upsell-service/internal/app"
	"github.com/stayextras/upsell-service/internal/config"
	"github.com/stayextras/upsell-service/internal/constants"
	"github.com/stayextras/upsell-service/internal/controllers"
	"github.com/stayextras/upsell-service/internal/hospitable"
	"github.com/stayextras/upsell-service/internal/middleware"
	"github.com/stayextras/upsell-service/internal/payments"
	"github.com/stayextras/upsell-service/internal/repositories"
	"github.com/stayextras/upsell-service/internal/routes"
	"github.com/stayextras/upsell-service/internal/services"
	"github.com/stayextras/upsell-service/internal/utils"
)

const appName = "upsell-service"

func main() {
	utils.InitLogger(appName)
	cfg := config.LoadConfig(appName)

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize the application:", err)
	}
	defer application.Close()

	// Repositories
	profileRepo := repositories.NewProfileRepository(application.DB)
	propertyRepo := repositories.NewPropertyRepository(application.DB)
	serviceRepo := repositories.NewServiceRepository(application.DB)
	savedServiceRepo := repositories.NewSavedServiceRepository(application.DB)
	orderRepo := repositories.NewOrderRepository(application.DB)
	hospitableConnRepo := repositories.NewHospitableConnectionRepository(application.DB)

	if cfg.SeedDemoData {
		if err := app.SeedDemoData(profileRepo, propertyRepo, serviceRepo); err != nil {
			utils.Logger.Fatal("Failed to seed demo data:", err)
		}
	}

	// Services
	payClient := payments.New(cfg.StripeSecretKey)
	hospitableClient, err := hospitable.NewClient(cfg.HospitableBaseURL, 3, time.Second)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize Hospitable client:", err)
	}

	notifier := services.NewEmailNotifier(cfg)
	profileService := services.NewProfileService(profileRepo)
	propertyService := services.NewPropertyService(cfg, propertyRepo)
	catalogService := services.NewCatalogService(serviceRepo, savedServiceRepo, propertyRepo)
	storefrontService := services.NewStorefrontService(propertyRepo, serviceRepo)
	hostStripeService := services.NewHostStripeService(cfg, profileRepo, payClient)
	checkoutService := services.NewCheckoutService(cfg, orderRepo, propertyRepo, profileRepo, serviceRepo, payClient, notifier)
	analyticsService := services.NewAnalyticsService(profileRepo, payClient)
	hospitableService := services.NewHospitableService(cfg, hospitableClient, hospitableConnRepo, propertyRepo)
	stripeWebhookCheckService := services.NewStripeWebhookCheckService()

	activationPoller := services.NewActivationPoller(hostStripeService)
	defer activationPoller.Shutdown()

	// Controllers
	healthController := controllers.NewHealthController()
	profileController := controllers.NewProfileController(profileService)
	propertyController := controllers.NewPropertyController(propertyService)
	catalogController := controllers.NewCatalogController(catalogService)
	orderController := controllers.NewOrderController(checkoutService)
	storefrontController := controllers.NewStorefrontController(storefrontService, checkoutService)
	hostStripeController := controllers.NewHostStripeController(hostStripeService, activationPoller, analyticsService)
	hospitableController := controllers.NewHospitableController(hospitableService)
	stripeWebhookController := controllers.NewStripeWebhookController(
		cfg.StripeWebhookSecret,
		cfg.StripeConnectWebhookSecret,
		hostStripeService,
		checkoutService,
		stripeWebhookCheckService,
	)

	// Sweep stale manual-capture authorizations before Stripe expires them.
	c := cron.New()
	_, schErr := c.AddFunc(constants.OrderSweepCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.OrderSweepTimeout)
		defer cancel()
		if err := checkoutService.SweepExpiredAuthorizations(ctx); err != nil {
			utils.Logger.WithError(err).Error("Scheduled order sweep failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule order sweep job")
	}
	c.Start()
	defer c.Stop()

	// Router
	router := mux.NewRouter()

	// Health
	router.HandleFunc(routes.Health, healthController.HealthHandler).Methods(http.MethodGet)

	// Public guest storefront
	router.HandleFunc(routes.GuestProperty, storefrontController.GetPropertyHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.GuestCheckout, storefrontController.CreateCheckoutHandler).Methods(http.MethodPost)

	// Stripe webhook routes
	router.HandleFunc(routes.StripeWebhook, stripeWebhookController.WebhookHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.StripeWebhookCheck, stripeWebhookController.WebhookCheckHandler).Methods(http.MethodGet)

	// Protected routes (JWT middleware)
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.HostProfile, profileController.GetProfileHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.HostProfile, profileController.PatchProfileHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.HostProperties, propertyController.ListPropertiesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.HostProperties, propertyController.CreatePropertyHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostProperty, propertyController.PatchPropertyHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.HostPropertyServices, catalogController.ListServicesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.HostPropertyServices, catalogController.CreateServiceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostService, catalogController.PatchServiceHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.HostService, catalogController.DeleteServiceHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.HostSavedServices, catalogController.ListSavedServicesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.HostSavedServices, catalogController.CreateSavedServiceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostSavedService, catalogController.DeleteSavedServiceHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.HostOrders, orderController.ListOrdersHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.HostOrderApprove, orderController.ApproveOrderHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostOrderReject, orderController.RejectOrderHandler).Methods(http.MethodPost)

	// Host Stripe
	secured.HandleFunc(routes.HostStripeConnectFlowURL, hostStripeController.ConnectFlowHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostStripeConnectFlowStatus, hostStripeController.ConnectStatusHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.HostStripeSync, hostStripeController.SyncHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostStripePollStart, hostStripeController.StartPollHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostStripePollStart, hostStripeController.PollStatusHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.HostStripePollCancel, hostStripeController.CancelPollHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostStripeReset, hostStripeController.ResetHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostStripeAnalytics, hostStripeController.AnalyticsHandler).Methods(http.MethodGet)

	// Hospitable sync
	secured.HandleFunc(routes.HostHospitableConnect, hospitableController.ConnectHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.HostHospitableConnect, hospitableController.DisconnectHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.HostHospitableSync, hospitableController.SyncHandler).Methods(http.MethodPost)

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	// CORS config
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "ngrok-skip-browser-warning"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: co.Handler(router),
	}

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("Failed to start server:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Error("Server shutdown failed")
	}
}
