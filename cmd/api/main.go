package main

import (
	"context"
	"errors"
	"gestaoacoes/cmd/internal/config"
	"gestaoacoes/cmd/internal/domain/database"
	"gestaoacoes/cmd/internal/domain/database/repository"
	"gestaoacoes/cmd/internal/domain/policy"
	"gestaoacoes/cmd/internal/http/handler"
	authmw "gestaoacoes/cmd/internal/http/middleware"
	cognitoclient "gestaoacoes/cmd/internal/infrastructure/aws/cognito"
	"gestaoacoes/cmd/internal/infrastructure/aws/storage"
	"gestaoacoes/cmd/internal/infrastructure/aws/websocket"
	"gestaoacoes/cmd/internal/infrastructure/minhareceita"
	"gestaoacoes/cmd/internal/infrastructure/webhook"
	"gestaoacoes/cmd/internal/service"
	"gestaoacoes/cmd/internal/service/jobs"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/uid"
	"gestaoacoes/cmd/internal/utils/validators"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	uid.Init(cfg.MachineID)
	validate := validators.New()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// Optional AWS integrations
	var cogClient cognitoclient.CognitoInterface
	if cfg.CognitoPoolID != "" {
		cogClient, err = cognitoclient.InitCognitoClient(ctx, cfg.CognitoRegion, cfg.CognitoPoolID, cfg.CognitoClientID)
		if err != nil {
			log.Fatalf("failed to initialize cognito: %v", err)
		}
	} else {
		log.Warn("AWS_COGNITO_POOL_ID is not set, account endpoints are disabled")
	}

	var s3Client storage.S3Client
	if cfg.S3Bucket != "" {
		s3Client, err = storage.NewStorageClient(ctx, cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("failed to initialize s3: %v", err)
		}
	}

	var gateway websocket.Gateway = websocket.Discard{}
	if cfg.WSGatewayURL != "" {
		gw, err := websocket.NewAPIGateway(ctx, cfg.WSGatewayURL, cfg.AWSRegion)
		if err != nil {
			log.Fatalf("failed to initialize websocket gateway: %v", err)
		}
		gateway = gw
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Fatalf("failed to initialize token verifier: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	actionRepo := repository.NewActionRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	clientRepo := repository.NewClientRepository(db)
	responsibleRepo := repository.NewResponsibleRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	cnpjRepo := repository.NewCNPJRepository(db)

	actionPolicy := policy.NewActionPolicy()

	// Services
	wsService := service.NewWebSocketService(connRepo, gateway)
	directoryService := service.NewDirectoryService(
		companyRepo, clientRepo, responsibleRepo, actionRepo, wsService, policy.NewDirectoryPolicy(), validate,
	)
	wsService.OnInvalidate = directoryService.InvalidateCache

	notificationService := service.NewNotificationService(
		notifRepo, settingsRepo, userRepo, actionRepo, wsService, nil, actionPolicy, validate,
	)
	if cfg.NotifyWebhookURL != "" {
		notificationService.Webhook = webhook.NewNotifier(cfg.NotifyWebhookURL, cfg.NotifyWebhookKey)
	}

	actionService := service.NewActionService(
		actionRepo, noteRepo, directoryService, notificationService, wsService, nil, actionPolicy, validate,
	)
	if s3Client != nil {
		actionService.S3 = s3Client
	}

	userService := service.NewUserService(userRepo, validate, cogClient, policy.NewUserPolicy(), directoryService, wsService)
	adminService := service.NewAdminService(userRepo, cogClient, validate, service.AdminAccount{
		Email:      cfg.AdminEmail,
		Password:   cfg.AdminPassword,
		Name:       cfg.AdminName,
		CompanyIDs: service.ParseCompanyIDs(cfg.AdminCompanyIDs),
	})
	lookupService := service.NewLookupService(minhareceita.NewClient(), cnpjRepo)

	// Handlers
	actionRoutes := handler.NewActionDefault(actionService)
	directoryRoutes := handler.NewDirectoryDefault(directoryService)
	notificationRoutes := handler.NewNotificationDefault(notificationService)
	userRoutes := handler.NewUserDefault(userService)
	adminRoutes := handler.NewAdminDefault(adminService, cfg.ProvisionKey)
	lookupRoutes := handler.NewLookupDefault(lookupService)
	wsRoutes := handler.NewWSDefault(wsService)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(cfg.RequestBodyLimit))

	authMiddleware := authmw.NewAuthMiddleware(&authmw.AuthMiddlewareConfig{
		UserRepo: userRepo,
		Verifier: verifier,
	})

	// Public
	e.POST("/api/users/check-email", userRoutes.CheckEmail)
	e.POST("/api/users", userRoutes.CreateUser)
	e.POST("/api/users/login", userRoutes.CreateLogin)
	e.POST("/api/users/confirms", userRoutes.ConfirmSignup)
	e.POST("/api/users/confirms/resend", userRoutes.ResendConfirmation)
	e.POST("/api/users/logout", userRoutes.Logout)
	e.POST("/api/admin/provision", adminRoutes.Provision)
	e.POST("/api/admin/promote", adminRoutes.Promote)
	e.POST("/ws/disconnect", wsRoutes.HandleDisconnect)
	e.POST("/ws/message", wsRoutes.HandleMessage)

	api := e.Group("/api", authMiddleware)

	// Actions
	api.GET("/actions", actionRoutes.GetActions)
	api.GET("/actions/summary", actionRoutes.GetSummary)
	api.GET("/actions/board", actionRoutes.GetBoard)
	api.GET("/actions/calendar", actionRoutes.GetCalendar)
	api.GET("/actions/export", actionRoutes.ExportActions)
	api.GET("/actions/:id", actionRoutes.GetAction)
	api.POST("/actions", actionRoutes.CreateAction)
	api.PATCH("/actions/:id", actionRoutes.UpdateAction)
	api.DELETE("/actions/:id", actionRoutes.DeleteAction)
	api.PUT("/actions/:id/status", actionRoutes.ChangeStatus)
	api.POST("/actions/:id/completion", actionRoutes.RequestCompletion)
	api.POST("/actions/:id/completion/approve", actionRoutes.ApproveCompletion)
	api.POST("/actions/:id/completion/reject", actionRoutes.RejectCompletion)
	api.POST("/actions/:id/notes", actionRoutes.AddNote)
	api.DELETE("/actions/:id/notes/:noteId", actionRoutes.DeleteNote)
	api.POST("/actions/:id/attachments", actionRoutes.AddAttachment)
	api.DELETE("/actions/:id/attachments/:name", actionRoutes.RemoveAttachment)
	api.POST("/actions/:id/notify", notificationRoutes.NotifyAction)

	// Directory
	api.GET("/companies", directoryRoutes.GetCompanies)
	api.GET("/companies/:id", directoryRoutes.GetCompany)
	api.POST("/companies", directoryRoutes.CreateCompany)
	api.PATCH("/companies/:id", directoryRoutes.UpdateCompany)
	api.DELETE("/companies/:id", directoryRoutes.DeleteCompany)
	api.GET("/clients", directoryRoutes.GetClients)
	api.GET("/clients/:id", directoryRoutes.GetClient)
	api.POST("/clients", directoryRoutes.CreateClient)
	api.PATCH("/clients/:id", directoryRoutes.UpdateClient)
	api.DELETE("/clients/:id", directoryRoutes.DeleteClient)
	api.GET("/responsibles", directoryRoutes.GetResponsibles)
	api.POST("/responsibles", directoryRoutes.CreateResponsible)
	api.PATCH("/responsibles/:id", directoryRoutes.UpdateResponsible)
	api.DELETE("/responsibles/:id", directoryRoutes.DeleteResponsible)
	api.GET("/lookup/cnpj/:cnpj", lookupRoutes.GetCNPJ)

	// Users
	registerUserRoutes(api, userRoutes)

	// Notifications
	api.GET("/notifications", notificationRoutes.GetInbox)
	api.POST("/notifications/read", notificationRoutes.MarkAllRead)
	api.POST("/notifications/:id/read", notificationRoutes.MarkRead)
	api.GET("/notifications/settings", notificationRoutes.GetSettings)
	api.PUT("/notifications/settings", notificationRoutes.UpdateSettings)

	// Websocket gateway integration
	e.POST("/ws/connect", wsRoutes.HandleConnect, authMiddleware)

	// Docker Compose healthcheck
	e.GET("/health", healthCheckRoute)

	// Background jobs
	go jobs.NewConnectionCleaner(wsService).Start(ctx)
	go jobs.NewCNPJCacheCleaner(lookupService).Start(ctx)

	scheduler := jobs.NewScheduler(actionService)
	if err := scheduler.Register(cfg.OverdueSchedule, cfg.ReminderSchedule); err != nil {
		log.Fatalf("failed to register scheduled jobs: %v", err)
	}
	scheduler.Start(ctx)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}

func newVerifier(cfg *config.Config) (utils.TokenVerifier, error) {
	if cfg.DevJWTSecret != "" {
		if cfg.IsProduction() {
			return nil, errors.New("DEV_JWT_SECRET must not be set in production")
		}
		log.Warn("using HS256 development tokens")
		return utils.NewHMACVerifier(cfg.DevJWTSecret), nil
	}
	return utils.NewJWKSVerifier(cfg.CognitoRegion, cfg.CognitoPoolID)
}

func healthCheckRoute(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func registerUserRoutes(api *echo.Group, routes *handler.DefaultUserRoute) {
	api.GET("/users", routes.GetUsers)
	api.GET("/users/@me/capabilities", routes.GetCapabilities)
	api.GET("/users/:id", routes.GetUser)
	api.PATCH("/users/:id", routes.UpdateUser)
	api.DELETE("/users/:id", routes.DeleteUser)
	api.POST("/users/profiles", routes.CreateProfile)
}
