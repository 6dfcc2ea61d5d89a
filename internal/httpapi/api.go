// Package httpapi exposes the team-operations backend over HTTP. Routes are
// split into an authenticated group open to every role and a manager-only
// group for roster, settings and import administration.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kyri56xcaesar/teamops/internal/app"
	"kyri56xcaesar/teamops/internal/appstate"
	auth "kyri56xcaesar/teamops/internal/authmw"
	"kyri56xcaesar/teamops/internal/gateway"
	"kyri56xcaesar/teamops/internal/logger"
)

const (
	apiVersion = "/api/v1"
)

var (
	config     Config
	engine     *gin.Engine
	controller *app.Controller
	kcService  *auth.Service

	// stateVersion bumps on every successful mutation; clients poll it to
	// know when to refetch.
	stateVersion atomic.Int64
)

func setCors() {
	corsconfig := cors.DefaultConfig()
	corsconfig.AllowOrigins = config.AllowedOrigins
	corsconfig.AllowMethods = config.AllowedMethods
	corsconfig.AllowHeaders = config.AllowedHeaders
	engine.Use(cors.New(corsconfig))
}

func mustInitKcService() *auth.Service {
	s, err := auth.NewService(
		config.AuthAddress,
		config.Realm,
		config.ClientID,
		config.Issuer,
		config.Audience,
		config.ClientSecret,
	)
	if err != nil {
		panic(err)
	}
	return s
}

func setRoutes() {
	root := engine.Group("/")
	{
		root.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "alive"})
		})
	}

	api := engine.Group(apiVersion)
	admin := api.Group("/admin")
	if config.AuthEnabled {
		kcService = mustInitKcService()
		api.Use(kcService.KCAuth.RequireRoles(auth.RoleMember, auth.RoleManager))
		admin.Use(kcService.KCAuth.RequireRoles(auth.RoleManager))
	}

	{
		api.GET("/state/version", stateVersionHandler)

		api.POST("/login", loginHandler)
		api.POST("/logout", logoutHandler)
		api.GET("/session", sessionHandler)
		api.POST("/session/view", setViewHandler)
		api.POST("/session/theme", setThemeHandler)

		api.GET("/team", listMembersHandler)
		api.GET("/projects", listProjectsHandler)
		api.POST("/projects", createProjectHandler)
		api.PUT("/projects/:id", updateProjectHandler)
		api.DELETE("/projects/:id", deleteProjectHandler)

		api.GET("/attendance", listAttendanceHandler)
		api.PUT("/attendance", upsertAttendanceHandler)
		api.DELETE("/attendance", deleteAttendanceHandler)

		api.GET("/notes", listNotesHandler)
		api.POST("/notes", createNoteHandler)
		api.PUT("/notes/:id", updateNoteHandler)
		api.DELETE("/notes/:id", deleteNoteHandler)

		api.GET("/worklogs", listWorkLogsHandler)
		api.POST("/worklogs/batch", addWorkLogsHandler)
		api.DELETE("/worklogs/:id", deleteWorkLogHandler)

		api.GET("/activity", activityHandler)
		api.GET("/settings", settingsHandler)
		api.GET("/export/:collection", exportHandler)
	}

	{
		admin.POST("/team", createMemberHandler)
		admin.PUT("/team/:id", updateMemberHandler)
		admin.DELETE("/team/:id", deleteMemberHandler)
		admin.PUT("/settings", updateSettingsHandler)
		admin.POST("/import/:collection", importHandler)
		admin.POST("/reload", reloadHandler)
	}
}

func InitAndServe(confPath string) {
	config = loadConfig(confPath)

	logger.Init(logger.Options{
		Level:      config.LogLevel,
		File:       config.LogFile,
		Console:    true,
		MaxSizeMB:  config.LogMaxSizeMB,
		MaxBackups: config.LogMaxBackups,
		MaxAgeDays: config.LogMaxAgeDays,
	})

	engine = gin.Default()
	setGinMode(config.ApiGinMode)

	setCors()
	setRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := gateway.Open(ctx, gateway.Config{
		Backend:       config.GatewayBackend,
		PostgresDSN:   config.PostgresDSN,
		MongoURI:      config.MongoURI,
		MongoDatabase: config.MongoDatabase,
	})
	if err != nil {
		logger.Error("could not open the persistence gateway", "backend", config.GatewayBackend, "error", err)
		panic(err)
	}

	controller = app.New(gw,
		app.WithSessionStore(&app.FileSessionStore{Path: config.SessionPath}),
		app.WithRenderer(app.RendererFunc(func(_ *appstate.Store) {
			stateVersion.Add(1)
		})),
	)

	if err := controller.Load(ctx); err != nil {
		logger.Error("initial load failed", "error", err)
		panic(err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port),
		Handler:           engine,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			panic(err)
		}
	}()

	<-ctx.Done()

	stop()
	logger.Info("shutting down gracefully, press Ctrl+C again to force")

	switch closer := gw.(type) {
	case interface{ Close(context.Context) error }:
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := closer.Close(cctx); err != nil {
			logger.Error("could not close the persistence gateway", "error", err)
		}
		cancel()
	case interface{ Close() }:
		closer.Close()
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")
}

func setGinMode(mode string) {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
