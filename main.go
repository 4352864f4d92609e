package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prevet-io/prevet/audit"
	"github.com/prevet-io/prevet/catalog"
	"github.com/prevet-io/prevet/config"
	"github.com/prevet-io/prevet/controller"
	"github.com/prevet-io/prevet/dao"
	"github.com/prevet-io/prevet/db"
	logger "github.com/prevet-io/prevet/logging"
	"github.com/prevet-io/prevet/pdp/engine"
	"github.com/prevet-io/prevet/pdp/expr"
	"github.com/prevet-io/prevet/router"
	"github.com/prevet-io/prevet/service"
	"github.com/prevet-io/prevet/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.GetConfig()

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize the declaration catalog and decision manager
	cat := catalog.New()
	manager, err := engine.NewDecisionManager(cat, expr.New())
	if err != nil {
		logger.Fatal("Failed to initialize decision manager", zap.Error(err))
	}

	// Initialize audit trail
	if config.GetBool("audit.enabled") {
		auditRepository, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL)
		if err != nil {
			logger.Fatal("Failed to initialize audit repository", zap.Error(err))
		}
		auditService := audit.NewService(auditRepository)
		eventBus.Subscribe(util.EventDecisionChecked, func(ctx context.Context, event util.Event) error {
			record, ok := event.Payload.(audit.DecisionRecord)
			if !ok {
				return fmt.Errorf("unexpected decision event payload: %T", event.Payload)
			}
			return auditService.LogDecision(ctx, record)
		})
	}

	// Initialize the declaration store: the Neo4j graph by default, the
	// Redis hash when configured
	var store service.DeclarationStore
	if config.GetString("declarations.store") == "redis" {
		store = db.RedisDeclarationStore{}
	} else {
		store = dao.NewDeclarationDAO(db.Neo4jDriver)
	}
	authzService := service.NewAuthzService(manager, cat, store, eventBus)

	// Load declarations: config first, then the persisted graph
	if err := cat.LoadFromConfig(); err != nil {
		logger.Fatal("Failed to load policy declarations from config", zap.Error(err))
	}
	if err := authzService.LoadPersistedDeclarations(ctx); err != nil {
		logger.Fatal("Failed to load persisted policy declarations", zap.Error(err))
	}

	// Pre-resolve every declared target so malformed policies surface now
	if err := cat.Warmup(ctx, manager.Registry()); err != nil {
		logger.Fatal("Attribute cache warmup failed", zap.Error(err))
	}

	// Initialize controllers
	authzController := controller.NewAuthzController(authzService)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(
		authzController,
		config.GetInt("ratelimit.requests"),
		config.GetDuration("ratelimit.duration"),
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
