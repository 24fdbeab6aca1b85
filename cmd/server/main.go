package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kavak-agent/internal/config"
	"kavak-agent/internal/handler"
	"kavak-agent/internal/logger"
	"kavak-agent/internal/repository"
	"kavak-agent/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	searchDefaultLimit = 5
	searchMaxLimit     = 50
	shutdownTimeout    = 10 * time.Second
	sweepInterval      = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer lg.Sync()

	// Print version info
	lg.Info("Kavak sales agent",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	var repo *repository.PostgresRepository
	if cfg.PostgreSQL.Enabled {
		repo, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			lg.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer repo.Close()
		if err := repo.Migrate(ctx); err != nil {
			lg.Fatal("Failed to migrate database", zap.Error(err))
		}
		lg.Info("Connected to PostgreSQL database")
	} else {
		lg.Warn("PostgreSQL is disabled: leads are only logged and the knowledge base is unavailable")
	}

	// Catalog
	holder := service.NewCatalogHolder(nil)
	watcher, err := loadCatalog(ctx, cfg, repo, holder, lg)
	if err != nil {
		lg.Fatal("Failed to load catalog", zap.Error(err))
	}
	if watcher != nil {
		defer watcher.Close()
		go watcher.Run(ctx)
	}
	lg.Info("Catalog loaded", zap.String("source", cfg.Catalog.Source), zap.Int("items", holder.Current().Len()))

	aliases := service.DefaultAliases()
	if cfg.Aliases.File != "" {
		aliases, err = service.LoadAliases(cfg.Aliases.File)
		if err != nil {
			lg.Fatal("Failed to load alias file", zap.String("path", cfg.Aliases.File), zap.Error(err))
		}
		lg.Info("Alias overrides loaded", zap.String("path", cfg.Aliases.File))
	}

	// Conversation state
	store, closeStore, err := newStateStore(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("Failed to initialize conversation state", zap.Error(err))
	}
	defer closeStore()

	// Initialize OpenAI client
	openaiClient := service.NewOpenAIClient(cfg.OpenAIOptions(), lg)
	if cfg.OpenAI.Enabled {
		lg.Info("OpenAI client initialized",
			zap.String("api_base", cfg.OpenAI.APIBase),
			zap.String("chat_model", cfg.OpenAI.ChatModel),
			zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		)
	} else {
		lg.Warn("OpenAI is disabled: knowledge answers will not work. Set OPENAI_API_KEY to enable them")
	}

	// Initialize services
	var (
		leads          service.LeadSink = service.NewLogLeadSink(lg)
		knowledgeStore service.KnowledgeStore
	)
	if repo != nil {
		leads = repo
		knowledgeStore = repo
	}
	var embedder service.Embedder
	if cfg.OpenAI.Enabled {
		embedder = openaiClient
	}
	knowledgeService := service.NewKnowledgeService(embedder, openaiClient, knowledgeStore, cfg.Knowledge.TopK, cfg.Knowledge.Timeout, lg)
	chatService := service.NewChatService(holder, store, knowledgeService, leads, service.ChatOptions{
		PageSize:   cfg.Conversation.PageSize,
		Finance:    cfg.FinanceSettings(),
		Thresholds: cfg.MatchingThresholds(),
		Aliases:    aliases,
		Logger:     lg,
	})

	lg.Info("Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)
	whatsappHandler := handler.NewWhatsAppHandler(chatService, handler.WhatsAppOptions{
		ValidateSignature: cfg.Webhook.ValidateSignature,
		AuthToken:         cfg.Webhook.AuthToken,
		PublicBaseURL:     cfg.Webhook.PublicBaseURL,
		ChunkSize:         cfg.Webhook.ChunkSize,
	}, lg)
	catalogHandler := handler.NewCatalogHandler(holder, aliases, cfg.MatchingThresholds(), searchDefaultLimit, searchMaxLimit)
	financeHandler := handler.NewFinanceHandler(cfg.FinanceSettings())
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestID(), handler.RequestLogger(lg))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":        "healthy",
			"service":       "kavak-agent",
			"version":       Version,
			"build_time":    BuildTime,
			"git_commit":    GitCommit,
			"catalog_items": holder.Current().Len(),
		}
		if repo != nil {
			if err := repo.Ping(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["postgres"] = err.Error()
			}
		}
		c.JSON(status, body)
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Twilio posts form data here
	router.POST("/webhooks/whatsapp", whatsappHandler.Webhook)

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)

		// Catalog endpoints
		apiV1.GET("/cars/:id", catalogHandler.GetCar)
		apiV1.POST("/cars/search", catalogHandler.Search)

		apiV1.POST("/finance/plan", financeHandler.Plan)

		// Knowledge base endpoints
		apiV1.POST("/knowledge/chunks", knowledgeHandler.Ingest)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	lg.Info("Starting server", zap.String("addr", addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	lg.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("Server shutdown failed", zap.Error(err))
	}
	lg.Info("Server stopped")
}

// loadCatalog fills holder from the configured source. For a watched CSV it
// returns the watcher; the caller runs and closes it.
func loadCatalog(ctx context.Context, cfg *config.Config, repo *repository.PostgresRepository, holder *service.CatalogHolder, lg *zap.Logger) (*repository.CatalogWatcher, error) {
	if cfg.Catalog.Source == "postgres" {
		items, err := repo.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		holder.Swap(service.NewCatalog(items))
		return nil, nil
	}

	if !cfg.Catalog.Watch {
		items, dropped, err := repository.LoadCatalogCSV(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			lg.Warn("Dropped invalid catalog rows", zap.Int("dropped", dropped))
		}
		holder.Swap(service.NewCatalog(items))
		return nil, nil
	}

	watcher, err := repository.NewCatalogWatcher(cfg.Catalog.Path, holder, lg)
	if err != nil {
		return nil, err
	}
	if err := watcher.Reload(); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// newStateStore builds the configured conversation store and its cleanup.
func newStateStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (service.StateStore, func(), error) {
	if cfg.Conversation.Backend == "redis" {
		client, err := repository.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		lg.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		store := repository.NewRedisStateStore(client, repository.RedisStateOptions{
			Prefix:     cfg.Conversation.KeyPrefix,
			TTL:        cfg.Conversation.TTL,
			MaxRetries: cfg.Conversation.MaxRetries,
		}, lg)
		return store, func() { client.Close() }, nil
	}

	store := repository.NewMemoryStateStore(cfg.Conversation.TTL)
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					lg.Debug("Swept idle conversations", zap.Int("count", n))
				}
			}
		}
	}()
	return store, func() {}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
