package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"copyhound/config"
	"copyhound/models"
	"copyhound/providers"
	"copyhound/providers/github"
	"copyhound/providers/imdb"
	"copyhound/providers/musicbrainz"
	"copyhound/providers/openalex"
	"copyhound/providers/openlibrary"
	"copyhound/providers/patentsview"
	"copyhound/providers/wikipedia"
	"copyhound/services"
	"copyhound/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	searchesCounter   prometheus.Counter
	newRecordsCounter prometheus.Counter
)

func init() {
	searchesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "searches_total",
			Help: "Total number of search requests processed.",
		},
	)
	newRecordsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "new_work_records_total",
			Help: "Total number of new work records added to the database.",
		},
	)
	prometheus.MustRegister(searchesCounter, newRecordsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to metadata database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(&models.WorkRecord{}, &models.SearchLogEntry{}); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	recordStore := storage.NewGormStore(db)
	logStore := storage.NewGormSearchLogStore(db)

	// Setup Adapters
	enabledAdapterNames := strings.Split(cfg.EnabledAdapters, ",")
	var enabledAdapters []providers.Adapter
	for _, name := range enabledAdapterNames {
		switch strings.TrimSpace(name) {
		case "openlibrary":
			enabledAdapters = append(enabledAdapters, openlibrary.NewFetcher(cfg, logging))
		case "wikipedia":
			enabledAdapters = append(enabledAdapters, wikipedia.NewFetcher(cfg, logging))
		case "musicbrainz":
			enabledAdapters = append(enabledAdapters, musicbrainz.NewFetcher(cfg, logging))
		case "github":
			enabledAdapters = append(enabledAdapters, github.NewFetcher(cfg, logging))
		case "openalex":
			enabledAdapters = append(enabledAdapters, openalex.NewFetcher(cfg, logging))
		case "patentsview":
			enabledAdapters = append(enabledAdapters, patentsview.NewFetcher(cfg, logging))
		case "imdb":
			enabledAdapters = append(enabledAdapters, imdb.NewFetcher(cfg, logging))
		default:
			logging.Warn("Unknown adapter in config", zap.String("adapter_name", name))
		}
	}
	if len(enabledAdapters) == 0 {
		logging.Fatal("No valid adapters enabled. Check ENABLED_ADAPTERS in .env")
	}
	logging.Info("Active adapters loaded", zap.Strings("adapters", enabledAdapterNames))

	// Setup Services
	var encoder services.TextEncoder
	tfidf := services.NewTFIDFEncoder()
	switch cfg.TextEncoder {
	case "hashing":
		encoder = services.NewHashingEncoder()
	default:
		encoder = tfidf
	}

	speller := services.NewSpellCorrector(logging)
	collector := services.NewCollector(cfg, recordStore, enabledAdapters, newRecordsCounter, logging)
	engine := services.NewSearchEngine(cfg, recordStore, logStore, speller, encoder, collector, services.NoopPredictor{}, logging)
	scheduler := services.NewRefreshScheduler(cfg, recordStore, collector, logging)

	warmUp(context.Background(), recordStore, speller, tfidf, cfg, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup Routes
	setupSearchRoutes(router, engine, logging)
	setupWorkRoutes(router, recordStore, db, logging)
	setupCollectRoutes(router, collector, logging)
	setupRefreshRoutes(router, scheduler)
	setupStatsRoutes(router, engine, collector, scheduler)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.RefreshCronSchedule, func() {
		logging.Info("Running scheduled refresh pass...")
		scheduler.RunPass(context.Background())
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// warmUp füttert Korrektor und Encoder mit den vorhandenen Titeln, damit
// die erste Suche nicht gegen leere Vokabulare läuft.
func warmUp(ctx context.Context, store storage.RecordStore, speller *services.SpellCorrector, tfidf *services.TFIDFEncoder, cfg *config.Config, log *zap.Logger) {
	records, err := store.Sample(ctx, models.TypeUnknown, 1000)
	if err != nil {
		log.Warn("Warm-up sample failed", zap.Error(err))
		return
	}
	if len(records) == 0 {
		return
	}

	titles := make([]string, 0, len(records))
	for _, rec := range records {
		titles = append(titles, rec.Title)
	}
	speller.AddKnownTitles(titles)
	if cfg.TextEncoder != "hashing" {
		tfidf.UpdateIDF(titles)
	}
	log.Info("Warm-up finished", zap.Int("titles", len(titles)))
}

func setupSearchRoutes(router *gin.Engine, engine *services.SearchEngine, log *zap.Logger) {
	rg := router.Group("/search")

	rg.POST("/", func(c *gin.Context) {
		var req struct {
			Query             string `json:"query" binding:"required"`
			ContentType       string `json:"content_type"`
			MaxResults        int    `json:"max_results"`
			IncludeWebResults *bool  `json:"include_web_results"`
			SessionID         string `json:"session_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'query' field is required."})
			return
		}

		includeWeb := true
		if req.IncludeWebResults != nil {
			includeWeb = *req.IncludeWebResults
		}

		response, err := engine.Search(c.Request.Context(), services.SearchRequest{
			Query:             req.Query,
			ContentType:       models.ParseContentType(req.ContentType),
			MaxResults:        req.MaxResults,
			IncludeWebResults: includeWeb,
			SessionID:         req.SessionID,
		})
		if err != nil {
			if errors.Is(err, services.ErrEmptyQuery) || errors.Is(err, services.ErrQueryTooLong) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Error("Search failed", zap.String("query", req.Query), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}

		searchesCounter.Inc()
		c.JSON(http.StatusOK, response)
	})

	rg.POST("/feedback", func(c *gin.Context) {
		var req struct {
			SearchID         uint  `json:"search_id" binding:"required"`
			SelectedResultID *uint `json:"selected_result_id"`
			WasCorrect       *bool `json:"was_correct"`
			Rating           *int  `json:"rating"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'search_id' field is required."})
			return
		}

		if req.SelectedResultID != nil {
			if err := engine.LearnFromSelection(c.Request.Context(), req.SearchID, *req.SelectedResultID); err != nil {
				log.Error("Learning from selection failed", zap.Uint("search_id", req.SearchID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record selection"})
				return
			}
		}
		if req.WasCorrect != nil {
			if err := engine.RecordFeedback(c.Request.Context(), req.SearchID, *req.WasCorrect, req.Rating); err != nil {
				log.Error("Recording feedback failed", zap.Uint("search_id", req.SearchID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record feedback"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "feedback recorded"})
	})
}

func setupWorkRoutes(router *gin.Engine, store storage.RecordStore, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/works")

	rg.GET("/", func(c *gin.Context) {
		var works []models.WorkRecord
		if err := db.Limit(200).Order("created_at desc").Find(&works).Error; err != nil {
			log.Error("Database query for all works failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, works)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		work, err := store.ByID(c.Request.Context(), uint(id))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
				return
			}
			log.Error("DB error fetching work", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, work)
	})

	rg.POST("/query", func(c *gin.Context) {
		type WorkQuery struct {
			ContentType     string   `json:"content_type"`
			CopyrightStatus string   `json:"copyright_status"`
			Creator         string   `json:"creator"`
			MinConfidence   *float64 `json:"min_confidence"`
			Limit           int      `json:"limit"`
		}

		var req WorkQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.WorkRecord{})

		if req.ContentType != "" {
			query = query.Where("content_type = ?", req.ContentType)
		}
		if req.CopyrightStatus != "" {
			query = query.Where("copyright_status = ?", req.CopyrightStatus)
		}
		if req.Creator != "" {
			query = query.Where("creator ILIKE ?", "%"+req.Creator+"%")
		}
		if req.MinConfidence != nil {
			query = query.Where("data_confidence >= ?", *req.MinConfidence)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var works []models.WorkRecord
		if err := query.Order("created_at desc").Find(&works).Error; err != nil {
			log.Error("Database query for works failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, works)
	})
}

func setupCollectRoutes(router *gin.Engine, collector *services.Collector, log *zap.Logger) {
	router.POST("/collect", func(c *gin.Context) {
		var req struct {
			Query       string `json:"query" binding:"required"`
			ContentType string `json:"content_type"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'query' field is required."})
			return
		}

		go func() {
			merged, err := collector.CollectForQuery(context.Background(), req.Query, models.ParseContentType(req.ContentType))
			if err != nil {
				log.Error("Async collection failed", zap.String("query", req.Query), zap.Error(err))
				return
			}
			log.Info("Async collection completed", zap.String("query", req.Query), zap.Int("merged", len(merged)))
		}()

		c.JSON(http.StatusAccepted, gin.H{"message": "Collection triggered."})
	})
}

func setupRefreshRoutes(router *gin.Engine, scheduler *services.RefreshScheduler) {
	router.POST("/refresh", func(c *gin.Context) {
		scheduler.TriggerAsync(context.Background())
		c.JSON(http.StatusAccepted, gin.H{"message": "Refresh pass triggered."})
	})
}

func setupStatsRoutes(router *gin.Engine, engine *services.SearchEngine, collector *services.Collector, scheduler *services.RefreshScheduler) {
	router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"engine":    engine.Stats(c.Request.Context()),
			"collector": collector.Status(),
			"scheduler": scheduler.Status(),
		})
	})
}
