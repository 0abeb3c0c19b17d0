package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"strconv"
	"syscall"
	"time"

	"muhurta/internal/advisor"
	"muhurta/internal/bot"
	"muhurta/internal/cache"
	"muhurta/internal/config"
	"muhurta/internal/db"
	"muhurta/internal/domain"
	"muhurta/internal/handler"
	"muhurta/internal/job"
	"muhurta/internal/outlier"
	"muhurta/internal/provider"
	"muhurta/internal/repository"
	"muhurta/internal/rules"
	"muhurta/internal/service"
	"muhurta/internal/tui"
	"muhurta/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "muhurta/docs"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newChartRepoFunc = repository.NewChartRepository
	newEphemerisFunc = func(tracer trace.Tracer) *provider.MeanEphemeris {
		_ = tracer
		return provider.NewMeanEphemeris()
	}
	newRuleLoaderFunc     = rules.NewLoader
	newChartServiceFunc   = service.NewChartService
	newOutlookServiceFunc = service.NewOutlookService
	newRefresherFunc      = job.NewCalendarRefresher
	startRefresherFunc    = func(r *job.CalendarRefresher, ctx context.Context) { go r.Start(ctx) }
	newAdvisorFunc        = advisor.New
	startTelegramBotFunc  = bot.StartTelegramBot
	newSSHServerFunc      = tui.NewSSHServer
	startSSHServerFunc    = func(s *tui.SSHServer, ctx context.Context) {
		go func() {
			if err := s.Start(ctx); err != nil {
				log.Printf("ssh server stopped: %v", err)
			}
		}()
	}
	startDigestLoopFunc = func(ctx context.Context, d *bot.DigestDispatcher, outlooks bot.OutlookQuerier) {
		if d == nil {
			return
		}
		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := d.SendDigests(ctx, outlooks); err != nil {
						log.Printf("digest dispatch: %v", err)
					}
				}
			}
		}()
	}
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Muhurta API
// @version         1.0
// @description     A Go service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repository and run migrations
	chartRepo := newChartRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := chartRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Rule catalog, ephemeris and score cache
	ruleLoader := newRuleLoaderFunc(cfg.RulesPath)
	ephemeris := newEphemerisFunc(tracer)
	scoreCache := cache.NewScoreCache(cache.Client, time.Duration(cfg.ScoreCacheTTLSecs)*time.Second)

	var detector service.OutlierDetector
	if cfg.OutlierEnabled {
		detector = outlier.NewDetector(cfg.OutlierThreshold, cfg.IForestTrees, cfg.IForestSample)
	}

	// Create services
	chartService := newChartServiceFunc(tracer, chartRepo, scoreCache)
	outlookService := newOutlookServiceFunc(tracer, chartRepo, scoreCache, ephemeris, ruleLoader, detector, cfg.CalendarWorkers)

	// Start background calendar refresher (stopped by ctx cancel)
	refresher := newRefresherFunc(tracer, chartService, outlookService, cfg.CalendarRefreshSecs, cfg.CalendarDays)
	startRefresherFunc(refresher, ctx)

	// Advisor is optional; it disables itself without an API key
	os.Setenv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	advisorService := newAdvisorFunc(tracer, outlookService, cfg.OpenAIModel, cfg.AdvisorMaxHistory)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	digestDims := make([]domain.Dimension, 0, len(cfg.DigestDimensions))
	for _, d := range cfg.DigestDimensions {
		digestDims = append(digestDims, domain.Dimension(d))
	}
	var botAdvisor bot.Advisor
	if advisorService != nil {
		botAdvisor = advisorService
	}
	digests := startTelegramBotFunc(chartService, outlookService, botAdvisor, digestDims)
	startDigestLoopFunc(ctx, digests, outlookService)

	// Serve the TUI over SSH
	sshSvc := tui.Services{
		Charts:   chartService,
		Outlooks: outlookService,
		Days:     cfg.CalendarDays,
	}
	if advisorService != nil {
		sshSvc.Advisor = advisorService
	}
	sshSrv, err := newSSHServerFunc(tui.SSHConfig{
		Bind:        cfg.SSHBind,
		Port:        strconv.Itoa(cfg.SSHPort),
		HostKeyPath: cfg.SSHHostKeyPath,
	}, sshSvc)
	if err != nil {
		log.Printf("ssh server disabled: %v", err)
	} else {
		startSSHServerFunc(sshSrv, ctx)
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, chartService, outlookService, ruleLoader)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("muhurta"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
