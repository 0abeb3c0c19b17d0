package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"muhurta/internal/advisor"
	"muhurta/internal/cache"
	"muhurta/internal/config"
	"muhurta/internal/db"
	"muhurta/internal/outlier"
	"muhurta/internal/provider"
	"muhurta/internal/repository"
	"muhurta/internal/rules"
	"muhurta/internal/service"
	"muhurta/internal/tui"
	"muhurta/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
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
	newRuleLoaderFunc = rules.NewLoader
	newSSHServerFunc  = tui.NewSSHServer
	runProgramFunc    = func(model tea.Model) error {
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}
	runSSHServerFunc = func(ctx context.Context, srv *tui.SSHServer) error {
		return srv.Start(ctx)
	}
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	chartRepo := newChartRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := chartRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	ruleLoader := newRuleLoaderFunc(cfg.RulesPath)
	ephemeris := newEphemerisFunc(tracer)
	scoreCache := cache.NewScoreCache(cache.Client, time.Duration(cfg.ScoreCacheTTLSecs)*time.Second)

	var detector service.OutlierDetector
	if cfg.OutlierEnabled {
		detector = outlier.NewDetector(cfg.OutlierThreshold, cfg.IForestTrees, cfg.IForestSample)
	}

	chartService := service.NewChartService(tracer, chartRepo, scoreCache)
	outlookService := service.NewOutlookService(tracer, chartRepo, scoreCache, ephemeris, ruleLoader, detector, cfg.CalendarWorkers)

	os.Setenv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	advisorService := advisor.New(tracer, outlookService, cfg.OpenAIModel, cfg.AdvisorMaxHistory)

	svc := tui.Services{
		Charts:   chartService,
		Outlooks: outlookService,
		Days:     cfg.CalendarDays,
		Username: "local",
	}
	if advisorService != nil {
		svc.Advisor = advisorService
	}

	if len(os.Args) > 1 && os.Args[1] == "serve" {
		sshSrv, err := newSSHServerFunc(tui.SSHConfig{
			Bind:        cfg.SSHBind,
			Port:        strconv.Itoa(cfg.SSHPort),
			HostKeyPath: cfg.SSHHostKeyPath,
		}, svc)
		if err != nil {
			log.Fatalf("failed to create ssh server: %v", err)
		}
		if err := runSSHServerFunc(ctx, sshSrv); err != nil {
			log.Fatalf("ssh server failed: %v", err)
		}
		return
	}

	if err := runProgramFunc(tui.NewAppModel(svc)); err != nil {
		log.Fatalf("tui failed: %v", err)
	}
}
