package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/nkorchagin/datahub/internal/auth/http"
	authservice "github.com/nkorchagin/datahub/internal/auth/service"
	"github.com/nkorchagin/datahub/internal/common/clock"
	"github.com/nkorchagin/datahub/internal/common/config"
	commoncrypto "github.com/nkorchagin/datahub/internal/common/crypto"
	"github.com/nkorchagin/datahub/internal/common/db"
	commonhttp "github.com/nkorchagin/datahub/internal/common/http"
	"github.com/nkorchagin/datahub/internal/common/logger"
	srv "github.com/nkorchagin/datahub/internal/common/server"
	"github.com/nkorchagin/datahub/internal/common/web"
	datasetrepo "github.com/nkorchagin/datahub/internal/dataset/repository"
	explorehttp "github.com/nkorchagin/datahub/internal/explore/http"
	exploreservice "github.com/nkorchagin/datahub/internal/explore/service"
	notepadhttp "github.com/nkorchagin/datahub/internal/notepad/http"
	notepadrepo "github.com/nkorchagin/datahub/internal/notepad/repository"
	notepadservice "github.com/nkorchagin/datahub/internal/notepad/service"
	publichttp "github.com/nkorchagin/datahub/internal/public/http"
	"github.com/nkorchagin/datahub/internal/session"
	userrepo "github.com/nkorchagin/datahub/internal/user/repository"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "datahub", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.RunMigrations(context.Background(), log, cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	renderer, err := web.NewRenderer(log)
	if err != nil {
		log.Fatalf("failed to initialize renderer: %v", err)
	}

	clk := &clock.RealClock{}
	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := &commoncrypto.UUIDGenerator{}

	users := userrepo.NewPgRepository(pool)
	datasets := datasetrepo.NewPgRepository(pool)
	notepads := notepadrepo.NewPgRepository(pool)
	sessionRepo := session.NewPgRepository(pool)

	sessions := session.NewManager(
		session.ManagerDeps{Repo: sessionRepo, Clock: clk, Log: log},
		session.ManagerConfig{
			Secret:      cfg.SessionSecret,
			SessionTTL:  cfg.SessionTTL,
			RememberTTL: cfg.RememberTTL,
		},
	)

	authService := authservice.NewAuthService(authservice.Deps{
		Repo:        users,
		Hasher:      hasher,
		IDGenerator: idGenerator,
		Clock:       clk,
		Log:         log,
	})
	exploreService := exploreservice.NewExploreService(datasets, log)
	notepadService := notepadservice.NewNotepadService(notepadservice.Deps{
		Repo:        notepads,
		IDGenerator: idGenerator,
		Clock:       clk,
		Log:         log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go session.StartCleanup(ctx, sessionRepo, clk, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())
	authhttp.NewHandler(authService, sessions, renderer, log).Register(mux)
	explorehttp.NewHandler(exploreService, sessions, renderer, log).Register(mux)
	notepadhttp.NewHandler(notepadService, sessions, renderer, log).Register(mux)
	publichttp.NewHandler(datasets, users, renderer, log).Register(mux)

	withSession := session.WithSession(sessions)
	rateLimiter := commonhttp.NewAuthAwareLimiter()
	handler := rateLimiter.Middleware()(
		commonhttp.BuildBaseHandler(log, withSession(mux)),
	)

	server := srv.New(srv.DefaultConfig(cfg.HTTPPort), handler)

	hooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Info("stopping background cleanup")
			cancel()
			return nil
		},
	}

	srv.StartWithGracefulShutdown(server, log, hooks)
}
