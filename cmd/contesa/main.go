package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/contesa/contesa/internal/adapters"
	"gitlab.com/contesa/contesa/internal/db"
	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
	"gitlab.com/contesa/contesa/internal/routes"
)

const usage = `Usage:
	- start
	- migrate [up/down/drop]`

func main() {
	if len(os.Args) == 1 {
		fmt.Println(usage)
		return
	}
	envConfig := models.ReadEnvConfig()
	switch os.Args[1] {
	case "start":
		server := ContesaServer{EnvConfig: envConfig}
		server.Setup()
		server.Run()
	case "migrate":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			return
		}
		var err error
		switch os.Args[2] {
		case "up":
			err = db.MigrateUp(envConfig.DatabaseURL)
		case "down":
			err = db.MigrateDown(envConfig.DatabaseURL)
		case "drop":
			err = db.Drop(envConfig.DatabaseURL)
		default:
			fmt.Println(usage)
			return
		}
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Done")
	default:
		fmt.Println(usage)
	}
}

type ContesaServer struct {
	models.EnvConfig
	addr       string
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	pool       *pgxpool.Pool
	outbox     *domain.Outbox
}

func (server *ContesaServer) setupLogger() {
	var writer io.Writer
	if server.Debug {
		writer = zerolog.ConsoleWriter{Out: os.Stdout}
	} else {
		writer = os.Stdout
	}
	log := zerolog.New(writer).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	server.logger = log
}

func (server *ContesaServer) setupServices() {
	var (
		content      domain.ContentRepo
		restrictions domain.RestrictionRepo
		auditRepo    domain.AuditRepo
		reports      domain.ReportRepo
		users        domain.UserRepo
		notify       domain.Notifier
		auth         routes.Auth
	)
	if server.DatabaseURL == "" {
		// No database configured: run on the in-memory store. Useful for
		// local development, everything is lost on shutdown.
		server.logger.Warn().Msg("CONTESA_DATABASE_URL not set, using ephemeral in-memory store")
		mem := adapters.NewMemory()
		content, restrictions, auditRepo, reports, users, notify, auth = mem, mem, mem, mem, mem, mem, mem
	} else {
		if err := db.MigrateUp(server.DatabaseURL); err != nil {
			server.logger.Fatal().Err(err).Send()
		}
		pool, err := db.Connect(context.Background(), &server.EnvConfig)
		if err != nil {
			server.logger.Fatal().AnErr("connecting to db", err).Send()
		}
		server.pool = pool

		bcryptCost := bcrypt.DefaultCost + 2
		if server.Debug {
			bcryptCost = bcrypt.MinCost
		}
		userStore := adapters.NewUserStore(pool, bcryptCost)
		content = adapters.NewContentRepo(pool)
		restrictions = adapters.NewRestrictionRepo(pool)
		auditRepo = adapters.NewAuditRepo(pool)
		reports = adapters.NewReportRepo(pool)
		users = userStore
		notify = adapters.NewNotifier(pool)
		auth = userStore
	}

	gate := domain.NewGate(domain.DefaultPolicy())
	server.outbox = domain.NewOutbox(notify, server.logger, server.OutboxSize)
	server.outbox.Start()

	audit := domain.NewAuditRecorder(gate, auditRepo, server.logger)
	ledger := domain.NewRestrictionLedger(gate, restrictions, server.logger)
	engine := domain.NewEngine(gate, content, ledger, audit, server.outbox, server.logger)
	reportMgr := domain.NewReportManager(gate, reports, content, audit, server.logger)
	userSvc := domain.NewUserService(gate, users, audit, server.logger)
	bulk := domain.NewBulkCoordinator(engine, userSvc, content, audit, server.logger)

	rt := routes.New(server.logger, auth, engine, bulk, reportMgr, userSvc, audit, ledger, content)
	server.router = routes.NewRouter(server.logger, rt)
}

func (server *ContesaServer) setupHttpServer() {
	server.addr = fmt.Sprintf("localhost:%s", server.EnvConfig.Port)
	server.httpServer = &http.Server{
		Addr:         server.addr,
		Handler:      server.router,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 1 * time.Minute,
	}
}

func (server *ContesaServer) Setup() {
	server.setupLogger()
	server.setupServices()
	server.setupHttpServer()
}

func (server *ContesaServer) Shutdown() {
	if err := server.httpServer.Shutdown(context.Background()); err != nil {
		server.logger.Error().
			Err(err).
			Msg("Error shutting down")
	}
	server.outbox.Close()
	if server.pool != nil {
		server.pool.Close()
	}
}

func (server *ContesaServer) Run() {
	server.logger.Info().Str("server_address", server.addr).Msg("Server is starting")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go server.httpServer.ListenAndServe()
	server.logger.Info().Msg("Ready")

	<-ctx.Done()
	stop() // Stop listening for signals
	server.logger.Info().Msg("Shutting down gracefully")
	server.Shutdown()
}
