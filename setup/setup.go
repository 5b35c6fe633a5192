package setup

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/config"
	"postboard/db"
	"postboard/events"
	"postboard/handlers"
	"postboard/identity"
	"postboard/routes"
	"postboard/store"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

const shutdownTimeout = 10 * time.Second

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// InitLogging sends the standard logger to stderr and, when a log file is configured,
// to a rotating file as well.
func InitLogging(cfg config.Config) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if cfg.Log.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	logger := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   true,
	}

	log.SetOutput(io.MultiWriter(os.Stderr, logger))

	return logger
}

func MustInitDb(cfg config.Config) {
	err := db.Connect(db.ConnectOpts{
		Url:          cfg.DatabaseUrl(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		log.Fatal("Error initializing database: ", err)
	}

	err = db.MigrationsUp(cfg.MigrationsDir)
	if err != nil {
		log.Fatal("Error running migrations: ", err)
	}
}

// MustInitBus uses a Redis stream when REDIS_URL is configured so every server
// instance sees every session change. Otherwise events stay in process.
func MustInitBus(ctx context.Context, cfg config.Config) events.Bus {
	if cfg.Redis.Url == "" {
		log.Println("No redis url set, using in-process session events")
		return events.NewLocalBus()
	}

	client, err := events.NewRedisClient(ctx, cfg.Redis.Url)
	if err != nil {
		log.Fatal("Error connecting to redis: ", err)
	}

	stream := cfg.Redis.Stream
	if stream == "" {
		stream = events.DefaultStream
	}

	log.Printf("Publishing session events to redis stream %s\n", stream)

	return events.NewRedisBus(client, stream)
}

// InitHandlers wires the handlers to either Postgres or the in-memory store.
func InitHandlers(cfg config.Config, bus events.Bus) {
	d := &handlers.Deps{
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		VersionFile:  cfg.VersionFile,
	}

	if cfg.Memory {
		color.New(color.FgHiYellow, color.Bold).Fprintln(os.Stderr, "Running with in-memory storage. Nothing will be persisted.")
		d.Store = store.NewMemoryStore()
		d.Identity = identity.NewMemoryProvider(bus)
	} else {
		d.Store = db.NewPostStore(db.Conn)
		d.Identity = identity.NewDBProvider(db.Conn, bus)
	}

	handlers.Init(d)
}

func StartServer(cfg config.Config) {
	if cfg.IsDev() {
		color.New(color.FgCyan).Fprintln(os.Stderr, "In development mode.")
		log.Println(spew.Sdump(redacted(cfg)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !cfg.Memory {
		MustInitDb(cfg)
	}

	bus := MustInitBus(ctx, cfg)
	InitHandlers(cfg, bus)

	r := routes.NewRouter()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go startServer(server)
	color.New(color.FgGreen, color.Bold).Fprintln(os.Stderr, "Started server on port "+cfg.Port)
	log.Println("Started server on port " + cfg.Port)

	sigTermChan := make(chan os.Signal, 1)
	signal.Notify(sigTermChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigTermChan
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v\n", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("Error closing database: %v\n", err)
	}
}

func redacted(cfg config.Config) config.Config {
	if cfg.Database.Url != "" {
		cfg.Database.Url = "<redacted>"
	}
	if cfg.Database.Password != "" {
		cfg.Database.Password = "<redacted>"
	}
	if cfg.Redis.Url != "" {
		cfg.Redis.Url = "<redacted>"
	}
	return cfg
}

func startServer(server *http.Server) {
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server on %s: %v", server.Addr, err)
	}
}
