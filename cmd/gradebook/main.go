// Command gradebook serves the gradebook gRPC API backed by SQLite.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Keksclan/gradebook"
	"github.com/Keksclan/gradebook/api"
	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/config"
	"github.com/Keksclan/gradebook/logging"
	"github.com/Keksclan/gradebook/service"
	"github.com/Keksclan/gradebook/store/sqlite"
	"github.com/Keksclan/gradebook/tracing"
	"go.uber.org/zap"
)

type cliFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	flags := parseFlags()
	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "gradebook: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", os.Getenv("GRADEBOOK_CONFIG"), "Path to the YAML configuration file")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	flag.StringVar(&f.logFormat, "log-format", "", "Log format (json, console); overrides the config")
	flag.Parse()
	return f
}

func loadConfig(f cliFlags) (*config.Config, error) {
	cfg := config.Defaults()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}

func run(f cliFlags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing database", zap.Error(err))
		}
	}()

	caches := newCaches(cfg)
	defer func() {
		for _, c := range caches.All() {
			c.Shutdown()
		}
	}()

	set := service.NewSet(service.Repositories{
		Students:   db.Students(),
		Groups:     db.Groups(),
		Subjects:   db.Subjects(),
		Marks:      db.Marks(),
		Enrollment: db.Enrollment(),
	}, caches, log)

	opts := gradebook.DefaultOptions(log)
	if cfg.Tracing.Enabled {
		tc := &tracing.Config{}
		if cfg.Tracing.Stdout {
			var flush func(context.Context) error
			tc, flush, err = tracing.StdoutProvider(os.Stdout)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = flush(sctx)
			}()
		}
		opts = append(opts, gradebook.WithOpenTelemetry(tc))
	}
	if cfg.RateLimit.RPS > 0 {
		opts = append(opts, gradebook.WithRateLimitGlobal(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	opts = append(opts,
		gradebook.WithPolicies(cfg.RateLimit.Policies()...),
		gradebook.WithTimeout(cfg.Server.Timeout.Std()),
	)

	srv := gradebook.NewServer(opts...)
	svcs := api.Services{
		Students:   set.Students,
		Groups:     set.Groups,
		Subjects:   set.Subjects,
		Marks:      set.Marks,
		Enrollment: set.Enrollment,
	}
	if path, ok := cfg.Log.File(); ok {
		svcs.Logs = logging.FileSource{Path: path}
	}
	srv.Register(svcs)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
	}

	errc := make(chan error, 2)
	go func() { errc <- srv.GRPC().Serve(lis) }()
	log.Info("grpc server started",
		zap.String("addr", lis.Addr().String()),
		zap.Strings("middleware", srv.Middleware()),
	)

	var metrics *http.Server
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", srv.MetricsHandler())
		metrics = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metrics.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
		log.Info("metrics server started", zap.String("addr", cfg.Server.MetricsAddr))
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errc:
		log.Error("server failed", zap.Error(err))
	}

	stopServers(log, srv, metrics, cfg.Server.ShutdownTimeout.Std())
	return err
}

func newCaches(cfg *config.Config) service.Caches {
	c := func(name string) *cache.Cache[string, any] {
		return cache.New[string, any](cfg.CacheConfig(name))
	}
	return service.Caches{
		Students:   c(config.CacheStudents),
		Groups:     c(config.CacheGroups),
		Subjects:   c(config.CacheSubjects),
		Marks:      c(config.CacheMarks),
		Enrollment: c(config.CacheEnrollment),
	}
}

// stopServers drains the gRPC server, forcing a stop after timeout.
func stopServers(log *zap.Logger, srv *gradebook.Server, metrics *http.Server, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if metrics != nil {
		if err := metrics.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("graceful stop timed out, forcing")
		srv.GRPC().Stop()
	}
}
