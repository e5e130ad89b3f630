package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"clinic/backend/internal/config"
	"clinic/backend/internal/lock"
	"clinic/backend/internal/service/appointments"
	"clinic/backend/internal/service/availability"
	"clinic/backend/internal/service/directory"
	"clinic/backend/internal/service/unavailability"
	"clinic/backend/internal/store"
	"clinic/backend/internal/store/memory"
	"clinic/backend/internal/store/postgres"
	grpcTransport "clinic/backend/internal/transport/grpc"
	httpTransport "clinic/backend/internal/transport/http"
)

const readinessInterval = 10 * time.Second

type repositories struct {
	doctors        store.DoctorRepository
	services       store.ServiceRepository
	appointments   store.AppointmentRepository
	unavailability store.UnavailabilityRepository
	health         []httpTransport.Dependency
	close          func()
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "clinic-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "clinic-server"),
	)
	slog.SetDefault(log)

	log.Info(
		"starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr),
		slog.String("log_level", cfg.LogLevel),
		slog.Bool("expand_recurring", cfg.ExpandRecurring),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(log, cfg)
	if err != nil {
		os.Exit(1)
	}
	defer repos.close()

	var locker lock.Locker = lock.Noop{}
	if cfg.RedisEnabled() {
		client, err := lock.NewRedisClient(ctx, lock.RedisOptions{
			URL:      cfg.RedisURL,
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Error("redis connection failed", slog.Any("err", err))
			os.Exit(1)
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}()
		locker = lock.NewRedisLocker(client, cfg.RedisLockTTL, log)
		repos.health = append(repos.health, httpTransport.Dependency{
			Name:     "redis",
			Ping:     redisPing(client),
			Optional: true,
		})
		log.Info("redis doctor lock enabled", slog.Duration("lock_ttl", cfg.RedisLockTTL))
	}

	handler := httpTransport.NewRouter(httpTransport.RouterConfig{
		Doctors:  directory.NewDoctors(repos.doctors),
		Services: directory.NewServices(repos.services, repos.doctors),
		Appointments: appointments.NewService(repos.appointments,
			appointments.WithLocker(locker),
			appointments.WithRecurringExpansion(cfg.ExpandRecurring),
		),
		Availability: availability.NewService(repos.appointments,
			availability.WithRecurringExpansion(cfg.ExpandRecurring),
		),
		Unavailability: unavailability.NewService(repos.unavailability, repos.doctors),
		Health:         repos.health,
		Log:            log,
		RequestTimeout: cfg.HTTPRequestTimeout,
		RateLimit:      cfg.HTTPRateLimit,
		CORSOrigins:    cfg.CORSOrigins,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTPRequestTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var grpcServer *grpcTransport.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr))
			os.Exit(1)
		}
		grpcServer = grpcTransport.NewServer(log, cfg.GRPCRequestTimeout)
		g.Go(func() error {
			log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr))
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			grpcServer.WatchReadiness(gctx, readinessInterval, httpTransport.RequiredReady(repos.health))
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			grpcServer.Shutdown(cfg.ShutdownTimeout)
		}
		log.Info("shutting down http server", slog.Duration("timeout", cfg.ShutdownTimeout))
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http graceful shutdown failed; closing", slog.Any("err", err))
			return httpServer.Close()
		}
		log.Info("http server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
}

// openRepositories connects to Postgres when a database url is configured and
// falls back to the in-memory store otherwise.
func openRepositories(log *slog.Logger, cfg config.Config) (repositories, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database url configured; using in-memory store")
		st := memory.New()
		return repositories{
			doctors:        st,
			services:       st,
			appointments:   st,
			unavailability: st,
			health:         []httpTransport.Dependency{{Name: "memory", Ping: st.Ping}},
			close:          func() {},
		}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return repositories{}, err
	}

	return repositories{
		doctors:        postgres.NewDoctorRepo(db),
		services:       postgres.NewServiceRepo(db),
		appointments:   postgres.NewAppointmentRepo(db),
		unavailability: postgres.NewUnavailabilityRepo(db),
		health:         []httpTransport.Dependency{{Name: "postgres", Ping: postgres.NewPinger(db).Ping}},
		close: func() {
			if err := postgres.Close(db); err != nil {
				log.Warn("database close failed", slog.Any("err", err))
			}
		},
	}, nil
}

func redisPing(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
