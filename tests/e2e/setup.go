//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"space-booking/cmd/bootstrap"
	"space-booking/cmd/bootstrap/components"
	"space-booking/internal/infra/db"
	"space-booking/internal/pkg/config"
	"space-booking/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	testUser     = "test"
	testPassword = "testpass"
)

// Endpoint is a container port mapped onto the docker host.
type Endpoint struct {
	Host string
	Port nat.Port
}

func (e Endpoint) Addr() string { return e.Host + ":" + e.Port.Port() }

// stack is started once per test binary and shared by every suite in it.
type stack struct {
	once     sync.Once
	err      error
	postgres Endpoint
	redis    Endpoint
}

var shared stack

func (s *stack) start(t *testing.T) {
	s.once.Do(func() {
		gin.SetMode(gin.TestMode)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		if s.postgres, s.err = startContainer(ctx, postgresRequest(), "5432/tcp"); s.err != nil {
			return
		}
		s.redis, s.err = startContainer(ctx, redisRequest(), "6379/tcp")
	})
	require.NoError(t, s.err, "e2e containers failed to start")
}

func postgresRequest() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:        "postgres:17",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
			"POSTGRES_DB":       "postgres",
		},
		Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
		Cmd: []string{
			"postgres",
			"-c", "fsync=off",
			"-c", "full_page_writes=off",
			"-c", "synchronous_commit=off",
			"-c", "max_connections=200",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
				testUser, testPassword, host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
		Labels: map[string]string{"purpose": "space-booking-e2e"},
	}
}

func redisRequest() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		Cmd:          []string{"redis-server", "--save", "", "--appendonly", "no"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		Labels:       map[string]string{"purpose": "space-booking-e2e"},
	}
}

// startContainer leaves termination to the testcontainers reaper so that
// later suites in the same binary keep their containers.
func startContainer(ctx context.Context, req testcontainers.ContainerRequest, port string) (Endpoint, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return Endpoint{}, fmt.Errorf("start %s: %w", req.Image, err)
	}
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return Endpoint{}, fmt.Errorf("map %s port: %w", req.Image, err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		return Endpoint{}, fmt.Errorf("resolve %s host: %w", req.Image, err)
	}
	return Endpoint{Host: host, Port: mapped}, nil
}

// createDatabase gives the calling suite a private database, migrated and
// dropped again on cleanup.
func createDatabase(t *testing.T, pg Endpoint) config.DBConfig {
	t.Helper()
	name := "booking_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s/postgres?sslmode=disable", testUser, testPassword, pg.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	admin, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "admin connection failed")
	defer admin.Close()

	// CREATE DATABASE fails while another session is copying template1.
	var createErr error
	for attempt := range 5 {
		if _, createErr = admin.Exec(ctx, "CREATE DATABASE "+name); createErr == nil {
			break
		}
		backoff := min(time.Duration(attempt+1)*500*time.Millisecond, 3*time.Second)
		slog.Warn("retrying database creation", "attempt", attempt+1, "error", createErr.Error(), "retry_wait", backoff)
		time.Sleep(backoff)
	}
	require.NoError(t, createErr, "failed to create test database")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		admin, err := pgxpool.New(ctx, adminDSN)
		if err != nil {
			slog.Warn("cleanup connection failed", "database", name, "error", err.Error())
			return
		}
		defer admin.Close()
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", name, "error", err.Error())
		}
	})

	dbConfig := config.DBConfig{
		Host:     pg.Host,
		Port:     pg.Port.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   name,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 20,
	}
	require.NoError(t, migrate(ctx, dbConfig), "migrations failed")
	return dbConfig
}

// migrate applies migrations/*.sql in file name order.
func migrate(ctx context.Context, dbConfig config.DBConfig) error {
	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	pool, cleanup, err := db.Connect(dbConfig)
	if err != nil {
		return fmt.Errorf("connect for migrations: %w", err)
	}
	defer cleanup()

	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

// findMigrationsDir walks up from the package directory go test runs in.
func findMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		cand := filepath.Join(dir, "migrations")
		if info, err := os.Stat(cand); err == nil && info.IsDir() {
			return cand, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found")
		}
		dir = parent
	}
}

func testConfig(dbConfig config.DBConfig, redis Endpoint) config.Config {
	cfg := config.NewTestConfig()
	cfg.Store.Driver = config.StorePostgres
	cfg.DB = dbConfig
	cfg.Cache = config.CacheConfig{
		Enabled:     true,
		RedisAddr:   redis.Addr(),
		LocationTTL: time.Minute,
	}
	return cfg
}

// buildApp wires the production modules against the suite's database and the
// shared redis.
func buildApp(t *testing.T, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	t.Helper()
	var router *gin.Engine

	app := fx.New(
		fx.Supply(pool, cfg),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		components.PersistenceModule,
		components.CacheModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start fx app")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop fx app", "error", err.Error())
		}
	})
	return router
}

// SharedSuite is embedded by every e2e suite.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	shared.start(t)

	dbConfig := createDatabase(t, shared.postgres)
	pool, cleanup, err := db.Connect(dbConfig)
	require.NoError(t, err, "database connection failed")
	t.Cleanup(cleanup)

	s.DB = pool
	s.Config = testConfig(dbConfig, shared.redis)
	s.Router = buildApp(t, pool, s.Config)
	slog.Info("e2e environment ready", "database", dbConfig.DBName, "redis", shared.redis.Addr())
}

func (s *SharedSuite) SetupTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "failed to reset database state")
}

func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "failed to reset database state")
}
