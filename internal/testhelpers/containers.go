// Container stack for integration tests and the local dev stack. Reads its
// settings from the environment, usually loaded from a .env file.

package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/localnerve/jam-build-rentals/data"
	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbAlias         = "db"
	authorizerAlias = "authorizer"
)

// StackOptions selects the containers StartStack runs. The database always runs.
type StackOptions struct {
	Authorizer bool
	Rentals    bool
}

// Containers is a running stack
type Containers struct {
	Network    *testcontainers.DockerNetwork
	DB         testcontainers.Container
	Authorizer testcontainers.Container
	Rentals    testcontainers.Container

	dbType string
	dbPort nat.Port
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dbType() string {
	return env("DB_TYPE", "postgres")
}

func defaultDBPort(kind string) string {
	if kind == "postgres" {
		return "5432"
	}
	return "3306"
}

func defaultDBImage(kind string) string {
	if kind == "postgres" {
		return "postgres:17-alpine"
	}
	return "mariadb:11"
}

// Terminate stops every container that started and removes the network
func (c *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	for name, ctr := range map[string]testcontainers.Container{
		"rentals":    c.Rentals,
		"authorizer": c.Authorizer,
	} {
		if ctr != nil {
			if err := ctr.Terminate(ctx); err != nil {
				logMessage(t, "Failed to terminate %s: %v", name, err)
			}
		}
	}
	if c.DB != nil {
		if err := c.DB.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if c.Network != nil {
		if err := c.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// DBConfig is a service configuration pointing at the database's mapped port
func (c *Containers) DBConfig(ctx context.Context) (*config.Config, error) {
	host, err := c.DB.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := c.DB.MappedPort(ctx, c.dbPort)
	if err != nil {
		return nil, err
	}
	cfg := NewTestConfig()
	cfg.DBType = c.dbType
	cfg.DBHost = host
	cfg.DBPort = port.Port()
	cfg.DBDatabase = env("DB_DATABASE", "rentals")
	cfg.DBUser = env("DB_USER", "rentals")
	cfg.DBPassword = env("DB_PASSWORD", "rentals")
	cfg.DBConnectionLimit = 5
	return cfg, nil
}

// AuthorizerURL is the host address of the Authorizer container
func (c *Containers) AuthorizerURL(ctx context.Context) (string, error) {
	if c.Authorizer == nil {
		return "", fmt.Errorf("authorizer is not running")
	}
	host, err := c.Authorizer.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := c.Authorizer.MappedPort(ctx, nat.Port(env("AUTHZ_PORT", "8080")+"/tcp"))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}

// StartStack starts the database and the selected containers on a private network
func StartStack(ctx context.Context, t *testing.T, opts StackOptions) (*Containers, error) {
	stack := &Containers{dbType: dbType()}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	stack.Network = nw

	if err := stack.startDB(ctx, t); err != nil {
		stack.Terminate(t)
		return nil, err
	}
	if opts.Authorizer {
		if err := stack.startAuthorizer(ctx, t); err != nil {
			stack.Terminate(t)
			return nil, err
		}
	}
	if opts.Rentals {
		if err := stack.startRentals(ctx, t); err != nil {
			stack.Terminate(t)
			return nil, err
		}
	}
	return stack, nil
}

func (c *Containers) startDB(ctx context.Context, t *testing.T) error {
	port, err := nat.NewPort("tcp", env("DB_PORT", defaultDBPort(c.dbType)))
	if err != nil {
		return fmt.Errorf("failed to create database port: %w", err)
	}
	c.dbPort = port

	var environment map[string]string
	var ready wait.Strategy
	if c.dbType == "postgres" {
		environment = map[string]string{
			"POSTGRES_DB":       env("DB_DATABASE", "rentals"),
			"POSTGRES_USER":     env("DB_USER", "rentals"),
			"POSTGRES_PASSWORD": env("DB_PASSWORD", "rentals"),
		}
		ready = wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second)
	} else {
		environment = map[string]string{
			"MARIADB_ROOT_PASSWORD": env("DB_ROOT_PASSWORD", "root"),
			"MARIADB_DATABASE":      env("DB_DATABASE", "rentals"),
			"MARIADB_USER":          env("DB_USER", "rentals"),
			"MARIADB_PASSWORD":      env("DB_PASSWORD", "rentals"),
		}
		ready = wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second)
	}

	db, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          env("DB_IMAGE", defaultDBImage(c.dbType)),
			ExposedPorts:   []string{string(port)},
			Env:            environment,
			WaitingFor:     ready,
			Networks:       []string{c.Network.Name},
			NetworkAliases: map[string][]string{c.Network.Name: {dbAlias}},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start database: %w", err)
	}
	c.DB = db

	return c.initDB(ctx, t)
}

// initDB runs the bootstrap script as the database superuser
func (c *Containers) initDB(ctx context.Context, t *testing.T) error {
	host, _ := c.DB.Host(ctx)
	mapped, err := c.DB.MappedPort(ctx, c.dbPort)
	if err != nil {
		return err
	}

	driver, dsn, script := "pgx", fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		env("DB_USER", "rentals"), env("DB_PASSWORD", "rentals"), host, mapped.Port(), env("DB_DATABASE", "rentals")), data.InitdbPostgres
	if c.dbType != "postgres" {
		driver, dsn, script = "mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/",
			env("DB_ROOT_PASSWORD", "root"), host, mapped.Port()), data.InitdbMariaDB
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database for setup: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	for _, stmt := range SQLStatements(script) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w : when executing > %s", err, stmt)
		}
	}
	logMessage(t, "Database %s initialized", c.dbType)
	return nil
}

func (c *Containers) startAuthorizer(ctx context.Context, t *testing.T) error {
	port, err := nat.NewPort("tcp", env("AUTHZ_PORT", "8080"))
	if err != nil {
		return fmt.Errorf("failed to create Authorizer port: %w", err)
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/authorizer?sslmode=disable",
		env("DB_USER", "rentals"), env("DB_PASSWORD", "rentals"), dbAlias, c.dbPort.Port())
	if c.dbType != "postgres" {
		dbURL = fmt.Sprintf("root:%s@tcp(%s:%s)/authorizer",
			env("DB_ROOT_PASSWORD", "root"), dbAlias, c.dbPort.Port())
	}
	logLevel := "info"
	if os.Getenv("DEBUG_CONTAINER") == "true" {
		logLevel = "debug"
	}

	authz, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        env("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(port)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     env("AUTHZ_CLIENT_ID", "rentals-test"),
				"PORT":          port.Port(),
				"DATABASE_TYPE": c.dbType,
				"DATABASE_NAME": "authorizer",
				"DATABASE_URL":  dbURL,
				"ADMIN_SECRET":  env("AUTHZ_ADMIN_SECRET", "admin-secret"),
				"JWT_TYPE":      "HS256",
				"JWT_SECRET":    env("AUTHZ_JWT_SECRET", "rentals-jwt-secret"),
				"ROLES":         "user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     logLevel,
			},
			WaitingFor:     wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:       []string{c.Network.Name},
			NetworkAliases: map[string][]string{c.Network.Name: {authorizerAlias}},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start Authorizer: %w", err)
	}
	c.Authorizer = authz

	host, _ := authz.Host(ctx)
	mapped, _ := authz.MappedPort(ctx, port)
	logMessage(t, "AUTHZ_URL=http://%s:%s", host, mapped.Port())
	return nil
}

// startRentals runs a prebuilt service image. A missing image is not an error.
func (c *Containers) startRentals(ctx context.Context, t *testing.T) error {
	imageName := env("RENTALS_IMAGE", "jam-build-rentals:latest")
	exists, err := imageExists(ctx, imageName)
	if err != nil {
		return fmt.Errorf("failed to check if image exists: %w", err)
	}
	if !exists {
		logMessage(t, "Image %s does not exist, skipping the service container", imageName)
		return nil
	}

	port, err := nat.NewPort("tcp", env("PORT", "3000"))
	if err != nil {
		return fmt.Errorf("failed to create service port: %w", err)
	}
	debug := os.Getenv("DEBUG_CONTAINER") == "true"
	exposed := []string{string(port)}
	if debug {
		exposed = append(exposed, "2345/tcp")
	}

	rentals, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        imageName,
			ExposedPorts: exposed,
			Env: map[string]string{
				"DB_TYPE":          c.dbType,
				"DB_HOST":          dbAlias,
				"DB_PORT":          c.dbPort.Port(),
				"DB_DATABASE":      env("DB_DATABASE", "rentals"),
				"DB_USER":          env("DB_USER", "rentals"),
				"DB_PASSWORD":      env("DB_PASSWORD", "rentals"),
				"AUTHZ_URL":        fmt.Sprintf("http://%s:%s", authorizerAlias, env("AUTHZ_PORT", "8080")),
				"AUTHZ_CLIENT_ID":  env("AUTHZ_CLIENT_ID", "rentals-test"),
				"AUTHZ_JWT_SECRET": env("AUTHZ_JWT_SECRET", "rentals-jwt-secret"),
				"PORT":             port.Port(),
			},
			HostConfigModifier: func(hostConfig *container.HostConfig) {
				if debug {
					hostConfig.PortBindings = nat.PortMap{
						"2345/tcp": []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: "2345"}},
					}
					hostConfig.CapAdd = []string{"SYS_PTRACE"}
				}
			},
			WaitingFor: wait.ForHTTP("/metrics").WithPort(port).WithStartupTimeout(30 * time.Second),
			Networks:   []string{c.Network.Name},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start rentals: %w", err)
	}
	c.Rentals = rentals

	host, _ := rentals.Host(ctx)
	mapped, _ := rentals.MappedPort(ctx, port)
	logMessage(t, "BASE_URL=http://%s:%s", host, mapped.Port())
	return nil
}

// SQLStatements splits a script into statements, dropping -- comments that are
// not inside a quoted string
func SQLStatements(script string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	for _, line := range strings.Split(script, "\n") {
		runes := []rune(line)
		for i := 0; i < len(runes); i++ {
			r := runes[i]
			switch {
			case quote != 0:
				if r == quote {
					quote = 0
				}
				cur.WriteRune(r)
			case r == '\'' || r == '"':
				quote = r
				cur.WriteRune(r)
			case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
				i = len(runes)
			case r == ';':
				if stmt := strings.TrimSpace(cur.String()); stmt != "" {
					out = append(out, stmt)
				}
				cur.Reset()
			default:
				cur.WriteRune(r)
			}
		}
		cur.WriteRune(' ')
	}
	if stmt := strings.TrimSpace(cur.String()); stmt != "" {
		out = append(out, stmt)
	}
	return out
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}
	return false, nil
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
