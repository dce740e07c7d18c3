package tcpostgres

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultImage = "postgres:16-alpine"

var pgPort = nat.Port("5432/tcp")

type (
	// PostgresContainer is a running postgres instance holding the race archive.
	PostgresContainer struct {
		testcontainers.Container
		creds credentials
	}
	credentials struct {
		user     string
		password string
		dbName   string
	}
	containerConfig struct {
		req   testcontainers.ContainerRequest
		creds credentials
		reuse bool
	}
	PostgresContainerOption func(cfg *containerConfig)
)

func WithImage(image string) PostgresContainerOption {
	return func(cfg *containerConfig) {
		cfg.req.Image = image
	}
}

func WithName(containerName string) PostgresContainerOption {
	return func(cfg *containerConfig) {
		cfg.req.Name = containerName
		cfg.reuse = containerName != ""
	}
}

func WithCredentials(user, password, dbName string) PostgresContainerOption {
	return func(cfg *containerConfig) {
		cfg.creds = credentials{user: user, password: password, dbName: dbName}
	}
}

func WithStartupTimeout(timeout time.Duration) PostgresContainerOption {
	return func(cfg *containerConfig) {
		// postgres restarts once after running the init scripts
		cfg.req.WaitingFor = wait.ForAll(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort(pgPort),
		).WithDeadline(timeout)
	}
}

// SetupPostgres starts (or reuses, if named) a postgres container.
func SetupPostgres(ctx context.Context, opts ...PostgresContainerOption) (
	*PostgresContainer, error,
) {
	cfg := &containerConfig{
		req: testcontainers.ContainerRequest{
			Image:        defaultImage,
			ExposedPorts: []string{string(pgPort)},
			Cmd:          []string{"postgres", "-c", "fsync=off"},
		},
		creds: credentials{user: "postgres", password: "password", dbName: "postgres"},
	}
	WithStartupTimeout(time.Minute)(cfg)
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.req.Env = map[string]string{
		"POSTGRES_USER":     cfg.creds.user,
		"POSTGRES_PASSWORD": cfg.creds.password,
		"POSTGRES_DB":       cfg.creds.dbName,
	}

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: cfg.req,
			Started:          true,
			Reuse:            cfg.reuse,
		})
	if err != nil {
		return nil, err
	}
	return &PostgresContainer{Container: container, creds: cfg.creds}, nil
}

// ConnString returns the url of the database inside the container.
func (c *PostgresContainer) ConnString(ctx context.Context) (string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	mapped, err := c.MappedPort(ctx, pgPort)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.creds.user, c.creds.password, host, mapped.Port(), c.creds.dbName), nil
}
