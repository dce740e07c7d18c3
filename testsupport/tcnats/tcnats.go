package tcnats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupNats starts a jetstream enabled NATS server and returns its client url.
// The test is skipped if no container runtime is available.
func SetupNats(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	port, err := nat.NewPort("tcp", "4222")
	if err != nil {
		t.Fatal(err)
	}
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "nats:2.10",
				Cmd:          []string{"-js"},
				ExposedPorts: []string{string(port)},
				WaitingFor: wait.ForLog("Server is ready").
					WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatal(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("nats://%s:%s", host, mapped.Port())
}
