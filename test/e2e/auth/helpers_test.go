//go:build e2e

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for tokengate end-to-end tests.
 * This includes container setup and assertions.
 */

const (
	testImageName = "tokengate-test:latest"
	redisImage    = "redis:7-alpine"

	testUsername = "j.jameson"
	testPassword = "password"
)

// relaxedLimits keeps tests that make many rapid requests clear of the
// production rate limits.
var relaxedLimits = map[string]string{
	"RATELIMIT_LOGIN_REQUESTS":   "1000",
	"RATELIMIT_LOGIN_WINDOW_SEC": "60",
	"RATELIMIT_LOGIN_BURST":      "1000",
	"RATELIMIT_SESSION_REQUESTS": "1000",
	"RATELIMIT_SESSION_BURST":    "1000",
}

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building tokengate Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up tokengate Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

type containerOption func(*testcontainers.ContainerRequest)

func withEnv(env map[string]string) containerOption {
	return func(req *testcontainers.ContainerRequest) {
		for k, v := range env {
			req.Env[k] = v
		}
	}
}

func withNetwork(name, alias string) containerOption {
	return func(req *testcontainers.ContainerRequest) {
		req.Networks = append(req.Networks, name)
		if alias != "" {
			req.NetworkAliases = map[string][]string{name: {alias}}
		}
	}
}

// setupAuthContainer starts tokengate in a container with one seeded user
// and returns its base URL.
func setupAuthContainer(t *testing.T, opts ...containerOption) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8443/tcp"},
		Env: map[string]string{
			"AUTH_ADDR":       ":8443",
			"AUTH_DB_PATH":    "/data/tokengate.db",
			"AUTH_ISSUER":     "tokengate-e2e",
			"AUTH_SEED_USERS": testUsername + ":" + testPassword + ":ROLE_USER|ROLE_ADMIN",
			"AUTH_ENV":        "test",
			"AUTH_LOG_LEVEL":  "info",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8443/tcp").
			WithStartupTimeout(60 * time.Second),
	}
	for _, opt := range opts {
		opt(&req)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8443")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// setupRedis starts Redis on a fresh network and returns the network name
// and the address tokengate should dial.
func setupRedis(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Remove(ctx) })

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          redisImage,
			ExposedPorts:   []string{"6379/tcp"},
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"redis"}},
			WaitingFor:     wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	return nw.Name, "redis:6379"
}

func newClient(baseURL string) *authsdk.Client {
	return authsdk.NewClient(baseURL, authsdk.WithTimeout(10*time.Second))
}

// requireAPIError asserts err is an APIError with the given status and code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "want APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	if code != "" {
		require.Equal(t, code, apiErr.Code)
	}
}
