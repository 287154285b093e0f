package docker

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
	dockerClient "github.com/docker/docker/client"
)

// Get default Docker socket path based on OS
func getDefaultSocketPath() string {
	if runtime.GOOS == "windows" {
		// Docker Desktop usually uses named pipe
		return "npipe:////./pipe/docker_engine"
	}
	return "unix:///var/run/docker.sock"
}

// connect opens a client on socketPath, DOCKER_HOST or the platform
// default, and falls back to the well known alternatives when the first
// choice does not answer a ping
func connect(ctx context.Context, socketPath string, log logger.Logger) (*dockerClient.Client, error) {
	opts := []dockerClient.Opt{dockerClient.WithAPIVersionNegotiation()}
	switch {
	case os.Getenv("DOCKER_HOST") != "":
		opts = append(opts, dockerClient.FromEnv)
	case socketPath != "":
		opts = append(opts, dockerClient.WithHost("unix://"+socketPath))
	default:
		opts = append(opts, dockerClient.WithHost(getDefaultSocketPath()))
	}

	cli, err := dockerClient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	// Test connection
	if _, err = cli.Ping(ctx); err == nil {
		return cli, nil
	}
	cli.Close()

	log.Warn("Docker connection test failed %s", err.Error())
	log.Debug("Trying alternative Docker socket paths...")
	return tryAlternativeSocketPaths(ctx)
}

// Try alternative socket paths
func tryAlternativeSocketPaths(ctx context.Context) (*dockerClient.Client, error) {
	alternativePaths := []string{
		"unix:///var/run/docker.sock",
		"unix:///run/docker.sock",
	}
	if runtime.GOOS == "windows" {
		alternativePaths = []string{
			"npipe:////./pipe/docker_engine",
			"unix://" + `\\wsl$\docker-desktop-data\version-pack-data\community\docker\docker.sock`,
			"unix://" + `\\wsl.localhost\docker-desktop-data\version-pack-data\community\docker\docker.sock`,
		}
	}
	if home, err := os.UserHomeDir(); err == nil && runtime.GOOS != "windows" {
		// Rootless docker and Docker Desktop on macOS
		alternativePaths = append(alternativePaths,
			"unix://"+home+"/.docker/run/docker.sock",
			fmt.Sprintf("unix:///run/user/%d/docker.sock", os.Getuid()),
		)
	}

	var lastErr error
	for _, path := range alternativePaths {
		cli, err := dockerClient.NewClientWithOpts(
			dockerClient.WithHost(path),
			dockerClient.WithAPIVersionNegotiation(),
		)
		if err != nil {
			lastErr = err
			continue
		}

		// Test connection
		_, err = cli.Ping(ctx)
		if err != nil {
			cli.Close()
			lastErr = err
			continue
		}

		return cli, nil
	}

	return nil, fmt.Errorf("failed to connect to Docker using any socket path. Last error: %w", lastErr)
}
