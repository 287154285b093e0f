package types

import "time"

// DockerConfig for container monitoring
type DockerConfig struct {
	SocketPath     string        `mapstructure:"socket_path"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}
