package types

import "time"

type WorkerConfig struct {
	ResyncInterval time.Duration `mapstructure:"resync_interval"` // 0 disables periodic full passes
}

type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// WatchConfig for the watch supervisor
type WatchConfig struct {
	Path     string        `mapstructure:"path"` // Defaults to the directory of the executable
	Debounce time.Duration `mapstructure:"debounce"`
}
