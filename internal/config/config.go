// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/internal/types"
	"github.com/spf13/viper"
)

const (
	configName = "ws-cron"
	envPrefix  = "WS_CRON"

	// legacyDataDirEnv overrides data_dir, kept for existing installations
	legacyDataDirEnv = "WS_DIR"

	// JobLogName is the job log file inside the data directory
	JobLogName = "ws-cron.log"
)

// Default configuration values
var defaultConfig = types.Config{
	AppName:  "ws-cron",
	LogLevel: "info",
	DataDir:  "",
	Tool:     "ws-cron",
	Crontab: types.CrontabConfig{
		Binary: "crontab",
	},
	Worker: types.WorkerConfig{
		ResyncInterval: 0,
	},
	Docker: types.DockerConfig{
		SocketPath:     "/var/run/docker.sock",
		ReconnectDelay: 5 * time.Second,
	},
	Shutdown: types.ShutdownConfig{
		Timeout: 30 * time.Second,
	},
	Logger: types.LoggerConfig{
		Level:           "",
		Format:          "text",
		Output:          "stdout",
		FilePath:        "",
		TimestampFormat: "2006-01-02 15:04:05.000",
		ShowCaller:      false,
		Colors:          true,
	},
	Watch: types.WatchConfig{
		Debounce: 500 * time.Millisecond,
	},
}

// getSystemConfigPath returns the OS-specific configuration directory
func getSystemConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %PROGRAMDATA%\ws-cron
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = "C:\\ProgramData"
		}
		configDir = filepath.Join(programData, "ws-cron")

	case "darwin":
		// macOS: /Library/Application Support/ws-cron
		configDir = "/Library/Application Support/ws-cron"

	case "linux", "freebsd", "openbsd", "netbsd":
		// Unix-like: /etc/ws-cron
		configDir = "/etc/ws-cron"

	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return configDir, nil
}

// getConfigDirs returns all directories searched for the configuration file
// in order of precedence
func getConfigDirs() ([]string, error) {
	systemConfigDir, err := getSystemConfigPath()
	if err != nil {
		return nil, err
	}

	// 1. Current directory (for development and testing)
	dirs := []string{"."}

	// 2. User's home directory (~/.config/ws-cron/)
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "ws-cron"))
	}

	// 3. System-wide configuration directory
	dirs = append(dirs, systemConfigDir)

	return dirs, nil
}

// defaultDataDir is ~/.workspace, the location used by earlier releases
func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".workspace")
	}
	return filepath.Join(os.TempDir(), ".workspace")
}

// Load loads configuration from file, environment variables, or defaults.
// An explicit file path disables the search.
func Load(file string) (*types.Config, error) {
	v := viper.New()
	v.SetConfigName(configName) // Name of config file (without extension)
	v.SetConfigType("yaml")     // REQUIRED if the config file does not have the extension in the name

	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dirs, err := getConfigDirs()
		if err != nil {
			return nil, fmt.Errorf("failed to get config paths: %w", err)
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
	}

	// Try to read configuration file
	if err := v.ReadInConfig(); err != nil {
		// If file doesn't exist, we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables: WS_CRON_DOCKER_SOCKET_PATH -> docker.socket_path
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("data_dir", envPrefix+"_DATA_DIR", legacyDataDirEnv); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", legacyDataDirEnv, err)
	}

	// Unmarshal configuration into struct
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	applyDerivedDefaults(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", defaultConfig.AppName)
	v.SetDefault("log_level", defaultConfig.LogLevel)
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("tool", defaultConfig.Tool)
	v.SetDefault("crontab.binary", defaultConfig.Crontab.Binary)
	v.SetDefault("crontab.tmp_dir", defaultConfig.Crontab.TmpDir)
	v.SetDefault("worker.resync_interval", defaultConfig.Worker.ResyncInterval)
	v.SetDefault("docker.socket_path", defaultConfig.Docker.SocketPath)
	v.SetDefault("docker.reconnect_delay", defaultConfig.Docker.ReconnectDelay)
	v.SetDefault("shutdown.timeout", defaultConfig.Shutdown.Timeout)
	v.SetDefault("logger.level", defaultConfig.Logger.Level)
	v.SetDefault("logger.format", defaultConfig.Logger.Format)
	v.SetDefault("logger.output", defaultConfig.Logger.Output)
	v.SetDefault("logger.file_path", defaultConfig.Logger.FilePath)
	v.SetDefault("logger.timestamp_format", defaultConfig.Logger.TimestampFormat)
	v.SetDefault("logger.show_caller", defaultConfig.Logger.ShowCaller)
	v.SetDefault("logger.colors", defaultConfig.Logger.Colors)
	v.SetDefault("job_log.path", "")
	v.SetDefault("metrics.listen", "")
	v.SetDefault("watch.path", "")
	v.SetDefault("watch.debounce", defaultConfig.Watch.Debounce)
}

func applyDerivedDefaults(cfg *types.Config) {
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = cfg.LogLevel
	}
	if cfg.JobLog.Path == "" {
		cfg.JobLog.Path = filepath.Join(cfg.DataDir, JobLogName)
	}
	if cfg.Tool == "" {
		cfg.Tool = defaultConfig.Tool
	}
}

// GetSystemConfigDir returns the system-wide configuration directory
func GetSystemConfigDir() (string, error) {
	return getSystemConfigPath()
}

// CreateDefaultConfig writes the default configuration file into dir, the
// system configuration directory when dir is empty. It returns the path written.
func CreateDefaultConfig(dir string) (string, error) {
	if dir == "" {
		systemConfigDir, err := getSystemConfigPath()
		if err != nil {
			return "", err
		}
		dir = systemConfigDir
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(dir, configName+".yaml")

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return "", errors.New("config file already exists")
	}

	if err := os.WriteFile(configPath, []byte(DEFAULT_CONFIG_YAML), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}
