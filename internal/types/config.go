package types

type Config struct {
	AppName  string         `mapstructure:"app_name"`
	LogLevel string         `mapstructure:"log_level"`
	DataDir  string         `mapstructure:"data_dir"`
	Tool     string         `mapstructure:"tool"`
	Crontab  CrontabConfig  `mapstructure:"crontab"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Docker   DockerConfig   `mapstructure:"docker"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	JobLog   JobLogConfig   `mapstructure:"job_log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Watch    WatchConfig    `mapstructure:"watch"`

	// ConfigFile is the file the configuration was read from, if any
	ConfigFile string `mapstructure:"-"`
}

// CrontabConfig locates the system crontab binary
type CrontabConfig struct {
	Binary string `mapstructure:"binary"`
	TmpDir string `mapstructure:"tmp_dir"`
}

// JobLogConfig for the output of dispatched commands
type JobLogConfig struct {
	Path string `mapstructure:"path"` // Defaults to <data_dir>/ws-cron.log
}

// MetricsConfig for the prometheus endpoint of the process daemon
type MetricsConfig struct {
	Listen string `mapstructure:"listen"` // Empty disables the endpoint
}
