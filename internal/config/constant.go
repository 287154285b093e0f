package config

var DEFAULT_CONFIG_YAML = `
# ws-cron Configuration File
# ws-cron.yaml
app_name: "ws-cron"
log_level: "info"

# Directory holding crontab.json (per-container cron blocks) and ws-cron.log.
# Defaults to ~/.workspace; the WS_DIR environment variable overrides it.
# data_dir: "/var/lib/ws-cron"

# Command name written into the system crontab. Cron resolves it through PATH.
tool: "ws-cron"

crontab:
  binary: "crontab"
  tmp_dir: ""      # Directory for the file handed to crontab(1); system temp dir if empty

docker:
  socket_path: "/var/run/docker.sock"
  reconnect_delay: 5s

worker:
  resync_interval: 0s   # Periodic full resynchronization, 0 disables it

shutdown:
  timeout: 30s

logger:
  format: "text"   # or "json"
  output: "stdout" # stdout, stderr, file, null
  file_path: ""    # /var/log/ws-cron.log when output is file and empty
  timestamp_format: "2006-01-02T15:04:05.000Z"
  show_caller: false
  colors: false

job_log:
  path: ""         # <data_dir>/ws-cron.log if empty

metrics:
  listen: ""       # e.g. "127.0.0.1:9310", empty disables /metrics and /healthz

watch:
  path: ""         # Directory of the ws-cron executable if empty
  debounce: 500ms
`
