// Package config handles environment-based configuration loading for both
// the emulator and the controller binaries.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EmulatorEnvConfig holds the Emulator process's environment-driven settings.
type EmulatorEnvConfig struct {
	ListenAddress string
	Port          int

	StateDir string // holds events.db
	LogDir   string

	APIMaxBodyBytes int64

	// Mobility bootstrap
	NumUsers     int
	NumCells     int
	NumEDCs      int
	SimBounds    float64 // half-side of the square simulation area
	UserVelocity float64
	CellRadius   float64
	IPPoolCIDR   string // e.g. "10.0.0.0/16"

	// Tick
	TickInterval time.Duration

	// Request log
	RequestLogDBMaxMB     int
	RequestLogRetainCount int

	AdminToken string
}

// LoadEmulatorEnvConfig reads MNE_* environment variables and returns a
// validated EmulatorEnvConfig.
func LoadEmulatorEnvConfig() (*EmulatorEnvConfig, error) {
	cfg := &EmulatorEnvConfig{}
	var errs []string

	cfg.ListenAddress = strings.TrimSpace(envStr("MNE_LISTEN_ADDRESS", "0.0.0.0"))
	cfg.Port = envInt("MNE_PORT", 8080, &errs)
	cfg.StateDir = envStr("MNE_STATE_DIR", "/var/lib/mnedge")
	cfg.LogDir = envStr("MNE_LOG_DIR", "/var/log/mnedge")
	cfg.APIMaxBodyBytes = int64(envInt("MNE_API_MAX_BODY_BYTES", 1<<20, &errs))

	cfg.NumUsers = envInt("MNE_NUM_USERS", 50, &errs)
	cfg.NumCells = envInt("MNE_NUM_CELLS", 5, &errs)
	cfg.NumEDCs = envInt("MNE_NUM_EDCS", 3, &errs)
	cfg.SimBounds = envFloat("MNE_SIM_BOUNDS", 500, &errs)
	cfg.UserVelocity = envFloat("MNE_USER_VELOCITY", 2.0, &errs)
	cfg.CellRadius = envFloat("MNE_CELL_RADIUS", 100, &errs)
	cfg.IPPoolCIDR = envStr("MNE_IP_POOL_CIDR", "10.0.0.0/16")

	cfg.TickInterval = envDuration("MNE_TICK_INTERVAL", 2*time.Second, &errs)

	cfg.RequestLogDBMaxMB = envInt("MNE_REQUEST_LOG_DB_MAX_MB", 64, &errs)
	cfg.RequestLogRetainCount = envInt("MNE_REQUEST_LOG_DB_RETAIN_COUNT", 3, &errs)

	adminToken, hasAdminToken := os.LookupEnv("MNE_ADMIN_TOKEN")
	if hasAdminToken {
		cfg.AdminToken = adminToken
	}

	validatePort("MNE_PORT", cfg.Port, &errs)
	validatePositive("MNE_API_MAX_BODY_BYTES", int(cfg.APIMaxBodyBytes), &errs)
	validatePositive("MNE_NUM_CELLS", cfg.NumCells, &errs)
	validatePositive("MNE_NUM_EDCS", cfg.NumEDCs, &errs)
	if cfg.NumUsers < 0 {
		errs = append(errs, "MNE_NUM_USERS: must be non-negative")
	}
	if cfg.SimBounds <= 0 {
		errs = append(errs, "MNE_SIM_BOUNDS: must be positive")
	}
	if cfg.CellRadius <= 0 {
		errs = append(errs, "MNE_CELL_RADIUS: must be positive")
	}
	if cfg.TickInterval <= 0 {
		errs = append(errs, "MNE_TICK_INTERVAL: must be positive")
	}
	validatePositive("MNE_REQUEST_LOG_DB_MAX_MB", cfg.RequestLogDBMaxMB, &errs)
	validatePositive("MNE_REQUEST_LOG_DB_RETAIN_COUNT", cfg.RequestLogRetainCount, &errs)

	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return cfg, nil
}

// ControllerEnvConfig holds the Controller process's environment-driven settings.
type ControllerEnvConfig struct {
	EmulatorBaseURL string
	PollPeriod      time.Duration
	PollSchedule    string // optional cron expression; overrides PollPeriod when set
	HTTPTimeout     time.Duration
	HistoryPort     int // serves GET /controller/history
	AdminToken      string
}

// LoadControllerEnvConfig reads MNC_* environment variables and returns a
// validated ControllerEnvConfig.
func LoadControllerEnvConfig() (*ControllerEnvConfig, error) {
	cfg := &ControllerEnvConfig{}
	var errs []string

	cfg.EmulatorBaseURL = strings.TrimSpace(envStr("MNC_EMULATOR_BASE_URL", "http://127.0.0.1:8080"))
	cfg.PollPeriod = envDuration("MNC_POLL_PERIOD", 5*time.Second, &errs)
	cfg.PollSchedule = strings.TrimSpace(envStr("MNC_POLL_SCHEDULE", ""))
	cfg.HTTPTimeout = envDuration("MNC_HTTP_TIMEOUT", 10*time.Second, &errs)
	cfg.HistoryPort = envInt("MNC_HISTORY_PORT", 8081, &errs)
	cfg.AdminToken = envStr("MNC_ADMIN_TOKEN", "")

	if cfg.EmulatorBaseURL == "" {
		errs = append(errs, "MNC_EMULATOR_BASE_URL: must not be empty")
	}
	if cfg.PollPeriod <= 0 {
		errs = append(errs, "MNC_POLL_PERIOD: must be positive")
	}
	if cfg.HTTPTimeout <= 0 {
		errs = append(errs, "MNC_HTTP_TIMEOUT: must be positive")
	}
	validatePort("MNC_HISTORY_PORT", cfg.HistoryPort, &errs)

	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return cfg, nil
}

// --- helpers ---

func envStr(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int, errs *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid integer %q", key, v))
		return defaultVal
	}
	return n
}

func envFloat(key string, defaultVal float64, errs *[]string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid float %q", key, v))
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration, errs *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid duration %q", key, v))
		return defaultVal
	}
	return d
}

func validatePort(name string, value int, errs *[]string) {
	if value < 1 || value > 65535 {
		*errs = append(*errs, fmt.Sprintf("%s: port must be 1-65535, got %d", name, value))
	}
}

func validatePositive(name string, value int, errs *[]string) {
	if value <= 0 {
		*errs = append(*errs, fmt.Sprintf("%s: must be positive, got %d", name, value))
	}
}
