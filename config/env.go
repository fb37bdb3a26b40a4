package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIBaseURL  = "http://localhost:8000"
	defaultAppPort     = "8080"
	defaultAppEnv      = "local"
	defaultRedisAddr   = "localhost:6379"
	defaultReportsDSN  = "licorgest.db"
	defaultHTTPTimeout = "30s"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"API_BASE_URL":       defaultAPIBaseURL,
		"APP_PORT":           defaultAppPort,
		"APP_ENV":            defaultAppEnv,
		"REDIS_ADDR":         defaultRedisAddr,
		"REDIS_PASSWORD":     "",
		"MONGO_URI":          "",
		"MONGO_DB":           "licorgest",
		"REPORTS_DSN":        defaultReportsDSN,
		"HTTP_TIMEOUT":       defaultHTTPTimeout,
		"HTTP_RETRIES":       "1",
		"CHECKOUT_WORKERS":   "4",
		"STORAGE_DISK":       "local",
		"STORAGE_LOCAL_ROOT": "storage",
	}
}

// APIBaseURL is the base URL of the remote inventory API
// (variants, purchases, line items, users, auth).
func APIBaseURL() string {
	_ = Load()
	return strings.TrimRight(get("API_BASE_URL", defaultAPIBaseURL), "/")
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// MongoURI configures the checkout audit sink. Empty disables it.
func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", "")
}

func MongoDB() string {
	_ = Load()
	return get("MONGO_DB", "licorgest")
}

// ReportsDSN is the sqlite file holding the generated-report ledger.
func ReportsDSN() string {
	_ = Load()
	return get("REPORTS_DSN", defaultReportsDSN)
}

// HTTPTimeout is the per-attempt timeout for outgoing API calls.
func HTTPTimeout() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("HTTP_TIMEOUT", defaultHTTPTimeout))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// HTTPRetries is total attempts for outgoing API calls (1 = no retry).
func HTTPRetries() int {
	_ = Load()
	n, err := strconv.Atoi(get("HTTP_RETRIES", "1"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// CheckoutWorkers bounds the goroutines posting line items in parallel.
func CheckoutWorkers() int {
	_ = Load()
	n, err := strconv.Atoi(get("CHECKOUT_WORKERS", "4"))
	if err != nil || n < 1 {
		return 4
	}
	return n
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and config/app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a single key at runtime. Intended for tests.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
