package conf

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	buildTime string
	version   string
)

const envPrefix = "HOMEHUB_"

type Config struct {
	Port                  int    `env:"PORT"`
	DBDriver              string `env:"DB_DRIVER"`
	DBConnStr             string `env:"DB_CONN_STR" sensitive:"yes"`
	LogLevel              int    `env:"LOG_LEVEL"`
	ShareDir              string `env:"SHARE_DIR"`
	ShareLinkTTL          int    `env:"SHARE_LINK_TTL"`
	DefaultCity           string `env:"DEFAULT_CITY"`
	Locale                string `env:"LOCALE"`
	WeatherAPIKey         string `env:"WEATHER_API_KEY" sensitive:"yes"`
	WeatherBaseURL        string `env:"WEATHER_BASE_URL"`
	WeatherRateLimit      int    `env:"WEATHER_RATE_LIMIT"`
	DeviceScanInterval    int    `env:"DEVICE_SCAN_INTERVAL"`
	ExternalIPURL         string `env:"EXTERNAL_IP_URL"`
	ConnectivityProbeAddr string `env:"CONNECTIVITY_PROBE_ADDR"`
	SentryDSN             string `env:"SENTRY_DSN" sensitive:"yes"`
}

func Version() string {
	return version
}

func Init() (Config, error) {
	// A missing .env is fine; the environment and flags still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %v", err)
	}

	config, err := getDefaultConfig()
	if err != nil {
		return config, fmt.Errorf("failed to generate the default config: %v", err)
	}

	if err := applyEnv(&config, os.LookupEnv); err != nil {
		return config, err
	}

	flag.IntVar(
		&config.Port,
		"port",
		config.Port,
		"The server port",
	)
	flag.StringVar(
		&config.DBDriver,
		"db-driver",
		config.DBDriver,
		"The database driver (possible values: sqlite, postgres)",
	)
	flag.StringVar(
		&config.DBConnStr,
		"db-conn-str",
		config.DBConnStr,
		"The database connection string",
	)
	flag.IntVar(
		&config.LogLevel,
		"log-level",
		config.LogLevel,
		"Logging level (possible values: -4, 0, 4, 8)",
	)
	flag.StringVar(
		&config.ShareDir,
		"share-dir",
		config.ShareDir,
		"The directory exposed by the file sharing page",
	)
	flag.IntVar(
		&config.ShareLinkTTL,
		"share-link-ttl",
		config.ShareLinkTTL,
		"How long a generated share link stays valid (in hours)",
	)
	flag.StringVar(
		&config.DefaultCity,
		"default-city",
		config.DefaultCity,
		"The city used by the weather widget until another one is picked",
	)
	flag.StringVar(
		&config.Locale,
		"locale",
		config.Locale,
		"The locale used for dates and month names (possible values: pl, en)",
	)
	flag.StringVar(
		&config.WeatherAPIKey,
		"weather-api-key",
		config.WeatherAPIKey,
		"The OpenWeatherMap API key",
	)
	flag.StringVar(
		&config.WeatherBaseURL,
		"weather-base-url",
		config.WeatherBaseURL,
		"The OpenWeatherMap API base URL",
	)
	flag.IntVar(
		&config.WeatherRateLimit,
		"weather-rate-limit",
		config.WeatherRateLimit,
		"Maximum number of weather API requests per minute",
	)
	flag.IntVar(
		&config.DeviceScanInterval,
		"device-scan-interval",
		config.DeviceScanInterval,
		"How often to scan the network for devices (in seconds)",
	)
	flag.StringVar(
		&config.ExternalIPURL,
		"external-ip-url",
		config.ExternalIPURL,
		"A URL that answers with the caller's public IP address",
	)
	flag.StringVar(
		&config.ConnectivityProbeAddr,
		"connectivity-probe-addr",
		config.ConnectivityProbeAddr,
		"The host:port dialed to check the internet connection",
	)
	flag.StringVar(
		&config.SentryDSN,
		"sentry-dsn",
		config.SentryDSN,
		"Report server errors to this Sentry DSN (disabled when empty)",
	)
	displayVersion := flag.Bool(
		"version",
		false,
		"Displays the version and exits",
	)
	flag.Parse()

	if *displayVersion {
		fmt.Printf("version:\t%s\n", version)
		fmt.Printf("build time:\t%s\n", buildTime)
		os.Exit(0)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	printConfig(config)

	return config, nil
}

func (c Config) Validate() error {
	if c.LogLevel != -4 && c.LogLevel != 0 && c.LogLevel != 4 && c.LogLevel != 8 {
		return fmt.Errorf(
			"%v is not a valid log level (expected one of these values: -4, 0, 4, 8)",
			c.LogLevel,
		)
	}

	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("%q is not a supported database driver (expected sqlite or postgres)", c.DBDriver)
	}

	if c.ShareLinkTTL <= 0 {
		return fmt.Errorf("share link TTL must be positive, got %d", c.ShareLinkTTL)
	}

	if c.DeviceScanInterval <= 0 {
		return fmt.Errorf("device scan interval must be positive, got %d", c.DeviceScanInterval)
	}

	return nil
}

func (c Config) ShareLinkDuration() time.Duration {
	return time.Duration(c.ShareLinkTTL) * time.Hour
}

func (c Config) DeviceScanDuration() time.Duration {
	return time.Duration(c.DeviceScanInterval) * time.Second
}

func getDefaultConfig() (Config, error) {
	config := Config{}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}

	dataDir := filepath.Join(homeDir, ".local/share/homehub")
	_, err = os.Stat(dataDir)
	if os.IsNotExist(err) {
		log.Printf("data directory (%v) doesn't exist; creating it automatically...", dataDir)

		if err = os.MkdirAll(dataDir, 0755); err != nil {
			return Config{}, fmt.Errorf("failed to create the data directory: %v", err)
		}
	} else if err != nil {
		return Config{}, err
	}

	config.Port = 8000
	config.DBDriver = "sqlite"
	config.DBConnStr = fmt.Sprintf("file://%v/homehub.db", dataDir)
	config.LogLevel = 0
	config.ShareDir = filepath.Join(homeDir, "HomeHubShared")
	config.ShareLinkTTL = int((7 * 24 * time.Hour).Hours())
	config.DefaultCity = "Warsaw"
	config.Locale = "pl-PL"
	config.WeatherBaseURL = "https://api.openweathermap.org"
	config.WeatherRateLimit = 60
	config.DeviceScanInterval = int((5 * time.Minute).Seconds())
	config.ExternalIPURL = "https://api.ipify.org"
	config.ConnectivityProbeAddr = "8.8.8.8:53"

	return config, nil
}

// applyEnv overrides config fields that have an `env` tag with HOMEHUB_<tag> variables.
func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	val := reflect.ValueOf(c).Elem()
	typ := val.Type()

	for i := range typ.NumField() {
		field := typ.Field(i)
		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		raw, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			val.Field(i).SetString(raw)
		case reflect.Int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%s%s must be an integer: %v", envPrefix, name, err)
			}
			val.Field(i).SetInt(int64(n))
		}
	}

	return nil
}

func maskSensitive(c Config) Config {
	configToPrint := Config{}
	valToPrint := reflect.ValueOf(&configToPrint).Elem()
	valToInspect := reflect.ValueOf(c)

	for i := range valToInspect.NumField() {
		if valToInspect.Type().Field(i).Tag.Get("sensitive") != "yes" {
			valToPrint.Field(i).Set(valToInspect.Field(i))
		}
	}

	return configToPrint
}

func printConfig(c Config) error {
	b, err := json.Marshal(maskSensitive(c))
	if err != nil {
		return err
	}

	log.Printf("build time: %v", buildTime)
	log.Printf("version: %v", version)
	log.Printf("config: %v", string(b))

	return nil
}
