package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Mongo   MongoConfig   `json:"mongo"`
	Reports ReportsConfig `json:"reports"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Mode            string        `json:"mode"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// MongoConfig represents the record store connection settings.
// URI takes precedence; otherwise one is built from Username, Password and Host.
type MongoConfig struct {
	URI            string        `json:"uri"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	Host           string        `json:"host"`
	AppName        string        `json:"app_name"`
	MaxPoolSize    uint64        `json:"max_pool_size"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	QueryTimeout   time.Duration `json:"query_timeout"`
}

// ReportsConfig holds the fixed report configuration
type ReportsConfig struct {
	Datasets           map[string]string `json:"datasets"`
	ExcludedContacts   []string          `json:"excluded_contacts"`
	LargeServiceMarker string            `json:"large_service_marker"`
	Currency           string            `json:"currency"`
	FontPath           string            `json:"font_path"`
	TopProductsLimit   int               `json:"top_products_limit"`
}

// LoggingConfig
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
}

// DefaultDatasets maps the client-facing dataset keys to database names.
func DefaultDatasets() map[string]string {
	return map[string]string{
		"khamis": "Elanam-KhamisMushit",
		"baish":  "Elanam-Baish",
		"zapia":  "Elanam-Zapia",
	}
}

// DefaultExcludedContacts lists house and admin accounts that must not count
// towards sales figures.
func DefaultExcludedContacts() []string {
	return []string{
		"د/ محمد صيدلية بيش",
		"عيادة الأنعام - الإدارة",
		"مؤسسة علي محمد غروي البيطرية",
		"صيدليه علي محمد غروي",
		"عيادة الانعام الظبية",
	}
}

// LoadConfig loads configuration from file and environment variables.
// Priority (highest to lowest): environment, .env file, config file, defaults.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Load from file if exists
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables, e.g. SERVER_PORT, MONGO_PASSWORD
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			Mode:            v.GetString("server.mode"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("mongo.uri"),
			Username:       v.GetString("mongo.username"),
			Password:       v.GetString("mongo.password"),
			Host:           v.GetString("mongo.host"),
			AppName:        v.GetString("mongo.app_name"),
			MaxPoolSize:    v.GetUint64("mongo.max_pool_size"),
			ConnectTimeout: v.GetDuration("mongo.connect_timeout"),
			QueryTimeout:   v.GetDuration("mongo.query_timeout"),
		},
		Reports: ReportsConfig{
			Datasets:           v.GetStringMapString("reports.datasets"),
			ExcludedContacts:   stringList(v, "reports.excluded_contacts"),
			LargeServiceMarker: v.GetString("reports.large_service_marker"),
			Currency:           v.GetString("reports.currency"),
			FontPath:           v.GetString("reports.font_path"),
			TopProductsLimit:   v.GetInt("reports.top_products_limit"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			Output: v.GetString("logging.output"),
		},
	}

	if len(config.Reports.Datasets) == 0 {
		config.Reports.Datasets = DefaultDatasets()
	}
	if len(config.Reports.ExcludedContacts) == 0 {
		config.Reports.ExcludedContacts = DefaultExcludedContacts()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// stringList reads a list that may come from the config file as an array or
// from the environment as one string. Environment values are split on "|"
// because the names themselves contain spaces.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var out []string
	for _, item := range strings.Split(raw, "|") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("mongo.host", "ivc-cluster.2nmzm9h.mongodb.net")
	v.SetDefault("mongo.app_name", "vetratech-mobile-api")
	v.SetDefault("mongo.max_pool_size", 20)
	v.SetDefault("mongo.connect_timeout", 10*time.Second)
	v.SetDefault("mongo.query_timeout", 30*time.Second)

	v.SetDefault("reports.large_service_marker", "لارج")
	v.SetDefault("reports.currency", "SAR")
	v.SetDefault("reports.font_path", "assets/fonts/arabic.ttf")
	v.SetDefault("reports.top_products_limit", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks that the configuration can be used to start the server
func (c *Config) Validate() error {
	if c.Mongo.URI == "" && (c.Mongo.Username == "" || c.Mongo.Password == "") {
		return errors.New("mongo username or password is missing: set MONGO_USERNAME and MONGO_PASSWORD or MONGO_URI")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Reports.TopProductsLimit <= 0 {
		return fmt.Errorf("reports.top_products_limit must be positive, got %d", c.Reports.TopProductsLimit)
	}
	if c.Reports.LargeServiceMarker == "" {
		return errors.New("reports.large_service_marker must not be empty")
	}
	return nil
}

// GetMongoURI returns the MongoDB connection string
func (c *MongoConfig) GetMongoURI() string {
	if c.URI != "" {
		return c.URI
	}
	u := url.URL{
		Scheme: "mongodb+srv",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host,
		Path:   "/",
	}
	return u.String()
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
