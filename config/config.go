package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`

	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
	LogCompress   bool   `mapstructure:"log_compress"`

	MongoURI string `mapstructure:"mongo_uri"`
	MongoDB  string `mapstructure:"mongo_db"`

	JWTSecret string `mapstructure:"jwt_secret"`

	ConsulAddr         string   `mapstructure:"consul_addr"`
	ServiceName        string   `mapstructure:"service_name"`
	ServiceHost        string   `mapstructure:"service_host"`
	ConsulDependencies []string `mapstructure:"consul_dependencies"`

	FirebaseCredentials string `mapstructure:"firebase_credentials"`
	FirebaseProjectID   string `mapstructure:"firebase_project_id"`

	EventStoreURI string `mapstructure:"eventstore_uri"`

	KafkaBrokers     []string `mapstructure:"kafka_brokers"`
	KafkaStatusTopic string   `mapstructure:"kafka_status_topic"`

	MonitorTickInterval time.Duration `mapstructure:"monitor_tick_interval"`
	MonitorInitialScore float64       `mapstructure:"monitor_initial_score"`
	MonitorAutoAlert    bool          `mapstructure:"monitor_auto_alert"`

	AlertCooldown   time.Duration `mapstructure:"alert_cooldown"`
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
}

var defaults = map[string]any{
	"port":                  "8080",
	"env":                   "development",
	"log_level":             "info",
	"log_file":              "logs/distress-service.log",
	"log_max_size_mb":       50,
	"log_max_backups":       5,
	"log_max_age_days":      28,
	"log_compress":          true,
	"mongo_uri":             "",
	"mongo_db":              "distress",
	"jwt_secret":            "",
	"consul_addr":           "",
	"service_name":          "distress-service",
	"service_host":          "localhost",
	"consul_dependencies":   []string{},
	"firebase_credentials":  "",
	"firebase_project_id":   "",
	"eventstore_uri":        "",
	"kafka_brokers":         []string{},
	"kafka_status_topic":    "patient-status",
	"monitor_tick_interval": "2s",
	"monitor_initial_score": 20.0,
	"monitor_auto_alert":    true,
	"alert_cooldown":        "0s",
	"dispatch_timeout":      "10s",
}

// LoadConfig reads config.yaml (optional) and lets environment variables
// override every key, e.g. MONGO_URI or MONITOR_TICK_INTERVAL.
func LoadConfig() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Failed to read config file: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to decode config: %v", err)
	}

	if cfg.MonitorTickInterval < time.Second {
		cfg.MonitorTickInterval = time.Second
	}

	return &cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
