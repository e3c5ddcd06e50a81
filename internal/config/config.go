// Package config loads the server and rider settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "RIDE"

// DatabaseConfig selects the user store. An empty DSN keeps accounts in memory.
type DatabaseConfig struct {
	DSN string
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// KafkaConfig configures ride event publishing and consumption. No brokers
// disables both.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// FleetConfig configures the live vehicle store.
type FleetConfig struct {
	RedisAddr    string
	CenterLat    float64
	CenterLng    float64
	RadiusMeters float64
	Limit        int
}

// PlacesConfig configures remote place search. An empty key serves the
// built-in places only.
type PlacesConfig struct {
	GoogleAPIKey string
	RadiusMeters uint
}

// RiderConfig holds the rider client settings.
type RiderConfig struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	BookingDelay   time.Duration
	DisplayWindow  time.Duration
	NoticeWindow   time.Duration
	SelectionDelay time.Duration
	PollInterval   time.Duration
	ClusterMeters  float64
	Clustering     bool
}

// ServiceConfig holds all configuration for the ride service and client.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    DatabaseConfig
	JWTConfig   JWTConfig
	KafkaConfig KafkaConfig
	FleetConfig FleetConfig
	Places      PlacesConfig
	Rider       RiderConfig
}

// IsProduction reports whether the service runs in production.
func (c *ServiceConfig) IsProduction() bool { return c.AppEnv == "production" }

// Load reads an optional .env file and then RIDE_* environment variables.
func Load(envFiles ...string) (*ServiceConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:   ":" + strings.TrimPrefix(v.GetString("service_port"), ":"),
		AppEnv: v.GetString("app_env"),
		DBConfig: DatabaseConfig{
			DSN: v.GetString("db_dsn"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("jwt_secret"),
			TTL:    v.GetDuration("jwt_ttl"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("kafka_brokers")),
			GroupPrefix: v.GetString("kafka_group_prefix"),
		},
		FleetConfig: FleetConfig{
			RedisAddr:    v.GetString("redis_addr"),
			CenterLat:    v.GetFloat64("fleet_center_lat"),
			CenterLng:    v.GetFloat64("fleet_center_lng"),
			RadiusMeters: v.GetFloat64("fleet_radius_meters"),
			Limit:        v.GetInt("fleet_limit"),
		},
		Places: PlacesConfig{
			GoogleAPIKey: v.GetString("google_maps_api_key"),
			RadiusMeters: v.GetUint("places_radius_meters"),
		},
		Rider: RiderConfig{
			APIBaseURL:     strings.TrimSuffix(v.GetString("api_base_url"), "/"),
			RequestTimeout: v.GetDuration("request_timeout"),
			BookingDelay:   v.GetDuration("booking_delay"),
			DisplayWindow:  v.GetDuration("display_window"),
			NoticeWindow:   v.GetDuration("notice_window"),
			SelectionDelay: v.GetDuration("selection_delay"),
			PollInterval:   v.GetDuration("poll_interval"),
			ClusterMeters:  v.GetFloat64("cluster_meters"),
			Clustering:     v.GetBool("clustering"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_port", "5000")
	v.SetDefault("app_env", "development")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("jwt_ttl", 24*time.Hour)
	v.SetDefault("kafka_group_prefix", "ride-")
	v.SetDefault("fleet_center_lat", 10.7905)
	v.SetDefault("fleet_center_lng", 78.7047)
	v.SetDefault("fleet_radius_meters", 5000.0)
	v.SetDefault("fleet_limit", 50)
	v.SetDefault("places_radius_meters", 20000)

	v.SetDefault("api_base_url", "http://localhost:5000")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("booking_delay", 1300*time.Millisecond)
	v.SetDefault("display_window", 4800*time.Millisecond)
	v.SetDefault("notice_window", 4200*time.Millisecond)
	v.SetDefault("selection_delay", 450*time.Millisecond)
	v.SetDefault("poll_interval", 8*time.Second)
	v.SetDefault("cluster_meters", 150.0)
	v.SetDefault("clustering", true)
}

func (c *ServiceConfig) validate() error {
	if c.IsProduction() && c.JWTConfig.Secret == "dev-secret-change-me" {
		return errors.New("RIDE_JWT_SECRET must be set in production")
	}
	if c.JWTConfig.TTL <= 0 {
		return fmt.Errorf("invalid jwt ttl: %s", c.JWTConfig.TTL)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
