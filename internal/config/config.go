package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/reelwise/reelwise/pkg/models"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Hot  RedisInstanceConfig `mapstructure:"hot"`
	Warm RedisInstanceConfig `mapstructure:"warm"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		RatingEvents string `mapstructure:"rating_events"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RecommendationConfig is the configuration surface of the core pipeline.
type RecommendationConfig struct {
	// MinSupport excludes features carried by fewer movies from scoring.
	MinSupport int `mapstructure:"min_support"`
	// TopFeatures is the K of the per-user top-feature list.
	TopFeatures int `mapstructure:"top_features"`
	// RecommendationsPerFeature is the sample size per feature; 0 means all
	// unseen candidates.
	RecommendationsPerFeature int `mapstructure:"recommendations_per_feature"`
	// SoftmaxTemperature scales exploration in the sampling step.
	SoftmaxTemperature float64 `mapstructure:"softmax_temperature"`
	// NeighborCap bounds each similarity row to its top-k neighbors; 0 keeps
	// the full row.
	NeighborCap int                `mapstructure:"neighbor_cap"`
	RatingScale models.RatingScale `mapstructure:"rating_scale"`
	// PredictedTTL bounds the warm-cache lifetime of predicted ratings.
	PredictedTTL time.Duration `mapstructure:"predicted_ttl"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Recommendation.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects option values the pipeline cannot serve with.
func (c *RecommendationConfig) Validate() error {
	if c.MinSupport < 1 {
		return fmt.Errorf("recommendation.min_support must be >= 1, got %d", c.MinSupport)
	}
	if c.TopFeatures < 1 {
		return fmt.Errorf("recommendation.top_features must be >= 1, got %d", c.TopFeatures)
	}
	if c.RecommendationsPerFeature < 0 {
		return fmt.Errorf("recommendation.recommendations_per_feature must be >= 0, got %d", c.RecommendationsPerFeature)
	}
	if c.SoftmaxTemperature <= 0 {
		return fmt.Errorf("recommendation.softmax_temperature must be > 0, got %g", c.SoftmaxTemperature)
	}
	if c.NeighborCap < 0 {
		return fmt.Errorf("recommendation.neighbor_cap must be >= 0, got %d", c.NeighborCap)
	}
	if c.RatingScale.Min >= c.RatingScale.Max {
		return fmt.Errorf("recommendation.rating_scale: min %g must be below max %g",
			c.RatingScale.Min, c.RatingScale.Max)
	}
	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.hot.max_retries", 3)
	viper.SetDefault("redis.hot.pool_size", 10)
	viper.SetDefault("redis.hot.timeout", "5s")
	viper.SetDefault("redis.warm.max_retries", 3)
	viper.SetDefault("redis.warm.pool_size", 5)
	viper.SetDefault("redis.warm.timeout", "10s")

	// Kafka defaults
	viper.SetDefault("kafka.topics.rating_events", "rating-events")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Recommendation defaults, matching the offline build's constants
	viper.SetDefault("recommendation.min_support", 20)
	viper.SetDefault("recommendation.top_features", 5)
	viper.SetDefault("recommendation.recommendations_per_feature", 5)
	viper.SetDefault("recommendation.softmax_temperature", 1.0)
	viper.SetDefault("recommendation.neighbor_cap", 0)
	viper.SetDefault("recommendation.rating_scale.min", 1.0)
	viper.SetDefault("recommendation.rating_scale.max", 5.0)
	viper.SetDefault("recommendation.predicted_ttl", "24h")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
