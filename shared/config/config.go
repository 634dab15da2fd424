// shared/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// CommonConfig holds infrastructure details used by more than one service.
type CommonConfig struct {
	// Database (PostgreSQL)
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"vaultship"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	// Kafka
	KafkaBroker string `env:"KAFKA_BROKER"`
	KafkaGroup  string `env:"KAFKA_GROUP" envDefault:"consolidation-service"`

	// RabbitMQ
	RabbitMQUser     string `env:"RABBITMQ_USER" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQHost     string `env:"RABBITMQ_HOST" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadCommonConfig reads the shared infrastructure config from the environment.
func LoadCommonConfig() (*CommonConfig, error) {
	cfg := &CommonConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse common config: %w", err)
	}
	return cfg, nil
}

// GetDBURL formats the config into a PostgreSQL connection string
func (c *CommonConfig) GetDBURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string
func (c *CommonConfig) GetRabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RabbitMQUser, c.RabbitMQPassword, c.RabbitMQHost, c.RabbitMQPort)
}
