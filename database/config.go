/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/crudkit/utils"
)

var supportedTypes = []string{"mysql", "postgres", "sqlite"}

// ConnectionConfig describes how to connect to a database and tune its pool.
// Durations accept Go duration strings in YAML ("30s", "1h").
type ConnectionConfig struct {
	Type                string        `json:"type" yaml:"type"` // postgres, mysql, sqlite
	DSN                 string        `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Host                string        `json:"host" yaml:"host"`
	Port                int           `json:"port" yaml:"port"`
	Username            string        `json:"username" yaml:"username"`
	Password            string        `json:"password" yaml:"password"`
	DBName              string        `json:"dbname" yaml:"dbname"`
	SSLMode             string        `json:"sslmode" yaml:"sslmode"`
	MaxIdleConns        int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns        int           `json:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime     time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout" yaml:"write_timeout"`
	EnableReconnect     bool          `json:"enable_reconnect" yaml:"enable_reconnect"`
	ReconnectInterval   time.Duration `json:"reconnect_interval" yaml:"reconnect_interval"`
	MaxReconnectTries   int           `json:"max_reconnect_tries" yaml:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `json:"health_check_interval" yaml:"health_check_interval"`
	EnableQueryLog      bool          `json:"enable_query_log" yaml:"enable_query_log"`
	SlowQueryTime       time.Duration `json:"slow_query_time" yaml:"slow_query_time"`
	Charset             string        `json:"charset" yaml:"charset"` // MySQL only, defaults to utf8mb4
}

// LogConfig selects the level and console format of the named loggers.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text or json
}

// Config is the root of the application configuration file.
type Config struct {
	Connection ConnectionConfig `json:"connection" yaml:"connection"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: time.Minute * 5,
		EnableQueryLog:      false,
		SlowQueryTime:       time.Second * 2,
	}
}

// DefaultConfig returns a config whose connection carries the defaults.
func DefaultConfig() *Config {
	return &Config{
		Connection: *DefaultConnectionConfig(),
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML config file on top of the defaults. The listed
// .env files are loaded first, missing ones are skipped, and variables
// already set in the process win. ${VAR} references in the file are
// expanded before parsing and DB_* variables override the parsed values.
// An empty path yields the defaults plus the environment.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Connection.ApplyEnv()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CONSOLE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if err := cfg.Connection.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply configures the named loggers from the log section.
func (c *LogConfig) Apply() {
	if c.Level != "" {
		utils.ConfigureLogLevel(c.Level)
	}
	if c.Format != "" {
		utils.ConfigureConsoleLogFormat(c.Format)
	}
}

// Validate checks the database type. Postgres and sqlite aliases are
// normalized.
func (c *ConnectionConfig) Validate() error {
	switch strings.ToLower(c.Type) {
	case "postgresql", "pg":
		c.Type = "postgres"
	case "sqlite3":
		c.Type = "sqlite"
	default:
		c.Type = strings.ToLower(c.Type)
	}
	for _, t := range supportedTypes {
		if c.Type == t {
			return nil
		}
	}
	return fmt.Errorf("unsupported database type: %q, supported types: %v", c.Type, supportedTypes)
}

// ApplyEnv overrides configuration values from DB_* environment variables.
func (c *ConnectionConfig) ApplyEnv() {
	if v := os.Getenv("DB_TYPE"); v != "" {
		c.Type = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.DSN = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Host = v
	}
	envInt("DB_PORT", &c.Port)
	if v := os.Getenv("DB_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.DBName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		c.SSLMode = v
	}

	// pool
	envInt("DB_MAX_IDLE_CONNS", &c.MaxIdleConns)
	envInt("DB_MAX_OPEN_CONNS", &c.MaxOpenConns)
	c.ConnMaxLifetime = utils.EnvDefaultDuration("DB_CONN_MAX_LIFETIME", c.ConnMaxLifetime)

	c.EnableReconnect = utils.EnvDefaultBool("DB_ENABLE_RECONNECT", c.EnableReconnect)
	c.ReconnectInterval = utils.EnvDefaultDuration("DB_RECONNECT_INTERVAL", c.ReconnectInterval)

	c.EnableQueryLog = utils.EnvDefaultBool("DB_ENABLE_QUERY_LOG", c.EnableQueryLog)
	c.SlowQueryTime = utils.EnvDefaultDuration("DB_SLOW_QUERY_TIME", c.SlowQueryTime)
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
