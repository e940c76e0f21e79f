package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gooddollar/facetec-go/goodserver"
	"github.com/gooddollar/facetec-go/logging"
	"github.com/gooddollar/facetec-go/redis"
)

type Config struct {
	ServerConfig goodserver.ServerConfig `json:"server_config"`

	AuthSecret string `json:"auth_secret"`
	LogLevel   string `json:"log_level,omitempty"`
	LogFormat  string `json:"log_format,omitempty"`

	StorageType         string                    `json:"storage_type"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "Path for the config.json to use")
	flag.Parse()

	if *configPath == "" {
		slog.Error("please provide a config path using the --config flag")
		os.Exit(1)
	}

	config, err := readConfigFile(*configPath)
	if err != nil {
		slog.Error("failed to read config file", "error", err)
		os.Exit(1)
	}

	logging.InitLoggerWithFormat(config.LogLevel, config.LogFormat)
	slog.Info("using config", "path", *configPath)
	slog.Info("hosting on", "host", config.ServerConfig.Host, "port", config.ServerConfig.Port)

	if config.AuthSecret == "" {
		slog.Error("auth_secret must be configured")
		os.Exit(1)
	}

	sessions, enrollments, err := createStorage(&config)
	if err != nil {
		slog.Error("failed to instantiate storage", "error", err)
		os.Exit(1)
	}

	serverState := goodserver.ServerState{
		Sessions:   sessions,
		Evaluator:  goodserver.NewScoringEvaluator(enrollments),
		AuthSecret: []byte(config.AuthSecret),
	}

	server, err := goodserver.NewServer(&serverState, config.ServerConfig)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("failed to listen and serve", "error", err)
		os.Exit(1)
	}
}

func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	var config Config
	err = json.Unmarshal(configBytes, &config)

	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func createStorage(config *Config) (sessions goodserver.Storage, enrollments goodserver.Storage, err error) {
	if config.StorageType == "redis" {
		slog.Info("Using redis storage")
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		namespace := config.RedisConfig.Namespace
		return goodserver.NewRedisStorage(client, namespace, goodserver.SessionTokenTTL),
			goodserver.NewRedisStorage(client, namespace+":enrollments", 0), nil
	}
	if config.StorageType == "redis_sentinel" {
		slog.Info("Using redis sentinel storage")
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, nil, err
		}
		namespace := config.RedisSentinelConfig.Namespace
		return goodserver.NewRedisStorage(client, namespace, goodserver.SessionTokenTTL),
			goodserver.NewRedisStorage(client, namespace+":enrollments", 0), nil
	}
	if config.StorageType == "memory" {
		slog.Info("Using in memory storage")
		return goodserver.NewInMemoryStorage(), goodserver.NewInMemoryStorage(), nil
	}
	return nil, nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}
