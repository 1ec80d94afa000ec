package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BOOKING_"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	SeatLock SeatLockConfig `yaml:"seat_lock"`
	Events   EventsConfig   `yaml:"events"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"             validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	App   string `yaml:"app"   validate:"required"`
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type StoreConfig struct {
	Driver  string `yaml:"driver"  validate:"oneof=memory postgres"`
	DSN     string `yaml:"dsn"     validate:"required_if=Driver postgres"`
	Migrate bool   `yaml:"migrate"`
	Seed    bool   `yaml:"seed"`
}

type SeatLockConfig struct {
	Driver    string        `yaml:"driver"     validate:"oneof=local redis"`
	TTL       time.Duration `yaml:"ttl"        validate:"gt=0"`
	RetryWait time.Duration `yaml:"retry_wait" validate:"gt=0"`
}

type EventsConfig struct {
	Transport     string `yaml:"transport"      validate:"oneof=memory channels redis kafka"`
	ConsumerGroup string `yaml:"consumer_group" validate:"required"`
	Consumer      string `yaml:"consumer"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
}

type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"client_id"`
}

// Default devolve uma configuração que sobe sem nenhuma dependência externa.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			App:   "bus-booking",
			Level: "info",
		},
		Store: StoreConfig{
			Driver:  "memory",
			Migrate: true,
		},
		SeatLock: SeatLockConfig{
			Driver:    "local",
			TTL:       5 * time.Second,
			RetryWait: 25 * time.Millisecond,
		},
		Events: EventsConfig{
			Transport:     "memory",
			ConsumerGroup: "bus-booking",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Kafka: KafkaConfig{
			Brokers:  []string{"localhost:9092"},
			ClientID: "bus-booking",
		},
	}
}

// Load monta a configuração nesta ordem: padrões, arquivo YAML (--config),
// variáveis BOOKING_* e por fim as flags da linha de comando.
func Load(args []string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()

	flags := pflag.NewFlagSet("bus-booking", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a YAML configuration file")
	addr := flags.String("addr", cfg.Server.Addr, "HTTP listen address")
	logLevel := flags.String("log-level", cfg.Log.Level, "log level (debug, info, warn, error)")
	storeDriver := flags.String("store", cfg.Store.Driver, "booking store (memory, postgres)")
	storeDSN := flags.String("dsn", "", "PostgreSQL DSN")
	seed := flags.Bool("seed", cfg.Store.Seed, "load the sample bookings on start")
	seatLock := flags.String("seat-lock", cfg.SeatLock.Driver, "seat lock driver (local, redis)")
	events := flags.String("events", cfg.Events.Transport, "event transport (memory, channels, redis, kafka)")
	redisAddr := flags.String("redis-addr", cfg.Redis.Addr, "redis address")
	kafkaBrokers := flags.StringSlice("kafka-brokers", cfg.Kafka.Brokers, "kafka brokers")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		if err := loadFile(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, lookupEnv); err != nil {
		return Config{}, err
	}

	overrides := map[string]func(){
		"addr":          func() { cfg.Server.Addr = *addr },
		"log-level":     func() { cfg.Log.Level = *logLevel },
		"store":         func() { cfg.Store.Driver = *storeDriver },
		"dsn":           func() { cfg.Store.DSN = *storeDSN },
		"seed":          func() { cfg.Store.Seed = *seed },
		"seat-lock":     func() { cfg.SeatLock.Driver = *seatLock },
		"events":        func() { cfg.Events.Transport = *events },
		"redis-addr":    func() { cfg.Redis.Addr = *redisAddr },
		"kafka-brokers": func() { cfg.Kafka.Brokers = *kafkaBrokers },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		return nil
	}
	get := func(key string) (string, bool) {
		value, ok := lookupEnv(envPrefix + key)
		return strings.TrimSpace(value), ok && strings.TrimSpace(value) != ""
	}

	strs := map[string]*string{
		"ADDR":                  &cfg.Server.Addr,
		"LOG_LEVEL":             &cfg.Log.Level,
		"STORE_DRIVER":          &cfg.Store.Driver,
		"STORE_DSN":             &cfg.Store.DSN,
		"SEAT_LOCK_DRIVER":      &cfg.SeatLock.Driver,
		"EVENTS_TRANSPORT":      &cfg.Events.Transport,
		"EVENTS_CONSUMER":       &cfg.Events.Consumer,
		"EVENTS_CONSUMER_GROUP": &cfg.Events.ConsumerGroup,
		"REDIS_ADDR":            &cfg.Redis.Addr,
		"REDIS_PASSWORD":        &cfg.Redis.Password,
		"KAFKA_CLIENT_ID":       &cfg.Kafka.ClientID,
	}
	for key, target := range strs {
		if value, ok := get(key); ok {
			*target = value
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT": &cfg.Server.RequestTimeout,
		"SEAT_LOCK_TTL":   &cfg.SeatLock.TTL,
	}
	for key, target := range durations {
		if value, ok := get(key); ok {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, key, err)
			}
			*target = d
		}
	}

	if value, ok := get("STORE_SEED"); ok {
		seed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%sSTORE_SEED: %w", envPrefix, err)
		}
		cfg.Store.Seed = seed
	}
	if value, ok := get("REDIS_DB"); ok {
		db, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", envPrefix, err)
		}
		cfg.Redis.DB = db
	}
	if value, ok := get("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = splitList(value)
	}
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

var validate = validator.New()

// Validate confere as tags de cada seção e as dependências entre seções.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.UsesRedis() && c.Redis.Addr == "" {
		return errors.New("invalid config: redis.addr is required when redis is used")
	}
	if c.Events.Transport == "kafka" && len(c.Kafka.Brokers) == 0 {
		return errors.New("invalid config: kafka.brokers is required for the kafka transport")
	}
	return nil
}

// UsesRedis informa se algum componente precisa de um cliente redis.
func (c Config) UsesRedis() bool {
	return c.SeatLock.Driver == "redis" || c.Events.Transport == "redis"
}
