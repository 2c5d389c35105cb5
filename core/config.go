package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source selects the backing store the repository set is built against.
// Exactly one source is active for the lifetime of the process; it is read
// once at startup by the storage factory, never re-checked per call.
type Source string

const (
	SourceMock  Source = "mock"
	SourceAPI   Source = "api"
	SourceMongo Source = "mongo"
)

type (
	Config struct {
		AppName       string
		Env           string // DEV (local; default), TEST, QA, PROD
		Debug         bool
		TestMode      bool
		Build         string
		SecretKey     string
		Source        Source
		SettlementDay int

		// MockDelay emulates network latency in mock mode so UI loading
		// states stay observable.
		MockDelay time.Duration

		Server ServerConfig
		API    APIConfig
		Mongo  MongoConfig
		Redis  RedisConfig
		Cache  CacheConfig

		DefaultFromEmail          mail.Address
		SendgridAPIKey            string
		RollbarToken              string
		PushGatewayURL            string
		JWTExpirationDelta        time.Duration
		PasswordResetTimeoutDelta time.Duration
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	APIConfig struct {
		DevBaseURL  string
		ProdBaseURL string
		Timeout     time.Duration
	}

	MongoConfig struct {
		URI      string
		Database string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	// CacheConfig holds the per-service read-through cache freshness windows.
	CacheConfig struct {
		StudentTTL    time.Duration
		PaymentTTL    time.Duration
		AttendanceTTL time.Duration
		NoticeTTL     time.Duration
		LessonNoteTTL time.Duration
		GalleryTTL    time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "PianoAcademy")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k3y$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("source", "mock")
	v.SetDefault("settlementDay", 1)
	v.SetDefault("mockDelay", 500*time.Millisecond)
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:9000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("api.devBaseURL", "http://localhost:8000/v1")
	v.SetDefault("api.prodBaseURL", "https://api.pianoacademy.app/v1")
	v.SetDefault("api.timeout", 10*time.Second)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "pianoacademy")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.studentTTL", 5*time.Minute)
	v.SetDefault("cache.paymentTTL", 5*time.Minute)
	v.SetDefault("cache.attendanceTTL", 3*time.Minute)
	v.SetDefault("cache.noticeTTL", 3*time.Minute)
	v.SetDefault("cache.lessonNoteTTL", 3*time.Minute)
	v.SetDefault("cache.galleryTTL", 5*time.Minute)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:       v.GetString("appName"),
		Env:           env,
		Debug:         v.GetBool("debug"),
		TestMode:      env == "TEST",
		Build:         v.GetString("build"),
		SecretKey:     v.GetString("secretKey"),
		Source:        Source(strings.ToLower(v.GetString("source"))),
		SettlementDay: v.GetInt("settlementDay"),
		MockDelay:     v.GetDuration("mockDelay"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		API: APIConfig{
			DevBaseURL:  v.GetString("api.devBaseURL"),
			ProdBaseURL: v.GetString("api.prodBaseURL"),
			Timeout:     v.GetDuration("api.timeout"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo.uri"),
			Database: v.GetString("mongo.database"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			StudentTTL:    v.GetDuration("cache.studentTTL"),
			PaymentTTL:    v.GetDuration("cache.paymentTTL"),
			AttendanceTTL: v.GetDuration("cache.attendanceTTL"),
			NoticeTTL:     v.GetDuration("cache.noticeTTL"),
			LessonNoteTTL: v.GetDuration("cache.lessonNoteTTL"),
			GalleryTTL:    v.GetDuration("cache.galleryTTL"),
		},
		DefaultFromEmail:          mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridAPIKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		PushGatewayURL:            v.GetString("pushGatewayURL"),
		JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
	}
}

func (c *Config) IsMockMode() bool  { return c.Source == SourceMock }
func (c *Config) IsAPIMode() bool   { return c.Source == SourceAPI }
func (c *Config) IsMongoMode() bool { return c.Source == SourceMongo }

// APIBaseURL resolves the REST base URL by environment.
func (c *Config) APIBaseURL() string {
	if c.Env == "PROD" {
		return c.API.ProdBaseURL
	}
	return c.API.DevBaseURL
}
