package core

import (
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string

		SecretKey         string
		MinPasswordLength int

		DefaultFromEmail mail.Address
		AdminEmail       mail.Address
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		JWT      JWTConfig
		OAuth    OAuthConfig
	}

	ServerConfig struct {
		Host            string
		Port            string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Name       string
		User       string
		Password   string
		Host       string
		Port       string
		DisableTLS bool
		Timeout    time.Duration // per-statement deadline
	}

	JWTConfig struct {
		Algorithm       string
		LifetimeMinutes int
	}

	OAuthConfig struct {
		YandexClientID     string
		YandexClientSecret string
	}
)

func (c ServerConfig) Address() string { return c.Host + ":" + c.Port }

func (c DatabaseConfig) Address() string { return c.Host + ":" + c.Port }

// NewConfig loads the process configuration exactly once: defaults first,
// then an optional .env file, then the environment. The returned struct is
// immutable by convention and is passed by pointer to every component.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("env", "DEV") // DEV (local; default), TEST, QA, PROD
	v.SetDefault("debug", true)
	v.SetDefault("appName", "QITC")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "+9^bvtw0m1z&2!mvqe(ly=^(n1q85t97r8-2#emy9#$8ozby%w")
	v.SetDefault("minPasswordLength", 8)
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("adminEmail", "admin@localhost")
	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "qitc")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("dbTimeout", 5*time.Second)
	v.SetDefault("jwtAlgorithm", "HS256")
	v.SetDefault("jwtLifetimeMinutes", 60)

	env := strings.ToUpper(v.GetString("env"))
	if e := os.Getenv("ENV"); e != "" {
		env = strings.ToUpper(e)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := "config/.env." + strings.ToLower(env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
	}
	v.SetEnvPrefix(env)
	v.AutomaticEnv()

	conf := &Config{
		Env:               env,
		Debug:             v.GetBool("debug"),
		TestMode:          env == "TEST",
		AppName:           v.GetString("appName"),
		Build:             v.GetString("build"),
		SecretKey:         v.GetString("secretKey"),
		MinPasswordLength: v.GetInt("minPasswordLength"),
		DefaultFromEmail:  mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		AdminEmail:        mail.Address{Address: v.GetString("adminEmail")},
		SendgridAPIKey:    v.GetString("sendgridApiKey"),
		RollbarToken:      v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			Port:            v.GetString("serverPort"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("dbEngine"),
			Name:       v.GetString("dbName"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetString("dbPort"),
			DisableTLS: v.GetBool("dbDisableTLS"),
			Timeout:    v.GetDuration("dbTimeout"),
		},
		JWT: JWTConfig{
			Algorithm:       v.GetString("jwtAlgorithm"),
			LifetimeMinutes: v.GetInt("jwtLifetimeMinutes"),
		},
		OAuth: OAuthConfig{
			YandexClientID:     v.GetString("yandexClientId"),
			YandexClientSecret: v.GetString("yandexClientSecret"),
		},
	}
	if err := conf.check(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) check() error {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.SecretKey, "secretKey"),
		vala.StringNotEmpty(c.Database.Engine, "dbEngine"),
		vala.StringNotEmpty(c.Database.Name, "dbName"),
		vala.StringNotEmpty(c.JWT.Algorithm, "jwtAlgorithm"),
		vala.GreaterThan(c.JWT.LifetimeMinutes, 0, "jwtLifetimeMinutes"),
		vala.GreaterThan(int(c.Database.Timeout), 0, "dbTimeout"),
	).Check()
	if err != nil {
		return errors.Wrap(err, "checking config")
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported jwtAlgorithm %q", c.JWT.Algorithm)
	}
	return nil
}
