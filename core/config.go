package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageDummy    = "dummy"

	OverlayMemory = "memory"
	OverlayRedis  = "redis"
)

type (
	Config struct {
		Env      string
		Build    string
		AppName  string
		Debug    bool
		TestMode bool
		WorkDir  string

		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail string

		Server   serverConfig
		Database databaseConfig
		Storage  storageConfig
		Overlay  overlayConfig
		Auth     authConfig
	}

	serverConfig struct {
		Host                      string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	databaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	storageConfig struct {
		// Backend is one of StoragePostgres or StorageDummy.
		Backend string
		// SeedDemoData fills the dummy store with the demo school on startup.
		SeedDemoData bool
		// SubjectAttendance is false to run the dummy store without subject-level attendance.
		SubjectAttendance bool
	}

	overlayConfig struct {
		Backend       string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		Namespace     string
	}

	authConfig struct {
		DebugOTP          string
		AdminUsername     string
		AdminPasswordHash string
	}
)

func (c databaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) DefaultFromMail() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
	}
	return *addr
}

// NewConfig loads the configuration from the environment.
// Variables are prefixed with the current ENV, e.g. DEV_DATABASE_HOST.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "EduMatrix")
	conf.SetDefault("secretKey", "x8v#4k!q2m@edumatrix-dev-secret&9z*w1p")
	conf.SetDefault("defaultFromEmail", "EduMatrix <noreply@localhost>")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")

	conf.SetDefault("server_host", ":8000")
	conf.SetDefault("server_debugHost", ":4000")
	conf.SetDefault("server_readTimeout", 5*time.Second)
	conf.SetDefault("server_writeTimeout", 5*time.Second)
	conf.SetDefault("server_shutdownTimeout", 5*time.Second)
	conf.SetDefault("server_jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server_jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("database_engine", "postgres")
	conf.SetDefault("database_host", "localhost")
	conf.SetDefault("database_port", "5432")
	conf.SetDefault("database_name", "edumatrix")
	conf.SetDefault("database_user", "edumatrix")
	conf.SetDefault("database_password", "")
	conf.SetDefault("database_adminUser", "postgres")
	conf.SetDefault("database_adminPassword", "")
	conf.SetDefault("database_disableTLS", true)

	conf.SetDefault("storage_backend", StorageDummy)
	conf.SetDefault("storage_seedDemoData", true)
	conf.SetDefault("storage_subjectAttendance", true)

	conf.SetDefault("overlay_backend", OverlayMemory)
	conf.SetDefault("overlay_redisAddr", "localhost:6379")
	conf.SetDefault("overlay_redisPassword", "")
	conf.SetDefault("overlay_redisDB", 0)
	conf.SetDefault("overlay_namespace", "edumatrix:overlay")

	conf.SetDefault("auth_debugOTP", "123456")
	conf.SetDefault("auth_adminUsername", "admin")
	conf.SetDefault("auth_adminPasswordHash", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:      env,
		Build:    conf.GetString("build"),
		AppName:  conf.GetString("appName"),
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		WorkDir:  wd,

		SecretKey:        conf.GetString("secretKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		DefaultFromEmail: conf.GetString("defaultFromEmail"),

		Server: serverConfig{
			Host:                      conf.GetString("server_host"),
			DebugHost:                 conf.GetString("server_debugHost"),
			ReadTimeout:               conf.GetDuration("server_readTimeout"),
			WriteTimeout:              conf.GetDuration("server_writeTimeout"),
			ShutdownTimeout:           conf.GetDuration("server_shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server_jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server_jwtRefreshExpirationDelta"),
		},
		Database: databaseConfig{
			Engine:        conf.GetString("database_engine"),
			Host:          conf.GetString("database_host"),
			Port:          conf.GetString("database_port"),
			Name:          conf.GetString("database_name"),
			User:          conf.GetString("database_user"),
			Password:      conf.GetString("database_password"),
			AdminUser:     conf.GetString("database_adminUser"),
			AdminPassword: conf.GetString("database_adminPassword"),
			DisableTLS:    conf.GetBool("database_disableTLS"),
		},
		Storage: storageConfig{
			Backend:           strings.ToLower(conf.GetString("storage_backend")),
			SeedDemoData:      conf.GetBool("storage_seedDemoData"),
			SubjectAttendance: conf.GetBool("storage_subjectAttendance"),
		},
		Overlay: overlayConfig{
			Backend:       strings.ToLower(conf.GetString("overlay_backend")),
			RedisAddr:     conf.GetString("overlay_redisAddr"),
			RedisPassword: conf.GetString("overlay_redisPassword"),
			RedisDB:       conf.GetInt("overlay_redisDB"),
			Namespace:     conf.GetString("overlay_namespace"),
		},
		Auth: authConfig{
			DebugOTP:          conf.GetString("auth_debugOTP"),
			AdminUsername:     conf.GetString("auth_adminUsername"),
			AdminPasswordHash: conf.GetString("auth_adminPasswordHash"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests, without touching the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		AppName:          "EduMatrix",
		TestMode:         true,
		SecretKey:        "test-secret",
		DefaultFromEmail: "EduMatrix <noreply@localhost>",
		Server: serverConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			ShutdownTimeout:           time.Second,
		},
		Storage: storageConfig{Backend: StorageDummy, SubjectAttendance: true},
		Overlay: overlayConfig{Backend: OverlayMemory, Namespace: "test:overlay"},
		Auth:    authConfig{DebugOTP: "123456", AdminUsername: "admin"},
	}
}
