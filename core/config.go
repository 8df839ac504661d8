package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Record store engines
const (
	StoreApper    = "apper"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env          string `validate:"required"`
	AppName      string `validate:"required"`
	Build        string
	Debug        bool
	TestMode     bool
	RollbarToken string

	Server struct {
		Host            string
		Address         string `validate:"required"`
		DebugHost       string
		ShutdownTimeout time.Duration `validate:"min=0"`
		DisableReqLogs  bool
	}

	Store struct {
		Engine         string        `validate:"oneof=apper postgres memory"`
		ApperURL       string        `validate:"omitempty,url"`
		ApperProjectID string
		ApperPublicKey string
		Timeout        time.Duration `validate:"min=0"`
		Latency        time.Duration `validate:"min=0"` // padding before each remote call
	}

	Database struct {
		Engine     string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}
}

func (c *Config) IsStore(engine string) bool {
	return c.Store.Engine == engine
}

// DatabaseAddress returns the database "host:port".
func (c *Config) DatabaseAddress() string {
	return c.Database.Host + ":" + c.Database.Port
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased ENV, eg. `DEV_STORE_ENGINE`.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Planner")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("store.engine", StoreMemory)
	v.SetDefault("store.apperURL", "")
	v.SetDefault("store.apperProjectID", "")
	v.SetDefault("store.apperPublicKey", "")
	v.SetDefault("store.timeout", 10*time.Second)
	v.SetDefault("store.latency", time.Duration(0))
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "planner")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "planner")
	v.SetDefault("database.disableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if root, err := Getwd(); err == nil {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("server.host")
	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.DisableReqLogs = v.GetBool("server.disableReqLogs")
	conf.Store.Engine = strings.ToLower(v.GetString("store.engine"))
	conf.Store.ApperURL = v.GetString("store.apperURL")
	conf.Store.ApperProjectID = v.GetString("store.apperProjectID")
	conf.Store.ApperPublicKey = v.GetString("store.apperPublicKey")
	conf.Store.Timeout = v.GetDuration("store.timeout")
	conf.Store.Latency = v.GetDuration("store.latency")
	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetString("database.port")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")
	return conf
}

// Getwd tries to find the project root, ie. the closest parent directory holding a go.mod.
// go-test changes the working directory to the test package being run.
func Getwd() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir, nil
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd, nil
		}
		currDir = newDir
	}
}
