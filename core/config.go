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

type Config struct {
	Build            string
	Env              string
	Debug            bool
	TestMode         bool
	AppName          string
	SecretKey        string
	WorkDir          string
	FrontendBaseURL  string
	DefaultFromEmail string
	SendgridApiKey   string
	RollbarToken     string

	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Digest   DigestConfig
}

type ServerConfig struct {
	Host                      string
	Addr                      string
	DebugHost                 string
	ShutdownTimeout           time.Duration
	JWTExpirationDelta        time.Duration
	JWTRefreshExpirationDelta time.Duration
	AdminAccessCode           string
	AllowOrigins              []string
}

type DatabaseConfig struct {
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

type StorageConfig struct {
	Driver        string // supabase | local | memory
	SupabaseURL   string
	SupabaseKey   string
	LocalDir      string
	PublicBaseURL string
	ImageMaxWidth int
	WebPQuality   float32
}

type DigestConfig struct {
	Enabled  bool
	Schedule string
}

func (c *Config) DefaultFrom() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig reads the configuration from the environment, after loading `config/.env.<env>` when present.
// ENV selects the environment: DEV (default), TEST, QA or PROD. Variables are read with the env as prefix,
// e.g. DEV_DATABASE_NAME.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	if root := os.Getenv("WORKDIR"); root != "" {
		wd = root
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	setDefaults(v, env)
	v.AutomaticEnv()

	conf := &Config{
		Build:            v.GetString("build"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("test_mode"),
		AppName:          v.GetString("app_name"),
		SecretKey:        v.GetString("secret_key"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontend_base_url"),
		DefaultFromEmail: v.GetString("default_from_email"),
		SendgridApiKey:   v.GetString("sendgrid_api_key"),
		RollbarToken:     v.GetString("rollbar_token"),
	}

	conf.Server.Host, _ = os.Hostname()
	conf.Server.Addr = v.GetString("server.addr")
	conf.Server.DebugHost = v.GetString("server.debug_host")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwt_expiration_delta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("server.jwt_refresh_expiration_delta")
	conf.Server.AdminAccessCode = v.GetString("server.admin_access_code")
	conf.Server.AllowOrigins = splitList(v.GetString("server.allow_origins"))

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetString("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.AdminUser = v.GetString("database.admin_user")
	conf.Database.AdminPassword = v.GetString("database.admin_password")
	conf.Database.DisableTLS = v.GetBool("database.disable_tls")

	conf.Storage.Driver = v.GetString("storage.driver")
	conf.Storage.SupabaseURL = strings.TrimRight(v.GetString("storage.supabase_url"), "/")
	conf.Storage.SupabaseKey = v.GetString("storage.supabase_key")
	conf.Storage.LocalDir = v.GetString("storage.local_dir")
	conf.Storage.PublicBaseURL = strings.TrimRight(v.GetString("storage.public_base_url"), "/")
	conf.Storage.ImageMaxWidth = v.GetInt("storage.image_max_width")
	conf.Storage.WebPQuality = float32(v.GetFloat64("storage.webp_quality"))

	conf.Digest.Enabled = v.GetBool("digest.enabled")
	conf.Digest.Schedule = v.GetString("digest.schedule")

	if !conf.Debug && !conf.TestMode && conf.SecretKey == insecureSecretKey {
		log.Printf("config: %s_SECRET_KEY is not set, using the insecure default", env)
	}
	return conf
}

const insecureSecretKey = "hk7$-alhikmah-dev-only-2b!x9q+f@v3m#kz(0p1_w8e&r"

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("test_mode", env == "TEST")
	v.SetDefault("app_name", "Yayasan Al-Hikmah")
	v.SetDefault("secret_key", insecureSecretKey)
	v.SetDefault("frontend_base_url", "http://localhost:3000")
	v.SetDefault("default_from_email", "noreply@alhikmah.localhost")

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debug_host", ":4000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.jwt_expiration_delta", 8*time.Hour)
	v.SetDefault("server.jwt_refresh_expiration_delta", 7*24*time.Hour)
	v.SetDefault("server.allow_origins", "*")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "alhikmah")
	v.SetDefault("database.user", "alhikmah")
	v.SetDefault("database.disable_tls", env == "DEV" || env == "TEST")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "media")
	v.SetDefault("storage.public_base_url", "http://localhost:8000/media")
	v.SetDefault("storage.image_max_width", 1600)
	v.SetDefault("storage.webp_quality", 80)

	v.SetDefault("digest.enabled", env == "PROD")
	v.SetDefault("digest.schedule", "0 7 * * *")
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
