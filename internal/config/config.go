package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	TTLHours   int    `mapstructure:"ttl_hours"` // 24 for the day pass, 8760 for the year revision
	Secure     bool   `mapstructure:"secure"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
	JWTSecret     string `mapstructure:"jwt_secret"`
}

// AccessConfig decides what happens to the access flag at account creation.
// grant_on_create=true reproduces the flow where creating an account right
// after checkout grants access immediately; false keeps the account in
// "created" until a verified payment grants it.
type AccessConfig struct {
	GrantOnCreate bool `mapstructure:"grant_on_create"`
}

type StripeConfig struct {
	SecretKey        string `mapstructure:"secret_key"`
	Currency         string `mapstructure:"currency"`
	UnitAmountCents  int64  `mapstructure:"unit_amount_cents"`
	ProductName      string `mapstructure:"product_name"`
	EnableTestRoutes bool   `mapstructure:"enable_test_routes"`
}

type AppStoreConfig struct {
	VerifyURL    string `mapstructure:"verify_url"`
	SharedSecret string `mapstructure:"shared_secret"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Security SecurityConfig `mapstructure:"security"`
	Access   AccessConfig   `mapstructure:"access"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	AppStore AppStoreConfig `mapstructure:"appstore"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in the current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. ED_SERVER_PORT=9000
		v.SetEnvPrefix("ED") // esclave digital
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		applyDefaults(&c)
		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func applyDefaults(c *Config) {
	if c.Session.CookieName == "" {
		c.Session.CookieName = "ed_session"
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if c.Security.BcryptCost <= 0 {
		c.Security.BcryptCost = 12
	}
	if c.Stripe.Currency == "" {
		c.Stripe.Currency = "eur"
	}
	if c.Stripe.UnitAmountCents <= 0 {
		c.Stripe.UnitAmountCents = 499 // 4.99€ in cents
	}
	if c.Stripe.ProductName == "" {
		c.Stripe.ProductName = "ESCLAVE DIGITAL"
	}
	if c.AppStore.VerifyURL == "" {
		c.AppStore.VerifyURL = "https://buy.itunes.apple.com/verifyReceipt"
	}
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
