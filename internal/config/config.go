package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const EnvProduction = "production"

type Config struct {
	Address               string `env:"RUN_ADDRESS"`
	DatabaseURI           string `env:"DATABASE_URI"`
	JWTSecret             string `env:"JWT_SECRET"`
	AdminToken            string `env:"ADMIN_TOKEN"`
	LoyaltyConfig         string `env:"LOYALTY_CONFIG"`
	NotifyURL             string `env:"NOTIFY_URL"`
	RabbitURL             string `env:"RABBIT_URL"`
	RabbitExchange        string `env:"RABBIT_EXCHANGE"`
	FreeShippingThreshold string `env:"FREE_SHIPPING_THRESHOLD"`
	FlatShippingRate      string `env:"FLAT_SHIPPING_RATE"`
	VATRate               string `env:"VAT_RATE"`
	AppEnv                string `env:"APP_ENV"`

	freeShippingThreshold decimal.Decimal
	flatShippingRate      decimal.Decimal
	vatRate               decimal.Decimal
}

func NewConfig() (Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (Config, error) {
	config := Config{
		Address:               "localhost:8080",
		RabbitExchange:        "notifications",
		FreeShippingThreshold: "500",
		FlatShippingRate:      "99",
		VATRate:               "0",
		AppEnv:                "development",
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error load .env file: %w", err)
	}

	if err := config.parseFlags(fs, args); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	if err := config.validateConfig(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) parseFlags(fs *flag.FlagSet, args []string) error {
	fs.StringVar(&c.Address, "a", c.Address, "Service address")
	fs.StringVar(&c.DatabaseURI, "d", c.DatabaseURI, "Database URI, empty for the in-memory store")
	fs.StringVar(&c.JWTSecret, "j", c.JWTSecret, "JWT signing secret")
	fs.StringVar(&c.AdminToken, "t", c.AdminToken, "Staff token for order fulfilment routes")
	fs.StringVar(&c.LoyaltyConfig, "l", c.LoyaltyConfig, "Loyalty catalog YAML file")
	fs.StringVar(&c.NotifyURL, "n", c.NotifyURL, "Notification webhook URL")
	fs.StringVar(&c.RabbitURL, "q", c.RabbitURL, "RabbitMQ URL")

	return fs.Parse(args)
}

func (c *Config) validateConfig() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Address, err)
	}

	if c.NotifyURL != "" {
		if _, err := url.ParseRequestURI(c.NotifyURL); err != nil {
			return fmt.Errorf("invalid notify url: %w", err)
		}
	}

	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("jwt secret is required in production")
		}

		c.JWTSecret = "storefront-development-secret"
	}

	for _, field := range []struct {
		name  string
		value string
		dest  *decimal.Decimal
	}{
		{"free shipping threshold", c.FreeShippingThreshold, &c.freeShippingThreshold},
		{"flat shipping rate", c.FlatShippingRate, &c.flatShippingRate},
		{"vat rate", c.VATRate, &c.vatRate},
	} {
		d, err := decimal.NewFromString(field.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", field.name, field.value, err)
		}

		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative", field.name)
		}

		*field.dest = d
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func (c Config) FreeShippingThresholdAmount() decimal.Decimal {
	return c.freeShippingThreshold
}

func (c Config) FlatShippingRateAmount() decimal.Decimal {
	return c.flatShippingRate
}

func (c Config) VATRateValue() decimal.Decimal {
	return c.vatRate
}
