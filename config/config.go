package config

import "time"

type Config struct {
	Web      Web
	DB       DB
	Redis    Redis
	Gateway  Gateway
	Compute  Compute
	Cors     Cors
	Auth     Auth
	Rate     Rate
	Watchers Watchers
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:vpshop"`
	DisableTLS bool   `conf:"default:true"`
}

type Redis struct {
	Address  string `conf:"default:localhost:6379"`
	Password string `conf:"default:,mask"`
}

// Gateway configures the QR bank-transfer payment gateway client.
type Gateway struct {
	URL       string        `conf:"default:https://pay.example.com"`
	APIKey    string        `conf:"mask"`
	AccountNo string        `conf:"default:0000000000"`
	Timeout   time.Duration `conf:"default:10s"`
}

// Compute configures the hypervisor manager client.
type Compute struct {
	URL     string        `conf:"default:http://localhost:9000"`
	Token   string        `conf:"mask"`
	Timeout time.Duration `conf:"default:15s"`
}

type Cors struct {
	Origin string
}

type Auth struct {
	SessionLifetime time.Duration `conf:"default:24h"`
}

type Rate struct {
	Burst     int     `conf:"default:20"`
	Expiry    int     `conf:"default:30"`
	PerSecond float64 `conf:"default:10"`
}

// Watchers holds the polling intervals for the background tasks. The
// payment and readiness watchers mirror the intervals the storefront
// uses when it talks to the same collaborators.
type Watchers struct {
	PaymentInterval   time.Duration `conf:"default:5s"`
	PaymentTimeout    time.Duration `conf:"default:15m"`
	ReadinessInterval time.Duration `conf:"default:3s"`
	ReadinessTimeout  time.Duration `conf:"default:10m"`
}
