package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultGateway = "https://zpayz.cn"

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Auth struct {
		Secret string `yaml:"secret"`
	} `yaml:"auth"`
	ZPay struct {
		PID       string `yaml:"pid"`
		Key       string `yaml:"key"`
		Gateway   string `yaml:"gateway"`
		NotifyURL string `yaml:"notify_url"`
		ReturnURL string `yaml:"return_url"`
	} `yaml:"zpay"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if cfg.ZPay.Gateway == "" {
		cfg.ZPay.Gateway = defaultGateway
	}

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	if cfg.DB.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth.secret is required")
	}
	if cfg.ZPay.PID == "" || cfg.ZPay.Key == "" {
		return nil, errors.New("zpay.pid and zpay.key are required")
	}
	for name, raw := range map[string]string{
		"zpay.gateway":    cfg.ZPay.Gateway,
		"zpay.notify_url": cfg.ZPay.NotifyURL,
		"zpay.return_url": cfg.ZPay.ReturnURL,
	} {
		if err := RequireHTTPS(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return &cfg, nil
}

// RequireHTTPS rejects empty, malformed, or plain-http URLs. The gateway
// callback and return URLs are a security control and must never be
// downgraded to http.
func RequireHTTPS(raw string) error {
	if raw == "" {
		return errors.New("url is not configured")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("https url required, got %q", raw)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("ZPAY_PID"); v != "" {
		cfg.ZPay.PID = v
	}
	if v := os.Getenv("ZPAY_KEY"); v != "" {
		cfg.ZPay.Key = v
	}
	if v := os.Getenv("ZPAY_GATEWAY"); v != "" {
		cfg.ZPay.Gateway = v
	}
	if v := os.Getenv("ZPAY_NOTIFY_URL"); v != "" {
		cfg.ZPay.NotifyURL = v
	}
	if v := os.Getenv("ZPAY_RETURN_URL"); v != "" {
		cfg.ZPay.ReturnURL = v
	}
}
