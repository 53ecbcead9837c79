package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
server:
  addr: ":8080"
db:
  dsn: "postgres://localhost/psylink"
auth:
  secret: "unit-test-secret"
zpay:
  pid: "1001"
  key: "merchant-key"
  notify_url: "https://api.example.com/zpay/notify"
  return_url: "https://app.example.com/payment/result"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.ZPay.PID != "1001" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ZPay.Gateway != "https://zpayz.cn" {
		t.Errorf("gateway default = %s", cfg.ZPay.Gateway)
	}
}

func TestLoadRejectsMissingCredentials(t *testing.T) {
	body := strings.Replace(validYAML, `key: "merchant-key"`, `key: ""`, 1)
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Error("missing zpay.key must fail load")
	}
}

func TestLoadRejectsPlainHTTPURLs(t *testing.T) {
	body := strings.Replace(validYAML, "https://api.example.com", "http://api.example.com", 1)
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Error("plain-http notify_url must fail load")
	}
}

func TestRequireHTTPS(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{"https://example.com/cb", true},
		{"http://example.com/cb", false},
		{"", false},
		{"https://", false},
		{"not a url at all ::", false},
	}
	for _, c := range cases {
		err := RequireHTTPS(c.raw)
		if c.ok && err != nil {
			t.Errorf("RequireHTTPS(%q) = %v, want nil", c.raw, err)
		}
		if !c.ok && err == nil {
			t.Errorf("RequireHTTPS(%q) = nil, want error", c.raw)
		}
	}
}
