package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestGetDefaultConfig(t *testing.T) {
	RegisterTestingT(t)

	cfg := GetDefaultConfig()

	Expect(cfg.Port).To(Equal("8080"))
	Expect(cfg.AllowedOrigin).To(Equal("http://localhost:5173"))
	Expect(cfg.Database.Driver).To(Equal("sqlite"))
	Expect(cfg.RateLimitEnabled).To(BeTrue())
	Expect(cfg.CacheEnabled).To(BeFalse())
	Expect(cfg.Validate()).To(Succeed())
}

func TestLoad_EnvOverrides(t *testing.T) {
	RegisterTestingT(t)

	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGIN", "https://todo.example.com")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CACHE_ENABLED", "true")

	cfg, err := Load()

	Expect(err).To(BeNil())
	Expect(cfg.Port).To(Equal("9000"))
	Expect(cfg.AllowedOrigin).To(Equal("https://todo.example.com"))
	Expect(cfg.RateLimit.Requests).To(Equal(5))
	Expect(cfg.RateLimit.Window).To(Equal(30 * time.Second))
	Expect(cfg.CacheEnabled).To(BeTrue())
}

func TestLoad_InvalidBool(t *testing.T) {
	RegisterTestingT(t)

	t.Setenv("ENFORCE_HTTPS", "maybe")

	_, err := Load()

	Expect(err).To(MatchError(ContainSubstring("ENFORCE_HTTPS")))
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	RegisterTestingT(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
port: "7000"
service_name: todo-yaml
database:
  driver: sqlite
  path: /tmp/todos.db
cache_ttl: 10s
`)

	Expect(os.WriteFile(path, content, 0o600)).To(Succeed())

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVICE_NAME", "todo-env")

	cfg, err := Load()

	Expect(err).To(BeNil())
	Expect(cfg.Port).To(Equal("7000"))
	Expect(cfg.ServiceName).To(Equal("todo-env"))
	Expect(cfg.Database.Path).To(Equal("/tmp/todos.db"))
	Expect(cfg.CacheTTL).To(Equal(10 * time.Second))
}

func TestValidate_Postgres(t *testing.T) {
	RegisterTestingT(t)

	cfg := GetDefaultConfig()
	cfg.Database.Driver = "postgres"

	Expect(cfg.Validate()).To(MatchError(ContainSubstring("DATABASE_URL")))

	cfg.Database.URL = "postgres://localhost/todos"

	Expect(cfg.Validate()).To(Succeed())

	cfg.Database.Driver = "mysql"

	Expect(cfg.Validate()).NotTo(Succeed())
}
