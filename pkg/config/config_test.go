package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/model"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv(DataEnv, "/srv/regland")
	t.Chdir(t.TempDir())

	cfg, v, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, v.ConfigFileUsed())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, filepath.Join("/srv/regland", "regland.sqlite"), cfg.Database.Path)
	assert.Equal(t, filepath.Join("/srv/regland", "expression_tpm.tsv"), cfg.Expression.Path)
	assert.True(t, cfg.Database.ReadOnly)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, time.Hour, cfg.Expression.TTL)
	assert.Equal(t, ExpressionSourceFile, cfg.Expression.Source)
	assert.Equal(t, model.DefaultLimits(), cfg.Query.Limits())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFileAndEnv(t *testing.T) {
	path := writeFile(t, "regland.yaml", `
server:
  addr: 127.0.0.1:9000
  read_timeout: 3s
cache:
  ttl: 90s
  size: "64"
expression:
  source: DB
log:
  level: debug
`)
	t.Setenv("REGLAND_QUERY_GWAS_LIMIT", "25")
	t.Setenv("REGLAND_DATABASE_READ_ONLY", "false")

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.Equal(t, ExpressionSourceDB, cfg.Expression.Source)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 25, cfg.Query.GWASLimit)
	assert.False(t, cfg.Database.ReadOnly)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"source":  "expression:\n  source: s3\n",
		"watch":   "expression:\n  source: db\n  watch: true\n",
		"limit":   "query:\n  ctcf_limit: 20000\n",
		"level":   "log:\n  level: loud\n",
		"address": "server:\n  addr: \"\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Load(writeFile(t, "regland.yaml", body))
			assert.Error(t, err)
		})
	}

	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "regland.yaml")

	require.NoError(t, Set(path, "log.level", "debug"))
	require.NoError(t, Set(path, "expression.watch", "yes"))
	require.NoError(t, Set(path, "query.gwas_limit", "40"))
	require.NoError(t, Set(path, "cache.ttl", "2m"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := map[string]any{}
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, true, doc["expression"].(map[string]any)["watch"])
	assert.Equal(t, 40, doc["query"].(map[string]any)["gwas_limit"])

	cfg, v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	val, err := Get(v, "log.level")
	require.NoError(t, err)
	assert.Equal(t, "debug", val)

	_, err = Get(v, "nope.key")
	assert.Error(t, err)

	assert.Error(t, Set(path, "log.level", "loud"))
	assert.Error(t, Set(path, "log.level.sub", "x"))
	cfg, _, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestShow(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, _, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Show(&buf, cfg))
	assert.Contains(t, buf.String(), "read_timeout: 15s")
	assert.Contains(t, buf.String(), "enhancer_limit:")
}

func TestWatchReappliesLogLevel(t *testing.T) {
	path := writeFile(t, "regland.yaml", "log:\n  level: info\n")
	_, v, err := Load(path)
	require.NoError(t, err)

	changed := make(chan *Config, 4)
	Watch(v, func(c *Config) { changed <- c })

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))
	select {
	case c := <-changed:
		assert.Equal(t, "warn", c.Log.Level)
		assert.Equal(t, "warn", logger.Level().String())
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
	logger.SetLevel("info")
}
