package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type poolSection struct {
	Mode        string        `koanf:"mode"`
	Workers     int           `koanf:"workers"`
	MaxRequests int           `koanf:"max_requests"`
	IdleTimeout time.Duration `koanf:"idle_timeout"`
}

const testYAML = `
pool:
  mode: reactor
  workers: 4
  max_requests: 128
  idle_timeout: 15s
db:
  driver: sqlite3
`

const testJSON = `{"pool": {"mode": "proactor", "workers": 2, "max_requests": "64"}}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_YAML(t *testing.T) {
	path := writeTemp(t, "serve.yaml", testYAML)

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, "sqlite3", cfg.Client().String("db.driver"))

	got, err := Load[poolSection](cfg, "pool")
	require.NoError(t, err)
	assert.Equal(t, poolSection{Mode: "reactor", Workers: 4, MaxRequests: 128, IdleTimeout: 15 * time.Second}, got)
}

func TestNew_JSONWeakTyping(t *testing.T) {
	path := writeTemp(t, "serve.json", testJSON)

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Format())

	got, err := Load[poolSection](cfg, "pool")
	require.NoError(t, err)
	assert.Equal(t, 64, got.MaxRequests)
	assert.Equal(t, "proactor", got.Mode)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New(writeTemp(t, "serve.toml", "a = 1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeTemp(t, "broken.yaml", "pool: [unterminated"))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(testYAML), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())
	assert.Equal(t, 4, cfg.Client().Int("pool.workers"))
	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)

	empty, err := NewFromBytes(nil, FormatJSON)
	require.NoError(t, err)
	got, err := Load[poolSection](empty, "pool")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = NewFromBytes([]byte("x"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnmarshal_TypeMismatch(t *testing.T) {
	cfg, err := NewFromBytes([]byte("pool:\n  workers: many\n"), FormatYAML)
	require.NoError(t, err)

	_, err = Load[poolSection](cfg, "pool")
	assert.ErrorIs(t, err, ErrUnmarshalFailed)
}

func TestLoad_NilConfig(t *testing.T) {
	_, err := Load[poolSection](nil, "pool")
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestMustUnmarshal(t *testing.T) {
	cfg, err := NewFromBytes([]byte(testYAML), FormatYAML)
	require.NoError(t, err)

	var p poolSection
	assert.NotPanics(t, func() { MustUnmarshal(cfg, "pool", &p) })
	assert.Equal(t, 4, p.Workers)

	bad, err := NewFromBytes([]byte("pool:\n  workers: many\n"), FormatYAML)
	require.NoError(t, err)
	assert.Panics(t, func() { MustUnmarshal(bad, "pool", &p) })
	assert.PanicsWithValue(t, ErrNilConfig, func() { MustUnmarshal(nil, "pool", &p) })
}

func TestReload(t *testing.T) {
	path := writeTemp(t, "serve.yaml", testYAML)
	cfg, err := New(path)
	require.NoError(t, err)

	old := cfg.Client()
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  workers: 16\n"), 0o600))
	require.NoError(t, cfg.Reload())

	assert.Equal(t, 16, cfg.Client().Int("pool.workers"))
	// 旧快照保持不变
	assert.Equal(t, 4, old.Int("pool.workers"))

	require.NoError(t, os.WriteFile(path, []byte("pool: [oops"), 0o600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, 16, cfg.Client().Int("pool.workers"), "failed reload keeps previous config")
}

func TestOptions(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"pool": {"workers": 3}}`), FormatJSON, WithDelim("/"), WithTag("json"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Client().Int("pool/workers"))

	var out struct {
		Workers int `json:"workers"`
	}
	require.NoError(t, cfg.Unmarshal("pool", &out))
	assert.Equal(t, 3, out.Workers)
}
