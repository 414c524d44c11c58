package xpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xtpool/pkg/config/xconf"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"reactor", ModeReactor},
		{" Proactor ", ModeProactor},
		{"1", ModeReactor},
		{"0", ModeProactor},
		{"2", ModeProactor},
		{"-3", ModeProactor},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMode("epoll")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestMode_Text(t *testing.T) {
	text, err := ModeReactor.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "reactor", string(text))

	_, err = Mode(0).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, "Mode(0)", Mode(0).String())

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("proactor")))
	assert.Equal(t, ModeProactor, m)
	assert.Error(t, m.UnmarshalText([]byte("bogus")))
}

func TestModeFromActorModel(t *testing.T) {
	assert.Equal(t, ModeReactor, ModeFromActorModel(1))
	assert.Equal(t, ModeProactor, ModeFromActorModel(0))
	assert.Equal(t, ModeProactor, ModeFromActorModel(42))
}

func TestNewFromConfig(t *testing.T) {
	const doc = `
pool:
  name: io
  mode: 1
  workers: 3
  max_requests: 16
`
	cfg, err := xconf.NewFromBytes([]byte(doc), xconf.FormatYAML)
	require.NoError(t, err)

	pc := DefaultConfig()
	require.NoError(t, cfg.Unmarshal("pool", &pc))
	assert.Equal(t, ModeReactor, pc.Mode)

	p, err := NewFromConfig[int](pc, newConns(t, 1), WithLogger(discardLogger(t)), WithWorkers(2))
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	assert.Equal(t, "io", p.Name())
	assert.Equal(t, ModeReactor, p.Mode())
	assert.Equal(t, 2, p.Workers(), "explicit options override config")
	assert.Equal(t, 16, p.MaxRequests())
}

func TestNewFromConfig_TextModeAndLegacyInt(t *testing.T) {
	cfg, err := xconf.NewFromBytes([]byte(`{"pool":{"mode":"proactor"}}`), xconf.FormatJSON)
	require.NoError(t, err)
	pc := DefaultConfig()
	require.NoError(t, cfg.Unmarshal("pool", &pc))
	assert.Equal(t, ModeProactor, pc.Mode)

	// 整数约定：非 1 的值按 proactor 处理
	legacy := DefaultConfig()
	legacy.Mode = Mode(0)
	p, err := NewFromConfig[int](legacy, newConns(t, 1), WithLogger(discardLogger(t)))
	require.NoError(t, err)
	defer func() { _ = p.Close() }()
	assert.Equal(t, ModeProactor, p.Mode())

	bad := DefaultConfig()
	bad.Workers = 0
	_, err = NewFromConfig[int](bad, newConns(t, 1))
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}
