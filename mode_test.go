package ssr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"dev", ModeDev, false},
		{"Development", ModeDev, false},
		{" prod ", ModeProd, false},
		{"PRODUCTION", ModeProd, false},
		{"staging", ModeUnset, true},
		{"", ModeUnset, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeFromEnv(t *testing.T) {
	t.Setenv(ModeEnv, "")
	m, err := ModeFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ModeProd, m, "empty variable defaults to production")

	t.Setenv(ModeEnv, "dev")
	m, err = ModeFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ModeDev, m)

	t.Setenv(ModeEnv, "bogus")
	_, err = ModeFromEnv()
	assert.Error(t, err)
}

func TestModeText(t *testing.T) {
	assert.Equal(t, "unset", ModeUnset.String())

	text, err := ModeDev.MarshalText()
	require.NoError(t, err)

	var m Mode
	require.NoError(t, m.UnmarshalText(text))
	assert.Equal(t, ModeDev, m)
}

func TestModeYAML(t *testing.T) {
	var doc struct {
		Mode Mode `yaml:"mode"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("mode: production\n"), &doc))
	assert.Equal(t, ModeProd, doc.Mode)

	assert.Error(t, yaml.Unmarshal([]byte("mode: sometimes\n"), &doc))
}
