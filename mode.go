package ssr

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects how the dispatcher renders. It is fixed when the Dispatcher
// is built and read once per call.
type Mode int

const (
	// ModeUnset is the zero value; rendering with it fails with ErrModeNotSet.
	ModeUnset Mode = iota
	// ModeDev reloads the development bundle on every call and falls back
	// to a static page when it cannot render.
	ModeDev
	// ModeProd renders with one cached engine per worker and surfaces errors.
	ModeProd
)

// ModeEnv is the environment variable read by ModeFromEnv.
const ModeEnv = "TUONO_MODE"

func (m Mode) String() string {
	switch m {
	case ModeDev:
		return "dev"
	case ModeProd:
		return "prod"
	default:
		return "unset"
	}
}

// ParseMode parses "dev"/"development" and "prod"/"production",
// case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return ModeDev, nil
	case "prod", "production":
		return ModeProd, nil
	default:
		return ModeUnset, fmt.Errorf("unknown mode %q", s)
	}
}

// ModeFromEnv reads TUONO_MODE. An unset variable means production.
func ModeFromEnv() (Mode, error) {
	v, ok := os.LookupEnv(ModeEnv)
	if !ok || v == "" {
		return ModeProd, nil
	}
	return ParseMode(v)
}

// UnmarshalText lets Mode be used with flag.TextVar and text-based decoders.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalYAML accepts the same spellings as ParseMode.
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return m.UnmarshalText([]byte(s))
}
