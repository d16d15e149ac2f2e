// Package config loads and validates the simulator's YAML configuration.
// Durations are written as time.ParseDuration strings, and any
// ConfigSecret field may be deferred to a file with the "secret:"
// prefix so credentials stay out of the config file itself; plain string
// fields are taken literally.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/letsencrypt/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every knob the tasim binary reads. No defaults are
// provided beyond Go zero values; required fields are enforced by
// validate tags at load time.
type Config struct {
	TASim struct {
		// DebugAddr is where the Prometheus /metrics handler listens.
		DebugAddr string `yaml:"debugAddr"`

		// ChipDate is the chip's starting internal date, "YYYY-MM-DD".
		ChipDate string `yaml:"chipDate" validate:"required"`

		// VerifyCacheSize bounds the signature-verification LRU.
		VerifyCacheSize int `yaml:"verifyCacheSize" validate:"min=0"`
	} `yaml:"tasim"`

	DB struct {
		// Connect is a MySQL DSN. Empty means trust points live in memory
		// only and do not survive a restart.
		Connect ConfigSecret `yaml:"connect"`
	} `yaml:"db"`

	Redis struct {
		// Addr is host:port of a Redis instance for session snapshots.
		// Empty disables session caching.
		Addr     string         `yaml:"addr"`
		Password ConfigSecret   `yaml:"password"`
		TTL      ConfigDuration `yaml:"ttl"`
	} `yaml:"redis"`

	Archive struct {
		// Bucket is the S3 bucket response-APDU audit reasons are written
		// to. Empty disables archival.
		Bucket string `yaml:"bucket"`
		Prefix string `yaml:"prefix"`
	} `yaml:"archive"`

	Queue struct {
		// Dir is the on-disk directory of the recorded-APDU replay queue.
		Dir string `yaml:"dir" validate:"required"`
	} `yaml:"queue"`
}

// Load reads filename, unmarshals it, and validates it.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", filename, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", filename, err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validating %s: %w", filename, err)
	}
	return &cfg, nil
}

// ConfigDuration is a time.Duration that unmarshals from a
// time.ParseDuration string in both YAML and JSON.
type ConfigDuration struct {
	time.Duration
}

// ErrDurationMustBeString is returned when a non-string value is
// presented to be deserialized as a ConfigDuration.
var ErrDurationMustBeString = errors.New("cannot unmarshal something other than a string into a ConfigDuration")

// UnmarshalYAML parses a string into a ConfigDuration using
// time.ParseDuration.
func (d *ConfigDuration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return ErrDurationMustBeString
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

// UnmarshalJSON parses a string into a ConfigDuration using
// time.ParseDuration. If the input does not unmarshal as a string,
// UnmarshalJSON returns ErrDurationMustBeString.
func (d *ConfigDuration) UnmarshalJSON(b []byte) error {
	s := ""
	err := json.Unmarshal(b, &s)
	if err != nil {
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return ErrDurationMustBeString
		}
		return err
	}
	dd, err := time.ParseDuration(s)
	d.Duration = dd
	return err
}

// MarshalJSON returns the string form of the duration.
func (d ConfigDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// A ConfigSecret represents a string-valued config field. It may be
// specified directly in the config or, if it starts with the string
// "secret:", its contents are read from the filename that comes after
// "secret:", with trailing newlines removed.
type ConfigSecret string

var errSecretMustBeString = errors.New("cannot unmarshal something other than a string into a ConfigSecret")

const secretPrefix = "secret:"

func (d *ConfigSecret) resolve(s string) error {
	if !strings.HasPrefix(s, secretPrefix) {
		*d = ConfigSecret(s)
		return nil
	}
	contents, err := os.ReadFile(s[len(secretPrefix):])
	if err != nil {
		return err
	}
	*d = ConfigSecret(strings.TrimRight(string(contents), "\n"))
	return nil
}

// UnmarshalYAML unmarshals a ConfigSecret, resolving any "secret:" file
// reference.
func (d *ConfigSecret) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return errSecretMustBeString
	}
	return d.resolve(s)
}

// UnmarshalJSON unmarshals a ConfigSecret, resolving any "secret:" file
// reference.
func (d *ConfigSecret) UnmarshalJSON(b []byte) error {
	s := ""
	err := json.Unmarshal(b, &s)
	if err != nil {
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return errSecretMustBeString
		}
		return err
	}
	return d.resolve(s)
}
