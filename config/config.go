package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Everything here can be overridden
// by flags; the simplification options themselves always travel with the
// request.
type Config struct {
	// Addr is the listen address of the http server.
	Addr string `yaml:"addr"`

	// DefaultOptions is an option script (see the optscript package)
	// applied before per-request options.
	DefaultOptions string `yaml:"default_options"`

	// OverdrawThreshold is used when an overdraw request does not carry
	// its own threshold.
	OverdrawThreshold float32 `yaml:"overdraw_threshold"`

	// Verbose enables spew dumps of incoming requests.
	Verbose bool `yaml:"verbose"`
}

func Default() Config {
	return Config{
		Addr:              ":8000",
		OverdrawThreshold: 1.0,
	}
}

func LoadFromFile(path string) (Config, error) {
	cfg := Default()

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "Failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	return cfg, nil
}
