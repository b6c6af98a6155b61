// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/tmshlvck/tapi/pkg/dispatch"
	"gopkg.in/yaml.v3"
)

// Config defines the listen address, the API key and the set of
// endpoints the server exposes. It is loaded once at startup and shared
// by all requests without locks; nothing mutates it afterwards.
type Config struct {
	Listen     string    `yaml:"listen"`
	ListenPort int       `yaml:"listen_port"`
	APIKey     string    `yaml:"apikey"`
	Commands   []Command `yaml:"commands"`
}

// Command maps an endpoint path to exactly one action. The action keys
// are mutually exclusive; path and command values may contain {name}
// placeholders filled from the request's query parameters.
type Command struct {
	Endpoint    string  `yaml:"endpoint"`
	Shell       *string `yaml:"shell"`
	ReadFile    *string `yaml:"read_file"`
	ReadBinFile *string `yaml:"read_bin_file"`
	WriteFile   *string `yaml:"write_file"`
}

// Load reads and validates the configuration from the given file.
func Load(fileName string) (*Config, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	defer f.Close()

	var cfg Config
	if err = yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("empty apikey")
	}

	if cfg.ListenPort < 1 || cfg.ListenPort > 65535 {
		return nil, fmt.Errorf("listen_port out of range: %d", cfg.ListenPort)
	}

	if _, err = cfg.Endpoints(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Addr returns the address for the server to listen on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Listen, strconv.Itoa(c.ListenPort))
}

// Endpoints builds the endpoint definitions out of the configured
// commands, preserving their order.
func (c *Config) Endpoints() ([]dispatch.Endpoint, error) {
	parseCommand := func(cmd Command) (dispatch.Endpoint, error) {
		if !strings.HasPrefix(cmd.Endpoint, "/") {
			return dispatch.Endpoint{}, fmt.Errorf("endpoint must be an absolute path, got %q", cmd.Endpoint)
		}

		var actions []dispatch.Action
		if cmd.ReadFile != nil {
			actions = append(actions, dispatch.ReadFile{PathTemplate: *cmd.ReadFile})
		}
		if cmd.ReadBinFile != nil {
			actions = append(actions, dispatch.ReadFile{PathTemplate: *cmd.ReadBinFile, Binary: true})
		}
		if cmd.WriteFile != nil {
			actions = append(actions, dispatch.WriteFile{PathTemplate: *cmd.WriteFile})
		}
		if cmd.Shell != nil {
			actions = append(actions, dispatch.Shell{CommandTemplate: *cmd.Shell})
		}

		if len(actions) != 1 {
			return dispatch.Endpoint{}, fmt.Errorf("exactly one of read_file, "+
				"read_bin_file, write_file or shell must be set, got %d", len(actions))
		}

		return dispatch.Endpoint{Path: cmd.Endpoint, Action: actions[0]}, nil
	}

	res := make([]dispatch.Endpoint, 0, len(c.Commands))
	for idx, cmd := range c.Commands {
		ep, err := parseCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("parse command #%d: %w", idx, err)
		}

		res = append(res, ep)
	}

	return res, nil
}
