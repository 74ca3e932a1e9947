// Package config loads named request profiles for the rawhttp command.
//
// A profile file looks like:
//
//	profiles:
//	  github:
//	    headers:
//	      Accept: application/vnd.github+json
//	    token: ghp_xxx
//	    timeout: 10s
//	    insecure: false
//	    strictChunks: true
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultFileName = ".rawhttp.yaml"

var (
	ErrNotFound       = errors.New("config file not found")
	ErrUnknownProfile = errors.New("unknown profile")
)

type Config struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

type Profile struct {
	Headers      map[string]string `yaml:"headers,omitempty" validate:"dive,keys,header_name,endkeys,header_value"`
	Token        string            `yaml:"token,omitempty" validate:"omitempty,no_space"`
	Timeout      time.Duration     `yaml:"timeout,omitempty" validate:"gte=0" jsonschema:"type=string"`
	Insecure     bool              `yaml:"insecure,omitempty"`
	StrictChunks bool              `yaml:"strictChunks,omitempty"`

	// Keyring reads the token from the OS keyring entry stored under the
	// profile name. Token, when also set, wins.
	Keyring bool `yaml:"keyring,omitempty"`
}

// DefaultPath returns ~/.rawhttp.yaml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultFileName)
}

// Load reads the profile file at path.
// An empty path means DefaultPath, and a missing default file yields an
// empty Config. A missing explicit path is ErrNotFound.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				return &Config{}, nil
			}
			return nil, errors.Wrap(ErrNotFound, path)
		}
		return nil, errors.Wrap(err, "reading config file")
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	return &cfg, nil
}

// Profile returns the named profile. The empty name is the zero Profile.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		return Profile{}, nil
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, errors.Wrap(ErrUnknownProfile, name)
	}
	return p, nil
}
