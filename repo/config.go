package repo

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/bobg/vcs/commit"
	"github.com/bobg/vcs/internal/atomicfile"
)

// Environment variables consulted when the config has no user identity.
const (
	EnvAuthorName  = "VCS_AUTHOR_NAME"
	EnvAuthorEmail = "VCS_AUTHOR_EMAIL"
)

// Config is a repository's ini-format config file.
// Keys are named "section.name", as in "user.email".
type Config struct {
	path string
	file *ini.File
}

// LoadConfig reads the config file at path.
// A missing file is an empty config.
func LoadConfig(path string) (*Config, error) {
	f, err := ini.LooseLoad(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config %s", path)
	}
	return &Config{path: path, file: f}, nil
}

func splitKey(key string) (section, name string, err error) {
	section, name, ok := strings.Cut(key, ".")
	if !ok || section == "" || name == "" {
		return "", "", errors.Errorf("invalid config key %q (want section.name)", key)
	}
	return section, name, nil
}

// Get returns the value of a key,
// reporting false if it is not set.
func (c *Config) Get(key string) (string, bool, error) {
	section, name, err := splitKey(key)
	if err != nil {
		return "", false, err
	}
	sec, err := c.file.GetSection(section)
	if err != nil {
		return "", false, nil
	}
	if !sec.HasKey(name) {
		return "", false, nil
	}
	return sec.Key(name).String(), true, nil
}

// Set sets the value of a key and writes the config file.
func (c *Config) Set(key, val string) error {
	section, name, err := splitKey(key)
	if err != nil {
		return err
	}
	c.file.Section(section).Key(name).SetValue(val)
	return c.save()
}

func (c *Config) save() error {
	buf := new(bytes.Buffer)
	if _, err := c.file.WriteTo(buf); err != nil {
		return errors.Wrap(err, "formatting config")
	}
	return errors.Wrapf(atomicfile.WriteFile(c.path, buf.Bytes(), 0644), "writing config %s", c.path)
}

// CacheSize is the number of objects to keep in an in-memory cache in front of the object store.
// Zero means no cache.
func (c *Config) CacheSize() int {
	return c.file.Section("core").Key("cachesize").MustInt(0)
}

// Identity produces a signature for the configured user at the given time.
// Config values take precedence over the environment.
func (c *Config) Identity(when time.Time) (commit.Signature, error) {
	name, _, _ := c.Get("user.name")
	if name == "" {
		name = os.Getenv(EnvAuthorName)
	}
	email, _, _ := c.Get("user.email")
	if email == "" {
		email = os.Getenv(EnvAuthorEmail)
	}
	if name == "" || email == "" {
		return commit.Signature{}, errors.Errorf("no identity: set user.name and user.email, or %s and %s", EnvAuthorName, EnvAuthorEmail)
	}
	return commit.Signature{Name: name, Email: email, When: when}, nil
}
