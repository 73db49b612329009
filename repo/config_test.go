package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	conf, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, err := conf.Get("user.name"); err != nil || ok {
		t.Errorf("unset key: ok=%v, err=%v", ok, err)
	}
	if err = conf.Set("user.name", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err = conf.Set("user.email", "alice@example.com"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[user]") {
		t.Errorf("config file lacks a [user] section:\n%s", data)
	}

	conf, err = LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	val, ok, err := conf.Get("user.email")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || val != "alice@example.com" {
		t.Errorf("got %q, %v", val, ok)
	}

	for _, bad := range []string{"nodot", ".x", "x."} {
		if _, _, err = conf.Get(bad); err == nil {
			t.Errorf("Get(%q) succeeded", bad)
		}
	}

	if n := conf.CacheSize(); n != 0 {
		t.Errorf("got cache size %d, want 0", n)
	}
}

func TestIdentity(t *testing.T) {
	when := time.Unix(1, 0)
	conf, err := LoadConfig(filepath.Join(t.TempDir(), "config"))
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAuthorName, "")
	t.Setenv(EnvAuthorEmail, "")
	if _, err = conf.Identity(when); err == nil {
		t.Error("got an identity from nothing")
	}

	t.Setenv(EnvAuthorName, "Env Name")
	t.Setenv(EnvAuthorEmail, "env@example.com")
	sig, err := conf.Identity(when)
	if err != nil {
		t.Fatal(err)
	}
	if sig.Name != "Env Name" || sig.Email != "env@example.com" || !sig.When.Equal(when) {
		t.Errorf("got %+v", sig)
	}

	if err = conf.Set("user.name", "Conf Name"); err != nil {
		t.Fatal(err)
	}
	sig, err = conf.Identity(when)
	if err != nil {
		t.Fatal(err)
	}
	if sig.Name != "Conf Name" || sig.Email != "env@example.com" {
		t.Errorf("got %+v", sig)
	}
}
