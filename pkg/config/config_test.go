package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	s.valid = true
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_KeepsDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	p := writeFile(t, "name: ${SAMPLE_NAME}\n")

	s := &sample{Port: 8080}
	if err := Load(p, s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" || s.Port != 8080 {
		t.Errorf("got %+v", s)
	}
	if !s.valid {
		t.Error("Validate was not called")
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeFile(t, "port: -1\n")
	err := Load(p, &sample{})
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &sample{Port: 1})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeFile(t, "port: [1, 2\n")
	if err := Load(p, &sample{Port: 1}); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadOptional(t *testing.T) {
	s := &sample{Port: 3000}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !s.valid || s.Port != 3000 {
		t.Errorf("got %+v", s)
	}

	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &sample{}); err == nil {
		t.Error("invalid defaults should still fail")
	}

	p := writeFile(t, "port: 4000\n")
	s = &sample{Port: 3000}
	if err := LoadOptional(p, s); err != nil || s.Port != 4000 {
		t.Errorf("got %+v, %v", s, err)
	}
}
