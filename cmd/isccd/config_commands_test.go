package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := fmt.Sprintf(`[omero]
host = "omero.example.org"
port = 4064
username = "svc"
password = "hunter2"

[service]
state_dir = %q
`, filepath.Join(dir, "state"))
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\noutput: %s", args, err, out.String())
	}
	return out.String()
}

func TestConfigShowRedactsPassword(t *testing.T) {
	path := writeTestConfig(t)
	output := runCommand(t, "config", "show", "--config", path)

	if strings.Contains(output, "hunter2") {
		t.Fatalf("password leaked in config show output:\n%s", output)
	}
	if !strings.Contains(output, "<redacted>") {
		t.Fatalf("expected redaction marker in output:\n%s", output)
	}
	if !strings.Contains(output, "omero.example.org") {
		t.Fatalf("expected effective host in output:\n%s", output)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	output := runCommand(t, "config", "init", "--path", target)

	if !strings.Contains(output, target) {
		t.Fatalf("expected target path in output:\n%s", output)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if !strings.Contains(string(data), "[omero]") {
		t.Fatalf("sample config missing omero section:\n%s", data)
	}

	// A second init must refuse to overwrite.
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
}

func TestConfigValidateAcceptsGoodConfig(t *testing.T) {
	path := writeTestConfig(t)
	output := runCommand(t, "config", "validate", "--config", path)

	if !strings.Contains(output, "Configuration valid") {
		t.Fatalf("expected validation success message:\n%s", output)
	}
}
