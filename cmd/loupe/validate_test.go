package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/loupe/pkg/cli"
)

func TestValidateCommand(t *testing.T) {
	t.Setenv("HOST_ADDRESS", "127.0.0.1:8080")
	t.Setenv("DESTINATION_URL", "http://localhost:9000")
	t.Setenv("PRINT_STYLE", "json")

	out := executeCommand(t, "validate")

	for _, want := range []string{
		"✓ Configuration valid",
		"Listen:       127.0.0.1:8080",
		"Destination:  http://localhost:9000",
		"Print style:  json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCommand_ConfigFile(t *testing.T) {
	t.Setenv("HOST_ADDRESS", "")
	t.Setenv("DESTINATION_URL", "")

	path := filepath.Join(t.TempDir(), "loupe.yaml")
	data := `
proxy:
  host_address: "127.0.0.1:7070"
  destination_url: "http://upstream.internal"
journal:
  enabled: true
  backend: memory
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	out := executeCommand(t, "validate", "--config", path)
	if !strings.Contains(out, "Listen:       127.0.0.1:7070") {
		t.Errorf("file values not applied:\n%s", out)
	}
	if !strings.Contains(out, "Journal:      memory") {
		t.Errorf("journal summary missing:\n%s", out)
	}
}

func TestValidateCommand_Invalid(t *testing.T) {
	t.Setenv("HOST_ADDRESS", "127.0.0.1:8080")
	t.Setenv("DESTINATION_URL", "")

	_, err := executeCommandErr(t, "validate")
	if err == nil {
		t.Fatal("validate succeeded without a destination URL")
	}
	if code := cli.ExitCode(err); code != cli.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", code, cli.ExitConfig)
	}
	if !strings.Contains(err.Error(), "destination_url") {
		t.Errorf("error %q does not name the failing field", err)
	}
}
