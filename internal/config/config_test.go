package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Log.Level != "info" || c.Buffer.QuadrantSegments != 8 || c.Batch.Workers != 8 {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Server.Addr != ":8080" || c.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected server defaults: %+v", c.Server)
	}
}

func TestDefaultIgnoresEnvironment(t *testing.T) {
	t.Setenv("GISOPS_LOG_LEVEL", "trace")
	t.Setenv("GISOPS_BATCH_WORKERS", "3")
	c := Default()
	if c.Log.Level != "info" || c.Batch.Workers != 8 {
		t.Errorf("Default() picked up the environment: %+v", c)
	}
	if _, err := Load(""); err == nil {
		t.Errorf("Load should still reject GISOPS_LOG_LEVEL=trace")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gisops.toml")
	body := `
[log]
level = "debug"

[buffer]
quadrant_segments = 16
distance = 2.5

[server]
shutdown_timeout = "2s"
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GISOPS_BATCH_WORKERS", "3")

	c, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.Log.Level != "debug" {
		t.Errorf("level = %q", c.Log.Level)
	}
	if c.Buffer.QuadrantSegments != 16 || c.Buffer.Distance != 2.5 {
		t.Errorf("buffer = %+v", c.Buffer)
	}
	if c.Batch.Workers != 3 {
		t.Errorf("workers = %d, want env override 3", c.Batch.Workers)
	}
	if c.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("shutdown timeout = %v", c.Server.ShutdownTimeout)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"GISOPS_LOG_LEVEL":                "loud",
		"GISOPS_BUFFER_QUADRANT_SEGMENTS": "0",
		"GISOPS_BATCH_WORKERS":            "1000",
		"GISOPS_BUFFER_DISTANCE":          "-1",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := Load(""); err == nil {
				t.Errorf("%s=%s: expected validation error", k, v)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
