package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gisops/internal/gisops"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decode(t *testing.T, s string) gisops.Response {
	t.Helper()
	var resp struct {
		Op    string        `json:"op"`
		Value any           `json:"value"`
		Error *gisops.Error `json:"error"`
	}
	if err := json.Unmarshal([]byte(s), &resp); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return gisops.Response{Op: resp.Op, Value: resp.Value, Error: resp.Error}
}

func TestPositionalOps(t *testing.T) {
	cases := []struct {
		args []string
		want any
	}{
		{[]string{"distance", `{"x":0,"y":0}`, `{"x":3,"y":4}`}, 5.0},
		{[]string{"area", `[{"x":0,"y":0},{"x":3,"y":0},{"x":3,"y":3},{"x":0,"y":3}]`}, 9.0},
		{[]string{"contains", `{"x":1,"y":1}`, `[{"x":0,"y":0},{"x":3,"y":0},{"x":3,"y":3},{"x":0,"y":3}]`}, true},
	}
	for _, tc := range cases {
		t.Run(tc.args[0], func(t *testing.T) {
			out, err := run(t, "", tc.args...)
			if err != nil {
				t.Fatalf("%v: %s", err, out)
			}
			if resp := decode(t, out); resp.Value != tc.want {
				t.Fatalf("value = %v, want %v", resp.Value, tc.want)
			}
		})
	}
}

func TestEnvelopeFromStdin(t *testing.T) {
	out, err := run(t, `{"a":{"x":1,"y":1},"b":{"x":4,"y":5}}`, "distance")
	if err != nil {
		t.Fatal(err)
	}
	if resp := decode(t, out); resp.Value != 5.0 {
		t.Fatalf("value = %v", resp.Value)
	}
}

func TestEnvelopeFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "req.json")
	body := `{"points":[{"x":0,"y":0},{"x":2,"y":0}],"distance":0.5}`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "", "buffer", "--input", p)
	if err != nil {
		t.Fatal(err)
	}
	resp := decode(t, out)
	pts, ok := resp.Value.([]any)
	if !ok || len(pts) < 4 {
		t.Fatalf("outline = %v", resp.Value)
	}
}

func TestRejectedInput(t *testing.T) {
	out, err := run(t, "", "buffer", `[{"x":0,"y":0},{"x":1,"y":0}]`, "NaN")
	if !errors.Is(err, gisops.ErrNonFinite) {
		t.Fatalf("err = %v", err)
	}
	if resp := decode(t, out); resp.Error == nil || resp.Error.Field != "distance" {
		t.Fatalf("response = %s", out)
	}

	if _, err := run(t, "", "distance", `{"x":0,"y":0}`); err == nil {
		t.Fatal("expected argument count error")
	}
	if _, err := run(t, "", "area", `{"x":0}`); !errors.Is(err, gisops.ErrDecode) {
		t.Fatalf("err = %v", err)
	}
}

func TestBatch(t *testing.T) {
	in := `{"op":"distance","a":{"x":0,"y":0},"b":{"x":0,"y":7}}
{"op":"contains","point":{"x":9,"y":9},"points":[{"x":0,"y":0},{"x":1,"y":0},{"x":1,"y":1}]}
{"op":"bogus"}
`
	out, err := run(t, in, "batch")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if resp := decode(t, lines[0]); resp.Value != 7.0 {
		t.Fatalf("first = %s", lines[0])
	}
	if resp := decode(t, lines[1]); resp.Value != false {
		t.Fatalf("second = %s", lines[1])
	}
	if resp := decode(t, lines[2]); resp.Error == nil || resp.Error.Kind != gisops.KindUnknownOp {
		t.Fatalf("third = %s", lines[2])
	}
}

func TestConfigErrors(t *testing.T) {
	if _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "missing.toml"), "distance"); err == nil {
		t.Fatal("expected missing config error")
	}

	p := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(p, []byte("[batch]\nworkers = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "--config", p, "distance"); err == nil {
		t.Fatal("expected validation error")
	}
}
