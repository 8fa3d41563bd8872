package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGame(t *testing.T, script string, extra map[string]string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	for name, body := range extra {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// --- Flags ---

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, []string{"-h"}); err != nil {
		t.Fatalf("run -h = %v, want nil", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("help output missing Usage:\n%s", out.String())
	}
}

func TestRunUnknownFlag(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-nope"})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Code != 2 {
		t.Errorf("Code = %d, want 2", exitErr.Code)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	o, exit, err := parseFlags(nil, &bytes.Buffer{})
	if err != nil || exit {
		t.Fatalf("parseFlags = %v, %v", exit, err)
	}
	if o.root != "." {
		t.Errorf("root = %q, want %q", o.root, ".")
	}
	if o.frames != 60 {
		t.Errorf("frames = %d, want 60", o.frames)
	}
}

func TestParseFlagsNegativeFrames(t *testing.T) {
	_, _, err := parseFlags([]string{"-frames", "-1"}, &bytes.Buffer{})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Errorf("err = %v, want ExitError code 2", err)
	}
}

// --- Headless runs ---

func TestRunHeadless(t *testing.T) {
	root := writeGame(t, `
		local e = ecs.newEntity("ticker", ecs.root)
		ecs.addComponent(e, { awake = function() end, update = function(ent) ent.x = ent.x + 1 end })
	`, nil)
	var out bytes.Buffer
	if err := run(&out, []string{"-headless", "-frames", "3", root}); err != nil {
		t.Fatalf("run = %v", err)
	}
	if !strings.Contains(out.String(), "headless run finished") {
		t.Errorf("output missing completion line:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "frames=3") {
		t.Errorf("output missing frames=3:\n%s", out.String())
	}
}

func TestRunHeadlessDieCode(t *testing.T) {
	root := writeGame(t, `
		ecs.addSystem({ update = function() die(4) end })
	`, nil)
	var out bytes.Buffer
	err := run(&out, []string{"-headless", root})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Code != 4 {
		t.Errorf("Code = %d, want 4", exitErr.Code)
	}
}

func TestRunHeadlessDieZero(t *testing.T) {
	root := writeGame(t, `die(0)`, nil)
	if err := run(&bytes.Buffer{}, []string{"-headless", root}); err != nil {
		t.Errorf("run = %v, want nil", err)
	}
}

func TestRunMissingEntry(t *testing.T) {
	root := t.TempDir()
	if err := run(&bytes.Buffer{}, []string{"-headless", root}); err == nil {
		t.Error("expected error for a root without main.lua")
	}
}

func TestRunBadConfig(t *testing.T) {
	root := writeGame(t, ``, map[string]string{"bramble.yaml": "width: -5\n"})
	err := run(&bytes.Buffer{}, []string{"-headless", root})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Errorf("err = %v, want ExitError code 2", err)
	}
}

func TestRunEventsLogged(t *testing.T) {
	root := writeGame(t, `ecs.newEntity("hero", ecs.root)`, nil)
	var out bytes.Buffer
	if err := run(&out, []string{"-headless", "-frames", "1", "-events", "-log-level", "debug", root}); err != nil {
		t.Fatalf("run = %v", err)
	}
	if !strings.Contains(out.String(), "type=entity_created") {
		t.Errorf("output missing entity_created event:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "name=hero") {
		t.Errorf("output missing entity name:\n%s", out.String())
	}
}

func TestRunBounceExample(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, []string{"-headless", "-frames", "120", filepath.Join("..", "..", "examples", "bounce")}); err != nil {
		t.Fatalf("run = %v\n%s", err, out.String())
	}
	if strings.Contains(out.String(), "script error") {
		t.Errorf("example logged script errors:\n%s", out.String())
	}
}
