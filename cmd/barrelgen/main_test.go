package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs a fresh command so no flag state carries over between tests.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHelpExitsCleanly(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("--help returned error: %v", err)
	}
	if !strings.Contains(output, "barrelgen [directory] [output-file]") {
		t.Fatalf("expected usage text, got: %s", output)
	}
}

func TestGenerateDefaultBarrel(t *testing.T) {
	dir := t.TempDir()
	src := "export const Button = () => null;\nexport type ButtonProps = { label: string };\n"
	if err := os.WriteFile(filepath.Join(dir, "Button.ts"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	output, err := execute(t, dir)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(output, "index.ts: 1 re-export sources") {
		t.Fatalf("expected source count report, got: %s", output)
	}

	data, err := os.ReadFile(filepath.Join(dir, "index.ts"))
	if err != nil {
		t.Fatalf("barrel not written: %v", err)
	}
	want := "export { Button } from './Button';\nexport type { ButtonProps } from './Button';\n"
	if string(data) != want {
		t.Fatalf("barrel content mismatch:\ngot:  %q\nwant: %q", string(data), want)
	}
}

// Generation must still run after a help invocation; each command carries its
// own flag set, so the recorded help flag cannot leak into later runs.
func TestGenerateAfterHelp(t *testing.T) {
	if _, err := execute(t, "--help"); err != nil {
		t.Fatalf("--help returned error: %v", err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export const a = 1;\n"), 0644); err != nil {
		t.Fatal(err)
	}

	output, err := execute(t, dir)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(output, "index.ts: 1 re-export sources") {
		t.Fatalf("expected source count report, got: %s", output)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.ts")); err != nil {
		t.Fatalf("barrel not written after prior --help run: %v", err)
	}
}

func TestCustomOutputFile(t *testing.T) {
	dir := t.TempDir()
	src := "export type Only = number;\n"
	if err := os.WriteFile(filepath.Join(dir, "types.ts"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, dir, "index.js"); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	// Untyped target: the type identifiers merge into plain export syntax.
	data, err := os.ReadFile(filepath.Join(dir, "index.js"))
	if err != nil {
		t.Fatalf("barrel not written: %v", err)
	}
	if string(data) != "export { Only } from './types';\n" {
		t.Fatalf("unexpected barrel content: %q", string(data))
	}
}

func TestMissingDirectoryFails(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected an error for a missing target directory")
	}
}
