package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRepositoryStatementsPass(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"../../sqlinline"}, &stderr); code != 0 {
		t.Fatalf("sqllint failed on sqlinline: %s", stderr.String())
	}
}

func TestDetectsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const A = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n" +
		"const B = `--sql 11111111-2222-4333-8444-555555555555\nselect 2;`\n" +
		"const C = `update t set x = 1`\n" +
		"const D = \"not a statement\"\n"
	if err := os.WriteFile(filepath.Join(dir, "q.go"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	if code := run([]string{dir}, &stderr); code != 1 {
		t.Fatalf("expected failure, got %d", code)
	}
	out := stderr.String()
	if !strings.Contains(out, "already used by A") || !strings.Contains(out, "(B)") {
		t.Fatalf("duplicate not reported: %s", out)
	}
	if !strings.Contains(out, "(C)") {
		t.Fatalf("missing marker not reported: %s", out)
	}
	if strings.Contains(out, "(D)") {
		t.Fatalf("non-SQL string reported: %s", out)
	}
}
