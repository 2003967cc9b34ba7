package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// executeRoot runs the root command with args and returns its stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeConfig writes a .trendscan file whose store lives in dbDir.
func writeConfig(t *testing.T, dbDir, extra string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".trendscan")
	content := "store:\n  driver: sqlite\n  db_dir: " + dbDir + "\n" + extra
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
