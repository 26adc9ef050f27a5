package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNew_WritesDailyJSONFile(t *testing.T) {
	root := t.TempDir()
	log, err := New(Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	defer zap.ReplaceGlobals(zap.NewNop())

	log.Infow("user created", "id", 7)
	_ = log.Sync()

	path := filepath.Join(root, "logs", time.Now().Format("2006-01-02")+".log")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	body := string(raw)
	for _, want := range []string{`"msg":"logger online"`, `"msg":"user created"`, `"id":7`, `"level":"info"`} {
		if !strings.Contains(body, want) {
			t.Errorf("log missing %s:\n%s", want, body)
		}
	}
}

func TestNew_DebugLevel(t *testing.T) {
	root := t.TempDir()
	log, err := New(Options{Root: root, Debug: true})
	if err != nil {
		t.Fatal(err)
	}
	defer zap.ReplaceGlobals(zap.NewNop())

	if !log.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Fatal("debug level not enabled")
	}
}
