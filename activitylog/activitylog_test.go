package activitylog

import (
	"path/filepath"
	"testing"

	"github.com/mrivera-dev/cellar"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func openTestEngine(t *testing.T) (*Engine, *observer.ObservedLogs) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	inner, err := cellar.Open(cellar.Config{FilePath: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = inner.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core).Sugar()
	return New(inner, logger), logs
}

func TestActivityLogLogsSuccessfulStore(t *testing.T) {
	e, logs := openTestEngine(t)

	id, err := e.Store([]byte("payload"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	entries := logs.FilterMessage("stored object").All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["id"] != uint64(id) {
		t.Errorf("logged id %v, want %d", fields["id"], id)
	}
}

func TestActivityLogLogsFailedRead(t *testing.T) {
	e, logs := openTestEngine(t)

	_, err := e.ReadID(999999)
	if err == nil {
		t.Fatal("expected error reading unknown id")
	}

	entries := logs.FilterMessage("read failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d error log entries, want 1", len(entries))
	}
}

func TestActivityLogPassesThroughValues(t *testing.T) {
	e, _ := openTestEngine(t)

	id, err := e.Store([]byte("hi"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	got, err := e.ReadID(id)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}
