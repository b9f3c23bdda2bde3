package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/tagnote/internal/query"
	"github.com/starford/tagnote/internal/service"
	"github.com/starford/tagnote/internal/testutil"
)

// watcherTestEnv sets up a notes dir, store file, and service.
func watcherTestEnv(t *testing.T) (string, *service.Service) {
	t.Helper()
	svc, dir := testutil.TestService(t)
	return dir.Root(), svc
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func registered(svc *service.Service) int {
	blocks, err := svc.Show(nil, query.Descending, "")
	if err != nil {
		return -1
	}
	return len(blocks)
}

func TestWatcher_NewNoteRegistered(t *testing.T) {
	notesDir, svc := watcherTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, svc, notesDir, logger, func(kind, id string) {
		mu.Lock()
		events = append(events, kind+":"+id)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	id := "2020-01-01_00-00-01.txt"
	_ = os.WriteFile(filepath.Join(notesDir, id), []byte("hello"), 0o644)
	// A non-note file must be ignored.
	_ = os.WriteFile(filepath.Join(notesDir, "scratch.md"), []byte("ignored"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return registered(svc) == 1
	}, "new note not registered by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "registered:"+id {
				return true
			}
		}
		return false
	}, "registered event not published")
}

func TestWatcher_RemovedNoteDeregistered(t *testing.T) {
	notesDir, svc := watcherTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	id := "2020-01-01_00-00-01.txt"
	path := filepath.Join(notesDir, id)
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := svc.RegisterNote(id); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, svc, notesDir, logger, nil)

	time.Sleep(100 * time.Millisecond)
	_ = os.Remove(path)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return registered(svc) == 0
	}, "removed note not deregistered by watcher")
}
