package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kgview/pkg/config"
	"github.com/matzehuels/kgview/pkg/pipeline"
)

func TestRelevant(t *testing.T) {
	dir := isolate(t)
	target := filepath.Join(dir, "graph.json")

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create after rename-on-save", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: target, Op: fsnotify.Rename}, true},
		{"write with chmod", fsnotify.Event{Name: target, Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"relative name", fsnotify.Event{Name: "graph.json", Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"sibling file", fsnotify.Event{Name: filepath.Join(dir, "graph.json.swp"), Op: fsnotify.Write}, false},
		{"same name elsewhere", fsnotify.Event{Name: filepath.Join(dir, "sub", "graph.json"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.ev, target))
		})
	}
}

// chanWriter hands every Write to the test goroutine.
type chanWriter chan string

func (w chanWriter) Write(p []byte) (int, error) {
	w <- string(p)
	return len(p), nil
}

func payloadWithNodes(n int) string {
	nodes := ""
	for i := range n {
		if i > 0 {
			nodes += ","
		}
		nodes += fmt.Sprintf(`{"entity_name":"n%d","entity_type":"t"}`, i)
	}
	return `{"nodes":[` + nodes + `],"edges":[]}`
}

func TestWatchCollapsesBurstIntoOneRun(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "graph.json")
	require.NoError(t, os.WriteFile(file, []byte(payloadWithNodes(1)), 0o644))

	c := New(io.Discard, LogInfo)
	c.Config = config.Default()
	c.Config.Cache.Backend = "none"
	c.Config.Snapshot.Backend = "none"
	c.Config.Watch.Debounce = config.Duration(200 * time.Millisecond)

	opts := pipeline.Options{File: file}
	require.NoError(t, opts.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chanWriter, 16)
	done := make(chan error, 1)
	go func() { done <- c.watch(ctx, out, opts, transformFlags{noCache: true}) }()

	next := func(within time.Duration) (string, bool) {
		select {
		case s := <-out:
			return s, true
		case <-time.After(within):
			return "", false
		}
	}

	first, ok := next(5 * time.Second)
	require.True(t, ok, "initial run did not emit")
	assert.Contains(t, first, `"n0"`)

	for i := 2; i <= 6; i++ {
		require.NoError(t, os.WriteFile(file, []byte(payloadWithNodes(i)), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	second, ok := next(5 * time.Second)
	require.True(t, ok, "burst did not trigger a re-run")
	assert.Contains(t, second, `"n5"`, "re-run should see the final content")

	extra, ok := next(600 * time.Millisecond)
	assert.False(t, ok, "burst triggered more than one re-run: %s", extra)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
