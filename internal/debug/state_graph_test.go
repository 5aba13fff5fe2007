package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nescore/internal/bus"
)

func TestWriteStateGraph_ShouldDescribeSnapshot(t *testing.T) {
	var out bytes.Buffer
	WriteStateGraph(&out, bus.New(nil, nil, nil).Snapshot())

	graph := out.String()
	if !strings.Contains(graph, "digraph") {
		t.Fatalf("output is not a dot graph: %q", graph)
	}
	for _, field := range []string{"CPUCycles", "Frames", "DMAPending"} {
		if !strings.Contains(graph, field) {
			t.Errorf("graph does not mention %s", field)
		}
	}
}

func TestSaveStateGraph_ShouldWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.dot")
	if err := SaveStateGraph(path, bus.New(nil, nil, nil)); err != nil {
		t.Fatalf("SaveStateGraph() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read graph: %v", err)
	}
	if len(data) == 0 {
		t.Error("state graph file is empty")
	}
}

func TestSaveStateGraph_ShouldFailOnBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "state.dot")
	if err := SaveStateGraph(path, bus.New(nil, nil, nil)); err == nil {
		t.Error("expected error for missing directory")
	}
}
