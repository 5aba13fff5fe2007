package debug

import (
	"fmt"
	"io"
	"os"

	"github.com/bradleyjkemp/memviz"

	"nescore/internal/bus"
)

// WriteStateGraph writes the snapshot as a Graphviz dot graph.
func WriteStateGraph(w io.Writer, snapshot bus.Snapshot) {
	memviz.Map(w, &snapshot)
}

// SaveStateGraph writes the current state of b to path.
func SaveStateGraph(path string, b *bus.Bus) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create state graph: %w", err)
	}
	WriteStateGraph(file, b.Snapshot())
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write state graph: %w", err)
	}
	return nil
}
