//go:build statsview
// +build statsview

package statsview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const Address = "localhost:12600"
const url = "/debug/statsview"

// Launch starts the stats server in a new goroutine. It stops when ctx ends.
func Launch(ctx context.Context, output io.Writer) error {
	viewer.SetConfiguration(viewer.WithAddr(Address))
	mgr := statsview.New()

	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[STATS] server failed: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		mgr.Stop()
	}()

	_, err := fmt.Fprintf(output, "stats server available at %s%s\n", Address, url)
	return err
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return true
}
