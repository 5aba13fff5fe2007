// Package statsview is an optional package that is built only when the
// statsview build constraint is present.
//
// It runs a local HTTP server offering runtime statistics of the emulator
// process, provided by "github.com/go-echarts/statsview". After launch the
// graphs are at:
//
//	localhost:12600/debug/statsview
//
// and the standard pprof pages at:
//
//	localhost:12600/debug/pprof/
package statsview
