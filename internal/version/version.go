// Package version reports which nescore build is running.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Set at link time, e.g. -ldflags "-X nescore/internal/version.Version=1.0.0".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Modified  bool
	GoVersion string
	Platform  string
}

// Read collects the link-time values, filling the gaps from the VCS stamp
// the go tool embeds in module builds.
func Read() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = setting.Value
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}

func (i Info) shortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// Short is the compact form used in log lines: the linked version, or
// dev-<commit> for untagged builds.
func (i Info) Short() string {
	if i.Version != "dev" || i.Commit == "" {
		return i.Version
	}
	s := "dev-" + i.shortCommit()
	if i.Modified {
		s += "+dirty"
	}
	return s
}

// String is the one-line banner printed by -version.
func (i Info) String() string {
	s := "nescore " + i.Short()
	if i.Commit != "" {
		s += " (commit " + i.shortCommit() + ")"
	}
	if i.BuildTime != "" {
		s += " built " + i.BuildTime
	}
	return fmt.Sprintf("%s, %s %s", s, i.GoVersion, i.Platform)
}

// PrintBuildInfo writes the banner followed by one field per line.
func PrintBuildInfo(w io.Writer) {
	info := Read()

	fmt.Fprintln(w, info)
	fmt.Fprintf(w, "Version:     %s\n", info.Version)
	fmt.Fprintf(w, "Commit:      %s\n", orUnknown(info.Commit))
	fmt.Fprintf(w, "Build Time:  %s\n", orUnknown(info.BuildTime))
	fmt.Fprintf(w, "Modified:    %t\n", info.Modified)
	fmt.Fprintf(w, "Go Version:  %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform:    %s\n", info.Platform)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
