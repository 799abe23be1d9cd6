package build

// Info describes the binary, populated by the linker in release builds.
type Info struct {
	Version string
	Commit  string
	Date    string
}

type Key struct{}

// InfoKey stores *Info on a command context.
var InfoKey = Key{}

var (
	// Version may be overridden with -ldflags "-X ...build.Version=..."
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Current returns the linked build metadata.
func Current() *Info {
	return &Info{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	}
}
