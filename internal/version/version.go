package version

// Version is the docpress release string, injected at link time:
// go build -ldflags "-X git.home.luguber.info/inful/docpress/internal/version.Version=v0.3.0".
var Version = "dev"

// Build metadata injected alongside Version.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by `docpress --version`.
func String() string {
	return Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
