package domain

// RepoMetrics represents repository metadata from a source-hosting API.
type RepoMetrics struct {
	Owner        string
	Name         string
	Stars        int
	Forks        int
	Contributors int
	Commits90d   int   // commits in the trailing 90 days
	OpenIssues   int
	Archived     bool
	HasLicense   bool
	HasReadme    bool
	HasTests     bool // test files present in the listing
	HasCI        bool // CI workflow files present
	ReadmeLength int  // bytes of README text
	CreatedAt    int64 // Unix ms
	PushedAt     int64 // last push, Unix ms
}
