// Storyloom plays, edits and checks branching interactive-fiction stories.
// Usage: storyloom <command> [flags] <story>
package main

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	Execute()
}
