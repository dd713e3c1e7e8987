package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/livefir/tmplmin/cmd/tmplmin/commands"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error

	switch command {
	case "minify":
		err = commands.Minify(args)
	case "check":
		err = commands.Check(args)
	case "inspect":
		err = commands.Inspect(args)
	case "cache":
		err = commands.CacheCmd(args)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("tmplmin version %s\n", version)

	// Try to get build info from debug.ReadBuildInfo()
	if info, ok := debug.ReadBuildInfo(); ok {
		// Get VCS info if available
		var vcsRevision, vcsTime, vcsModified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				vcsRevision = setting.Value
			case "vcs.time":
				vcsTime = setting.Value
			case "vcs.modified":
				vcsModified = setting.Value
			}
		}

		// Show commit if we have it
		if commit != "unknown" {
			fmt.Printf("commit: %s\n", commit)
		} else if vcsRevision != "" {
			// Shorten commit hash
			if len(vcsRevision) > 12 {
				vcsRevision = vcsRevision[:12]
			}
			fmt.Printf("commit: %s\n", vcsRevision)
		}

		// Show build timestamp - this is the actual binary build time
		if date != "unknown" {
			fmt.Printf("built: %s\n", date)
		} else if vcsTime != "" {
			// Parse and format VCS time (commit time, not build time)
			if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
				fmt.Printf("commit date: %s\n", t.Format("2006-01-02 15:04:05 MST"))
			}
		}

		// Show if working directory has uncommitted changes
		if vcsModified == "true" {
			fmt.Printf("modified: true (uncommitted changes)\n")
		}

		fmt.Printf("go: %s\n", info.GoVersion)
	}

	// If no build timestamp was injected, show when this binary could have been built
	if date == "unknown" {
		fmt.Printf("\nNote: Build without timestamp. To add build info, use:\n")
		fmt.Printf("  go build -ldflags \"-X main.date=$(date -u +%%Y-%%m-%%dT%%H:%%M:%%SZ)\" -o tmplmin\n")
	}
}

func printUsage() {
	fmt.Println("tmplmin - Go template minifier")
	fmt.Println()
	fmt.Println("Minifies html/template and text/template files without changing")
	fmt.Println("what they render.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tmplmin minify [flags] <file|dir>...   Minify template files")
	fmt.Println("  tmplmin check <file>...                Verify files survive the pass")
	fmt.Println("  tmplmin inspect [--minified] <file>    Dump the parsed token tree as JSON")
	fmt.Println("  tmplmin cache <command>                Manage the result cache")
	fmt.Println("  tmplmin version                        Show version information")
	fmt.Println()
	fmt.Println("Minify Flags:")
	fmt.Println("  -w                Rewrite files in place")
	fmt.Println("  -o <dir>          Write outputs under a directory")
	fmt.Println("  --document        Treat inputs as plain HTML documents")
	fmt.Println("  --keep-comments   Keep markup comments")
	fmt.Println("  --no-cache        Skip the result cache")
	fmt.Println("  --stats           Print a JSON stats snapshot to stderr")
	fmt.Println("  --progress        Show a live progress display")
	fmt.Println("  --jobs <n>        Number of parallel workers (default: one per CPU)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tmplmin minify index.tmpl")
	fmt.Println("  tmplmin minify -w templates/")
	fmt.Println("  tmplmin minify -o dist/ --stats --progress templates/")
	fmt.Println("  tmplmin minify --document static/index.html")
	fmt.Println("  tmplmin check templates/*.tmpl")
	fmt.Println()
	fmt.Println("Cache Commands:")
	fmt.Println("  tmplmin cache status               Show entry count and bytes saved")
	fmt.Println("  tmplmin cache purge                Delete all cached results")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  ~/.config/tmplmin/config.yaml      Default jobs, extensions, excludes,")
	fmt.Println("                                     cache path, keep_comments")
}
