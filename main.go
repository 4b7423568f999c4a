package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/markbridge/internal/commands"
	"github.com/gerunddev/markbridge/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "convert":
		commands.Convert(os.Args[2:])
	case "preview":
		commands.Preview(os.Args[2:])
	case "diff":
		commands.Diff(os.Args[2:])
	case "batch":
		commands.Batch(os.Args[2:])
	case "browse", "files":
		commands.Browse(os.Args[2:])
	case "watch":
		commands.Watch(os.Args[2:])
	case "start":
		commands.Start(os.Args[2:])
	case "stop":
		commands.Stop()
	case "status":
		commands.Status()
	case "dashboard":
		commands.Dashboard()
	case "install":
		commands.Install()
	case "uninstall":
		commands.Uninstall()
	case "serve":
		commands.Serve(os.Args[2:])
	case "config":
		commands.Config(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("markbridge v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`markbridge - Convert documents between Markdown, BBCode, HTML and plain text

Usage:
  markbridge <command> [options]

Commands:
  convert     Convert a file or stdin (--from, --to, -o)
  preview     Convert a file and show the result in a scrollable view
  diff        Show what converting a source would change in its output
  batch       Convert every changed file of a directory (use --dry-run to preview)
  browse      Browse source files, diff and convert them one by one
  watch       Rerun the batch conversion every interval
  start       Run watch in the background
  stop        Stop the background watch
  status      Show watch state and pending files
  dashboard   Show the watch state and its recent log, refreshed live
  install     Install a user service (launchd/systemd) that runs watch
  uninstall   Remove the user service
  serve       Run the HTTP conversion service
  config      Manage the configuration file (init, show, path)
  version     Show version information
  help        Show this help message

Formats:
  markdown (md), bbcode (bb), html (htm, target only), text (txt, plain)

Examples:
  markbridge convert post.bbcode
  markbridge convert --from bb --to html -o post.html post.bbcode
  cat post.bb | markbridge convert --to text -
  markbridge preview post.bbcode
  markbridge batch --dry-run
  markbridge watch --interval 1m
  markbridge start --interval 5m
  markbridge serve --addr :8080

Configuration:
  Config file: %s
  State file:  %s

For more information, visit: https://github.com/gerunddev/markbridge
`, config.ConfigPath(), config.StateFilePath())
	fmt.Print(usage)
}
