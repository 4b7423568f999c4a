package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gerunddev/markbridge/internal/config"
	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gerunddev/markbridge/internal/logger"
	"github.com/gerunddev/markbridge/internal/styles"
)

// args holds the flags and positional arguments of one command
type args struct {
	flags      map[string]string
	switches   map[string]bool
	positional []string
}

// parseArgs splits raw arguments into flags taking a value, boolean
// switches and positional arguments. A lone "-" is positional (stdin).
func parseArgs(raw []string, valueFlags, switchFlags []string) (args, error) {
	a := args{
		flags:    map[string]string{},
		switches: map[string]bool{},
	}

	isValue := map[string]bool{}
	for _, f := range valueFlags {
		isValue[f] = true
	}
	isSwitch := map[string]bool{}
	for _, f := range switchFlags {
		isSwitch[f] = true
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch {
		case isValue[name]:
			if !hasValue {
				if i+1 >= len(raw) {
					return a, fmt.Errorf("flag %s needs a value", name)
				}
				i++
				value = raw[i]
			}
			a.flags[name] = value
		case isSwitch[arg]:
			a.switches[arg] = true
		case arg != "-" && strings.HasPrefix(arg, "-"):
			return a, fmt.Errorf("unknown flag: %s", arg)
		default:
			a.positional = append(a.positional, arg)
		}
	}
	return a, nil
}

// arg returns the i-th positional argument or def
func (a args) arg(i int, def string) string {
	if i < len(a.positional) {
		return a.positional[i]
	}
	return def
}

// resolveFormats picks the conversion formats. Explicit names win, then
// the file extensions, then the configured defaults.
func resolveFormats(cfg *config.Config, fromName, toName, inPath, outPath string) (convert.Format, convert.Format, error) {
	from, err := resolveFormat(fromName, inPath, cfg.From)
	if err != nil {
		return "", "", fmt.Errorf("invalid source format: %w", err)
	}
	if !from.Readable() {
		return "", "", fmt.Errorf("cannot convert from %s: %w", from, convert.ErrUnsupportedSource)
	}

	to, err := resolveFormat(toName, outPath, cfg.To)
	if err != nil {
		return "", "", fmt.Errorf("invalid target format: %w", err)
	}
	return from, to, nil
}

func resolveFormat(name, path, def string) (convert.Format, error) {
	if name != "" {
		return convert.ParseFormat(name)
	}
	if path != "" && path != "-" {
		if f, err := convert.FormatFromPath(path); err == nil {
			return f, nil
		}
	}
	return convert.ParseFormat(def)
}

// describeError formats a conversion failure. Parse errors are located as
// name:line:column so editors can jump to them.
func describeError(name string, input []byte, err error) string {
	if loc, ok := convert.Locate(err, input); ok {
		return fmt.Sprintf("%s:%d:%d: %s", name, loc.Line, loc.Column, loc.Err.Error())
	}
	return fmt.Sprintf("%s: %v", name, err)
}

// failConversion reports a conversion failure and exits. Parse errors lead
// with their location.
func failConversion(name string, input []byte, err error) {
	if loc, ok := convert.Locate(err, input); ok {
		where := styles.LocationStyle.Render(fmt.Sprintf("%s:%d:%d:", name, loc.Line, loc.Column))
		fmt.Fprintln(os.Stderr, where+" "+styles.ErrorStyle.Render(loc.Err.Error()))
		os.Exit(1)
	}
	fail(describeError(name, input, err))
}

// loadConfig loads the configuration or exits
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fail("Error loading config: " + err.Error())
	}
	return cfg
}

// setupLogger opens the configured log file at the configured level. When
// the file cannot be opened logging is discarded.
func setupLogger(cfg *config.Config) (*logger.Logger, func()) {
	if cfg.LogFile == "" {
		return logger.Discard(), func() {}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return logger.Discard(), func() {}
	}
	l, cleanup, err := logger.NewFileLogger(cfg.LogFile)
	if err != nil {
		return logger.Discard(), func() {}
	}
	l.SetLevel(cfg.Level())
	l.ConfigLoaded(config.ConfigPath(), cfg.From, cfg.To)
	return l, cleanup
}

// readInput reads a file, or stdin for "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// displayName is how an input is named in messages
func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

// ParseLogFile reads the last maxLines lines of the log file and picks the
// time and converted count of the latest completed batch run.
func ParseLogFile(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	var (
		lastRun   time.Time
		converted int
	)
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !strings.Contains(line, "batch completed") {
			continue
		}
		// 2026-10-19 14:11:57 INFO batch completed run=… files_converted=3
		if len(line) >= len(time.DateTime) {
			if t, err := time.ParseInLocation(time.DateTime, line[:len(time.DateTime)], time.Local); err == nil {
				lastRun = t
			}
		}
		if idx := strings.Index(line, "files_converted="); idx != -1 {
			_, _ = fmt.Sscanf(line[idx:], "files_converted=%d", &converted) //nolint:errcheck // best effort
		}
		break
	}
	return lines, lastRun, converted
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ "+msg))
	os.Exit(1)
}
