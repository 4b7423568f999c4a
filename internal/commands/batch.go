package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gerunddev/markbridge/internal/batch"
	"github.com/gerunddev/markbridge/internal/config"
	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gerunddev/markbridge/internal/daemon"
	"github.com/gerunddev/markbridge/internal/diff"
	"github.com/gerunddev/markbridge/internal/logger"
	"github.com/gerunddev/markbridge/internal/state"
	"github.com/gerunddev/markbridge/internal/styles"
	"github.com/gerunddev/markbridge/internal/tui"
)

// batchSetup is what the directory commands share
type batchSetup struct {
	cfg     *config.Config
	log     *logger.Logger
	state   *state.State
	conv    *convert.Converter
	from    convert.Format
	to      convert.Format
	srcDir  string
	outDir  string
	cleanup func()
}

func newBatchSetup(a args) *batchSetup {
	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)

	from, to, err := resolveFormats(cfg, a.flags["--from"], a.flags["--to"], "", "")
	if err != nil {
		cleanup()
		fail(err.Error())
	}

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		cleanup()
		fail("Error loading state: " + err.Error())
	}

	return &batchSetup{
		cfg:     cfg,
		log:     log,
		state:   st,
		conv:    convert.NewConverter(cfg.ConverterOptions(), log),
		from:    from,
		to:      to,
		srcDir:  a.arg(0, cfg.SourceDir),
		outDir:  a.arg(1, cfg.OutputDir),
		cleanup: cleanup,
	}
}

func (s *batchSetup) batcher(dryRun bool) *batch.Batcher {
	return batch.NewBatcher(s.conv, s.state, batch.Options{
		From:            s.from,
		To:              s.to,
		Workers:         s.cfg.Workers,
		ExcludePatterns: s.cfg.ExcludePatterns,
		DryRun:          dryRun,
	}, s.log)
}

// saveState drops entries for deleted sources and writes the state file
func (s *batchSetup) saveState() error {
	s.state.Prune(func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	})
	if err := s.state.Save(config.StateFilePath()); err != nil {
		s.log.StateError("save", err)
		return err
	}
	return nil
}

// Batch converts every changed file of the source directory once
func Batch(raw []string) {
	a, err := parseArgs(raw, []string{"--from", "--to"}, []string{"--dry-run"})
	if err != nil {
		fail(err.Error())
	}
	dryRun := a.switches["--dry-run"]

	s := newBatchSetup(a)
	defer s.cleanup()

	if dryRun {
		fmt.Println(styles.TitleStyle.Render("MarkBridge Batch (DRY RUN)"))
	} else {
		fmt.Println(styles.TitleStyle.Render("MarkBridge Batch"))
	}
	fmt.Printf("%s → %s  %s\n", styles.DimStyle.Render(s.srcDir), styles.DimStyle.Render(s.outDir),
		styles.DimStyle.Render(fmt.Sprintf("(%s → %s)", s.from, s.to)))
	if dryRun {
		fmt.Println(styles.DimStyle.Render("(dry run - no files will be written)"))
	}

	b := s.batcher(dryRun)
	result, err := tui.RunBatch("Converting files...", func() (*batch.Result, error) {
		return b.Run(context.Background(), s.srcDir, s.outDir)
	})
	if err != nil {
		fail("Batch failed: " + err.Error())
	}

	if !dryRun {
		if err := s.saveState(); err != nil {
			fail("Error saving state: " + err.Error())
		}
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

// Watch reruns the batch every configured interval until interrupted
func Watch(raw []string) {
	a, err := parseArgs(raw, []string{"--from", "--to", "--interval"}, nil)
	if err != nil {
		fail(err.Error())
	}

	s := newBatchSetup(a)
	defer s.cleanup()

	interval := s.cfg.Interval
	if v, ok := a.flags["--interval"]; ok {
		interval, err = time.ParseDuration(v)
		if err != nil || interval <= 0 {
			fail("Invalid interval: " + v)
		}
	}

	if running, pid, _ := daemon.IsRunning(); running {
		fail(fmt.Sprintf("Watch already running with PID %d", pid))
	}
	if err := daemon.WritePID(); err != nil {
		fail(err.Error())
	}
	defer func() {
		if err := daemon.RemovePID(); err != nil {
			s.log.Warn("failed to remove PID file", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(styles.TitleStyle.Render("MarkBridge Watch"))
	fmt.Printf("%s → %s every %v\n", styles.DimStyle.Render(s.srcDir), styles.DimStyle.Render(s.outDir), interval)
	fmt.Println(styles.HelpStyle.Render("Press ctrl+c to stop"))
	fmt.Println()

	s.log.Info("watch started", "interval", interval, "source", s.srcDir, "output", s.outDir)

	b := s.batcher(false)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		runOnce(ctx, s, b)

		select {
		case <-ctx.Done():
			s.log.Info("watch stopped")
			fmt.Println(styles.DimStyle.Render("Stopped"))
			return
		case <-ticker.C:
		}
	}
}

func runOnce(ctx context.Context, s *batchSetup, b *batch.Batcher) {
	result, err := b.Run(ctx, s.srcDir, s.outDir)
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		s.log.Error("batch failed", "error", err)
		fmt.Println(styles.ErrorStyle.Render("✗ " + err.Error()))
		return
	}

	if err := s.saveState(); err != nil {
		fmt.Println(styles.ErrorStyle.Render("✗ Error saving state: " + err.Error()))
	}

	if len(result.Converted) == 0 && len(result.Errors) == 0 {
		return
	}
	stamp := styles.DimStyle.Render(result.EndTime.Format(time.TimeOnly))
	if len(result.Errors) > 0 {
		fmt.Println(stamp, styles.WarningStyle.Render(result.String()))
		for _, err := range result.Errors {
			fmt.Println("  " + styles.ErrorStyle.Render(err.Error()))
		}
		return
	}
	fmt.Println(stamp, styles.SuccessStyle.Render(result.String()))
}

// Browse lists the source files in an interactive browser with diff
// previews and single-file conversion
func Browse(raw []string) {
	a, err := parseArgs(raw, []string{"--from", "--to"}, nil)
	if err != nil {
		fail(err.Error())
	}

	s := newBatchSetup(a)
	defer s.cleanup()

	diffFunc := func(sourcePath, outputPath string) (string, error) {
		return diff.Generate(sourcePath, outputPath, s.conv)
	}

	convertFunc := func(sourcePath, outputPath string) error {
		input, err := os.ReadFile(sourcePath)
		if err != nil {
			return err
		}
		out, err := s.conv.Convert(s.from, s.to, input)
		if err != nil {
			return errors.New(describeError(filepath.Base(sourcePath), input, err))
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, []byte(out), 0644); err != nil {
			return err
		}
		s.log.FileConverted(sourcePath, outputPath)
		if err := s.state.Update(sourcePath, outputPath, s.to.String()); err != nil {
			return err
		}
		return s.saveState()
	}

	var p *tea.Program
	sendBrowseData := func() {
		data, err := browseData(s)
		p.Send(tui.BrowseMsg{Data: data, Err: err})
	}

	m := tui.InitBrowseModel(diffFunc, convertFunc, sendBrowseData)
	p = tea.NewProgram(m, tea.WithAltScreen())

	go sendBrowseData()

	if _, err := p.Run(); err != nil {
		fail("Error: " + err.Error())
	}
}

// browseData lists the source files with their status against the state
func browseData(s *batchSetup) (*tui.BrowseData, error) {
	files, err := batch.ScanDirectory(s.srcDir, s.outDir, s.from, s.cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.srcDir, err)
	}

	data := &tui.BrowseData{
		SourceDir: s.srcDir,
		OutputDir: s.outDir,
	}
	for _, path := range files {
		out, err := batch.OutputPath(s.srcDir, s.outDir, path, s.to)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(s.srcDir, path)
		if err != nil {
			rel = path
		}

		status := tui.StatusNew
		if _, tracked := s.state.Get(path); tracked {
			status = tui.StatusConverted
			if changed, err := s.state.HasChanged(path, s.to.String()); err != nil || changed {
				status = tui.StatusChanged
			}
		}

		data.Files = append(data.Files, tui.FileInfo{
			Name:       rel,
			SourcePath: path,
			OutputPath: out,
			Status:     status,
		})
	}
	return data, nil
}
