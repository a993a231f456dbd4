// loupe is a terminal image viewer.
//
// It renders images inline using the best graphics protocol the terminal
// offers (Kitty, iTerm2, Sixel) and falls back to Unicode half-blocks
// everywhere else. Decoding happens on a background worker with an LRU
// cache, so flipping through a directory stays responsive.
//
// Usage:
//
//	loupe [flags] [path ...]
//
// With no arguments loupe starts empty. One argument opens that file and
// browses its directory; more arguments browse exactly the listed files.
//
// Flags:
//
//	-config string    Path to configuration file (default: ~/.config/loupe/config.toml)
//	-protocol string  Force a graphics protocol (kitty|iterm2|sixel|halfblocks)
//	-shuffle          Start with random-order navigation for the slideshow
//	-verbose          Enable verbose logging
//	-version          Print version and exit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/loupe/pkg/browse"
	"gitlab.com/tinyland/lab/loupe/pkg/cache"
	"gitlab.com/tinyland/lab/loupe/pkg/config"
	"gitlab.com/tinyland/lab/loupe/pkg/loader"
	"gitlab.com/tinyland/lab/loupe/pkg/render"
	"gitlab.com/tinyland/lab/loupe/pkg/terminal"
	"gitlab.com/tinyland/lab/loupe/pkg/tui"
	"gitlab.com/tinyland/lab/loupe/pkg/viewer"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		protocol    = flag.String("protocol", "", "Force a graphics protocol (kitty|iterm2|sixel|halfblocks)")
		shuffle     = flag.Bool("shuffle", false, "Start with random-order navigation for the slideshow")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("loupe %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "loupe needs an interactive terminal")
		os.Exit(1)
	}

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *protocol != "" {
		cfg.Display.Protocol = *protocol
	}
	if *shuffle {
		cfg.Slideshow.Shuffle = true
	}

	logger, closeLog, err := setupLogging(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	nav, err := navigationFromArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	caps := terminal.DetectCapabilities()
	proto := terminal.SelectProtocolWithOverride(caps.Term, cfg.Display.Protocol)
	if proto == terminal.ProtocolNone {
		proto = terminal.ProtocolHalfblocks
	}
	logger.Info("starting loupe",
		"terminal", caps.Term,
		"protocol", proto,
		"cache_capacity", cfg.Cache.Capacity.String(),
	)

	imageCache := cache.New(int64(cfg.Cache.Capacity))

	// The worker holds a repaint hook that fires before the program
	// exists, so it goes through an atomic pointer filled in below.
	var prog atomic.Pointer[tea.Program]
	handle := loader.Spawn(loader.Config{
		Navigation: nav,
		Cache:      imageCache,
		Logger:     logger,
		Repaint: func() {
			if p := prog.Load(); p != nil {
				p.Send(tui.RepaintMsg{})
			}
		},
	})

	renderer := render.New(render.Options{
		Protocol:       proto,
		CellW:          caps.Size.CellW,
		CellH:          caps.Size.CellH,
		Checkered:      cfg.Display.Checkered,
		DarkBackground: darkBackground(cfg.Display.Background),
	})

	model := tui.New(tui.Config{
		State:             viewer.New(handle),
		Renderer:          renderer,
		SlideshowInterval: cfg.Slideshow.Interval.Duration,
		SlideshowShuffle:  cfg.Slideshow.Shuffle,
		ShowSidebar:       cfg.Display.ShowSidebar,
		Logger:            logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	prog.Store(p)
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		os.Exit(1)
	}
}

// setupLogging writes slog output to the configured log file. Stderr is
// off limits while the TUI owns the terminal.
func setupLogging(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	path := cfg.General.LogFile
	if path == "" {
		path = config.DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.General.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger, func() { logFile.Close() }, nil
}

// navigationFromArgs maps command line paths onto a navigation mode:
// nothing, a single file browsing its directory, or a fixed list.
func navigationFromArgs(args []string) (loader.NavigationMode, error) {
	switch len(args) {
	case 0:
		return loader.NavigateEmpty(), nil
	case 1:
		path, err := resolvePath(args[0])
		if err != nil {
			return loader.NavigationMode{}, err
		}
		return loader.NavigateDirectory(path), nil
	default:
		paths := make([]string, len(args))
		for i, arg := range args {
			path, err := resolvePath(arg)
			if err != nil {
				return loader.NavigationMode{}, err
			}
			paths[i] = path
		}
		return loader.NavigateList(paths, 0), nil
	}
}

func resolvePath(arg string) (string, error) {
	path, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", arg, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", arg, err)
	}
	if info.IsDir() {
		return firstImageIn(path)
	}
	return path, nil
}

// firstImageIn picks the first image of dir in natural name order, so
// that `loupe .` starts somewhere sensible.
func firstImageIn(dir string) (string, error) {
	names, err := browse.ListImageNames(dir)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", dir, err)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%s contains no images", dir)
	}
	first := names[0]
	for _, name := range names[1:] {
		if browse.Compare(name, first) < 0 {
			first = name
		}
	}
	return filepath.Join(dir, first), nil
}

// darkBackground resolves the configured background setting, asking the
// terminal when set to auto.
func darkBackground(setting string) bool {
	switch setting {
	case "dark":
		return true
	case "light":
		return false
	default:
		return termenv.NewOutput(os.Stdout).HasDarkBackground()
	}
}
