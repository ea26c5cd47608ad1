package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"zonedit/internal/config"
	"zonedit/internal/editor"
	"zonedit/internal/tui"
	"zonedit/internal/zone"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code; main is the only caller of os.Exit.
func run() int {
	var (
		cfgPath  = flag.String("config", config.DefaultPath, "config file (TOML)")
		logPath  = flag.String("log", "", "write JSON logs to this file")
		imgPath  = flag.String("image", "", "background image to load at start")
		saveConf = flag.Bool("write-config", false, "write the effective config and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: zonedit [flags] [document.json]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
	}
	if *saveConf {
		if err := cfg.Save(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, "zonedit:", err)
			return 1
		}
		return 0
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if *logPath != "" {
		p, err := config.Expand(*logPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "zonedit:", err)
			return 1
		}
		f, err := tea.LogToFile(p, "zonedit")
		if err != nil {
			fmt.Fprintln(os.Stderr, "zonedit:", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	logger := NewLogger(out, cfg.Level())

	docPath := flag.Arg(0)
	if docPath != "" {
		if docPath, err = config.Expand(docPath); err != nil {
			fmt.Fprintln(os.Stderr, "zonedit:", err)
			return 1
		}
	}
	img := *imgPath
	if img != "" {
		if img, err = config.Expand(img); err != nil {
			fmt.Fprintln(os.Stderr, "zonedit:", err)
			return 1
		}
	}

	ed := editor.New(zone.NewStore(cfg.ZoneColor), cfg.EditorOptions(), logger)
	m := tui.New(tui.Options{Editor: ed, Config: cfg, Logger: logger, DocPath: docPath, ImagePath: img})
	defer m.Close()

	logger.Info("zonedit starting", "document", docPath, "image", img, "config", *cfgPath)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		logger.Error("ui exited", "error", err)
		fmt.Fprintln(os.Stderr, "zonedit:", err)
		return 1
	}
	return 0
}
