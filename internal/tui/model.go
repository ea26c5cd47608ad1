package tui

import (
	"io"
	"log/slog"
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"zonedit/internal/config"
	"zonedit/internal/editor"
	"zonedit/internal/imageref"
	"zonedit/internal/zone"
)

const sidebarWidth = 34

// panel is what currently owns the keyboard besides the canvas.
type panel int

const (
	panelNone panel = iota
	panelFiles
	panelZones
	panelInput
)

// pickKind says what the file picker opens.
type pickKind int

const (
	pickDocument pickKind = iota
	pickImage
)

// inputKind says what the textarea edits.
type inputKind int

const (
	inputWKT inputKind = iota
	inputRename
	inputContent
)

// shared holds state that must survive Model copies. The store listener
// marks the zone table dirty here.
type shared struct {
	zonesDirty bool
	watcher    *fsnotify.Watcher
	watched    string
}

type Options struct {
	Editor    *editor.Editor
	Config    *config.Config
	Logger    *slog.Logger
	DocPath   string
	ImagePath string
}

type Model struct {
	width  int
	height int

	ed     *editor.Editor
	cfg    *config.Config
	logger *slog.Logger
	sh     *shared

	panel       panel
	helpVisible bool
	status      string
	statusErr   bool

	// canvas placement in cells, refreshed by layout
	canvasX, canvasY int
	canvasW, canvasH int

	// double-click synthesis
	now       func() time.Time
	lastPress time.Time
	lastCellX int
	lastCellY int

	// background
	bg           *imageref.Image
	pendingImage string

	// documents
	docPath  string
	lastSync []byte

	// File picker
	cwd  string
	l    list.Model
	pick pickKind

	// zone list
	tbl table.Model

	// textarea for WKT paste, rename, content
	ta      textarea.Model
	input   inputKind
	inputID string
}

func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ed := opts.Editor
	if ed == nil {
		ed = editor.New(zone.NewStore(cfg.ZoneColor), cfg.EditorOptions(), logger)
	}
	sh := &shared{zonesDirty: true}
	ed.Store().OnChange(func(zone.Event) { sh.zonesDirty = true })
	m := Model{
		ed:           ed,
		cfg:          cfg,
		logger:       logger,
		sh:           sh,
		helpVisible:  true,
		status:       "zonedit ready",
		now:          time.Now,
		docPath:      opts.DocPath,
		pendingImage: opts.ImagePath,
	}

	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// zone table setup
	m.tbl = table.New(table.WithColumns(zoneColumns()), table.WithFocused(true))
	m.tbl.SetHeight(12)

	return m
}

// Init kicks off the initial document and image reads.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.docPath != "" {
		cmds = append(cmds, readDocCmd(m.docPath, false))
	}
	if m.pendingImage != "" {
		cmds = append(cmds, loadImageCmd(m.pendingImage))
	}
	return tea.Batch(cmds...)
}

// Close releases the file watcher.
func (m Model) Close() error {
	if m.sh.watcher == nil {
		return nil
	}
	return m.sh.watcher.Close()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string, err error) {
	m.status = s + ": " + err.Error()
	m.statusErr = true
}
