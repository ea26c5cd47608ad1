package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"zonedit/internal/imageref"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

var (
	docExts   = map[string]bool{".json": true, ".geojson": true}
	imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true, ".webp": true}
)

// Messages produced by file commands. They are applied in Update, so the
// editor is only ever mutated on the event loop.
type (
	docReadMsg struct {
		path   string
		data   []byte
		reload bool
		err    error
	}
	imageLoadedMsg struct {
		path string
		img  imageref.Image
		err  error
	}
	fileWrittenMsg struct {
		path string
		what string
		err  error
	}
)

func readDocCmd(path string, reload bool) tea.Cmd {
	return func() tea.Msg {
		b, err := os.ReadFile(path)
		return docReadMsg{path: path, data: b, reload: reload, err: err}
	}
}

func loadImageCmd(path string) tea.Cmd {
	return func() tea.Msg {
		img, err := imageref.Load(path)
		return imageLoadedMsg{path: path, img: img, err: err}
	}
}

func writeFileCmd(path, what string, data []byte) tea.Cmd {
	return func() tea.Msg {
		err := os.WriteFile(path, data, 0o644)
		return fileWrittenMsg{path: path, what: what, err: err}
	}
}

func (m *Model) openPicker(kind pickKind) {
	m.pick = kind
	m.l.Title = "Open document"
	exts := docExts
	if kind == pickImage {
		m.l.Title = "Open background"
		exts = imageExts
	}
	m.refreshDir(exts)
	m.panel = panelFiles
	m.layout()
}

func (m *Model) refreshDir(exts map[string]bool) {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.setError("read dir", err)
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if exts[ext] {
			items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.l.SetItems(items)
	if len(items) == 0 {
		m.setStatus("no matching files in " + m.cwd)
	}
}

// choose starts loading the picked file.
func (m *Model) choose(it fileItem) tea.Cmd {
	m.panel = panelNone
	m.layout()
	if m.pick == pickImage {
		m.setStatus("loading " + it.title)
		return loadImageCmd(it.path)
	}
	m.setStatus("importing " + it.title)
	return readDocCmd(it.path, false)
}

// applyDoc imports a document read from disk. Overlapping reads resolve in
// completion order; each one replaces state atomically. An empty reload is
// a writer caught mid-save and is dropped.
func (m *Model) applyDoc(msg docReadMsg) tea.Cmd {
	if msg.err != nil {
		m.setError("import failed", msg.err)
		return nil
	}
	if msg.reload && (len(msg.data) == 0 || string(msg.data) == string(m.lastSync)) {
		return nil
	}
	if strings.ToLower(filepath.Ext(msg.path)) == ".geojson" {
		if err := m.ed.ImportGeoJSON(msg.data); err != nil {
			m.setError("import failed", err)
			return nil
		}
		m.setStatus(fmt.Sprintf("imported %s  zones=%d", filepath.Base(msg.path), m.ed.Store().Len()))
		return nil
	}
	if err := m.ed.Import(msg.data); err != nil {
		m.setError("import failed", err)
		return nil
	}
	m.lastSync = msg.data
	m.docPath = msg.path
	m.syncBackground()
	verb := "imported"
	if msg.reload {
		verb = "reloaded"
	}
	m.setStatus(fmt.Sprintf("%s %s  zones=%d", verb, filepath.Base(msg.path), m.ed.Store().Len()))
	return m.watch(msg.path)
}

// syncBackground rebuilds the preview after the reference changed.
func (m *Model) syncBackground() {
	ref, ok := m.ed.Image()
	if !ok {
		m.bg = nil
		return
	}
	if m.bg != nil && m.bg.Ref == ref {
		return
	}
	img, err := imageref.FromDataURL(ref)
	if err != nil {
		m.logger.Debug("background not previewable", "error", err)
		m.bg = nil
		return
	}
	m.bg = &img
}

func (m *Model) applyImage(msg imageLoadedMsg) {
	if msg.err != nil {
		m.setError("image failed", msg.err)
		return
	}
	img := msg.img
	m.ed.SetImage(img.Ref)
	m.bg = &img
	m.logger.Info("background loaded", "path", msg.path, "mime", img.MIME, "width", img.Width, "height", img.Height)
	m.setStatus(fmt.Sprintf("background %s  %dx%d", filepath.Base(msg.path), img.Width, img.Height))
}

func (m *Model) applyWritten(msg fileWrittenMsg) {
	if msg.err != nil {
		m.setError(msg.what+" failed", msg.err)
		return
	}
	m.setStatus(msg.what + " → " + msg.path)
}

func (m *Model) exportPath() string {
	if m.docPath != "" {
		return m.docPath
	}
	return filepath.Join(m.cwd, "zones.json")
}

// export writes the document to the current path and starts watching it.
func (m *Model) export() tea.Cmd {
	b, err := m.ed.Export()
	if err != nil {
		m.setError("export failed", err)
		return nil
	}
	p := m.exportPath()
	m.docPath = p
	m.lastSync = b
	return tea.Batch(writeFileCmd(p, "exported", b), m.watch(p))
}
