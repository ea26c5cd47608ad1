package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

type (
	watchEventMsg struct{ event fsnotify.Event }
	watchErrMsg   struct{ err error }
)

// watch follows path on disk so external edits reload the document. The
// parent directory is watched because many editors save by rename.
func (m *Model) watch(path string) tea.Cmd {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	dir := filepath.Dir(full)
	var start tea.Cmd
	if m.sh.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			m.logger.Warn("file watcher unavailable", "error", err)
			return nil
		}
		m.sh.watcher = w
		start = waitWatchCmd(w)
	}
	if m.sh.watched == dir {
		return start
	}
	if m.sh.watched != "" {
		_ = m.sh.watcher.Remove(m.sh.watched)
	}
	if err := m.sh.watcher.Add(dir); err != nil {
		m.logger.Warn("watch failed", "dir", dir, "error", err)
		return start
	}
	m.sh.watched = dir
	m.logger.Debug("watching", "dir", dir)
	return start
}

// waitWatchCmd blocks for the next watcher event. Update re-arms it.
func waitWatchCmd(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			return watchEventMsg{event: ev}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

// onWatch reloads the document when the event concerns it.
func (m *Model) onWatch(ev fsnotify.Event) tea.Cmd {
	next := waitWatchCmd(m.sh.watcher)
	if m.docPath == "" || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return next
	}
	want, err := filepath.Abs(m.docPath)
	if err != nil || filepath.Clean(ev.Name) != want {
		return next
	}
	m.logger.Debug("document changed on disk", "path", ev.Name, "op", ev.Op.String())
	return tea.Batch(next, readDocCmd(m.docPath, true))
}
