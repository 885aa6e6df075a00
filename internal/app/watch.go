package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/pubsub"
	"github.com/zjrosen/lineage/internal/state"
	"github.com/zjrosen/lineage/internal/watcher"
)

// Stopper is a running watch.
type Stopper interface {
	Stop() error
}

// WatchFunc starts watching root and publishes its change events to pub.
type WatchFunc func(root string, pub pubsub.Publisher[string]) (Stopper, error)

// WatchFS watches root with fsnotify.
func WatchFS(root string, pub pubsub.Publisher[string]) (Stopper, error) {
	w, err := watcher.New(watcher.DefaultConfig(root), pub)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}

// rewatch moves the watch to root. A failed watch is logged and not
// retried until the selection changes.
func (m *Model) rewatch(root string) {
	if m.watchFn == nil || !m.cfg.WatchFiles || root == m.watchRoot {
		return
	}
	if m.watch != nil {
		if err := m.watch.Stop(); err != nil {
			log.ErrorErr(log.CatWatcher, "stop watcher failed", err, "root", m.watchRoot)
		}
		m.watch = nil
	}
	m.watchRoot = root
	if root == "" {
		return
	}

	w, err := m.watchFn(root, m.broker)
	if err != nil {
		log.Warn(log.CatWatcher, "watch failed", "root", root, "error", err)
		return
	}
	m.watch = w
}

// handleEvent reacts to watcher and log events and re-arms the listener
// that delivered it.
func (m *Model) handleEvent(ev pubsub.Event[string]) tea.Cmd {
	if ev.Type == pubsub.LogEntryEvent {
		if m.logs == nil {
			return nil
		}
		m.lastLog = ev.Payload
		return m.logs.Listen()
	}

	if ev.Payload == m.watchRoot {
		switch ev.Type {
		case pubsub.HeadChangedEvent:
			m.enqueue(m.requestCommits(m.watchRoot), m.requestBranch(m.watchRoot))
			m.refreshWorking()
		case pubsub.WorkTreeChangedEvent:
			m.refreshWorking()
		}
	}
	return m.events.Listen()
}

type pollMsg struct{ gen int }

// startPolling begins a new poll generation; ticks from older generations
// are dropped.
func (m *Model) startPolling() tea.Cmd {
	m.pollGen++
	return m.pollTick()
}

func (m *Model) pollTick() tea.Cmd {
	if m.cfg.PollInterval <= 0 {
		return nil
	}
	gen := m.pollGen
	return tea.Tick(m.cfg.PollInterval, func(time.Time) tea.Msg {
		return pollMsg{gen: gen}
	})
}

func (m *Model) handlePoll(msg pollMsg) tea.Cmd {
	if msg.gen != m.pollGen || m.store.Snapshot().ViewMode != state.ViewChanges {
		return nil
	}
	m.refreshWorking()
	return m.pollTick()
}
