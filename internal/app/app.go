// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/lineage/internal/commandbus"
	"github.com/zjrosen/lineage/internal/config"
	"github.com/zjrosen/lineage/internal/diffview"
	"github.com/zjrosen/lineage/internal/fetch"
	"github.com/zjrosen/lineage/internal/flags"
	"github.com/zjrosen/lineage/internal/git"
	"github.com/zjrosen/lineage/internal/keys"
	"github.com/zjrosen/lineage/internal/layout"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/navlist"
	"github.com/zjrosen/lineage/internal/pubsub"
	"github.com/zjrosen/lineage/internal/state"
	"github.com/zjrosen/lineage/internal/ui/modal"
	"github.com/zjrosen/lineage/internal/ui/panes"
	"github.com/zjrosen/lineage/internal/ui/styles"
	"github.com/zjrosen/lineage/internal/ui/toaster"
)

// Fetch site names, used for message routing and log fields.
const (
	siteCommits  = "commits"
	siteBranch   = "branch"
	siteFiles    = "files"
	siteContents = "contents"
	siteChanges  = "changes"
)

// Flusher drops cached engine data. *git.CachedEngine implements it.
type Flusher interface {
	Flush(ctx context.Context)
}

// Options wires the model to its collaborators. Engine is required.
type Options struct {
	Engine     git.Engine
	Flusher    Flusher   // Optional; refresh flushes it
	KV         layout.KV // Optional durable session and layout state
	Config     config.Config
	ConfigPath string // Where repository list changes are saved; empty disables saving

	// Repositories to open in addition to Config.Repositories.
	Repositories []string

	Bus   *commandbus.Bus // Defaults to commandbus.Default()
	Store *state.Store    // Defaults to a fresh store
	Watch WatchFunc       // Nil disables file watching
	Now   func() time.Time
	Debug bool
}

// Model is the root application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	engine     git.Engine
	flusher    Flusher
	kv         layout.KV
	cfg        config.Config
	flags      *flags.Registry
	configPath string
	now        func() time.Time

	bus     *commandbus.Bus
	store   *state.Store
	table   keys.Table
	keymap  keys.KeyMap
	subs    commandbus.Subscriptions
	pending []tea.Cmd

	commits  *fetch.Site[[]git.Commit]
	branch   *fetch.Site[string]
	files    *fetch.Site[[]git.ChangedFile]
	contents *fetch.Site[git.FileContents]
	changes  *fetch.Site[[]git.ChangedFile]

	repoList   navlist.List
	commitList navlist.List
	fileList   navlist.List
	changeList navlist.List

	// commitCursor is the highlighted commit. It follows the selection
	// until commits are marked with space or a range is extended.
	commitCursor string
	rangeAnchor  string
	// pinned keeps a single selected commit in place while the cursor
	// moves, so space can add more.
	pinned bool

	outer    *panes.Split
	inner    *panes.Split
	maximize *layout.Coordinator

	displayMode diffview.DisplayMode
	diff        viewport.Model
	diffLines   []diffview.Line
	diffLinesOf string
	diffSource  git.FileContents
	diffDrawn   string

	spinner spinner.Model
	input   textinput.Model
	adding  bool
	addErr  string
	picker  *branchPicker
	confirm *modal.Model
	doomed  string

	showHelp  bool
	helpText  string
	helpWidth int

	status    string
	statusErr bool
	toast     toaster.Model

	broker    *pubsub.Broker[string]
	events    *pubsub.ContinuousListener[string]
	watchFn   WatchFunc
	watch     Stopper
	watchRoot string

	debug   bool
	logs    *log.LogListener
	lastLog string

	pollGen int

	zones         *zone.Manager
	width, height int
	quitting      bool
	closed        bool
}

// New builds the model, restores the durable session and queues the
// initial fetches, which Init returns.
func New(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	bus := opts.Bus
	if bus == nil {
		bus = commandbus.Default()
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	debounce := fetch.WithDebounce(opts.Config.DebounceWindow)
	m := &Model{
		ctx:         ctx,
		cancel:      cancel,
		engine:      opts.Engine,
		flusher:     opts.Flusher,
		kv:          opts.KV,
		cfg:         opts.Config,
		flags:       flags.New(opts.Config.Flags),
		configPath:  opts.ConfigPath,
		now:         now,
		bus:         bus,
		store:       store,
		keymap:      keys.DefaultKeyMap(),
		commits:     fetch.NewSite[[]git.Commit](ctx, siteCommits, debounce, fetch.WithPolicy(fetch.ClearOnError)),
		branch:      fetch.NewSite[string](ctx, siteBranch, debounce, fetch.WithPolicy(fetch.KeepOnError)),
		files:       fetch.NewSite[[]git.ChangedFile](ctx, siteFiles, debounce, fetch.WithPolicy(fetch.ClearOnError)),
		contents:    fetch.NewSite[git.FileContents](ctx, siteContents, debounce, fetch.WithPolicy(fetch.KeepOnError)),
		changes:     fetch.NewSite[[]git.ChangedFile](ctx, siteChanges, debounce, fetch.WithPolicy(fetch.KeepOnError)),
		displayMode: opts.Config.DiffMode(),
		diff:        viewport.New(0, 0),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.SpinnerStyle)),
		input:       newRepoInput(),
		broker:      pubsub.NewBroker[string](),
		watchFn:     opts.Watch,
		debug:       opts.Debug,
		zones:       zone.New(),
	}
	m.table = keys.NewTable(m.keymap)

	m.initLayout()
	m.bindCommands()
	m.watchStore()

	m.events = pubsub.NewContinuousListener[string](ctx, m.broker)
	if m.debug {
		m.logs = log.NewListener(ctx)
	}

	m.store.Restore(m.restoreSession(append(append([]string(nil), opts.Config.Repositories...), opts.Repositories...)))
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.events.Listen()}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	cmds = append(cmds, m.drain())
	return tea.Batch(cmds...)
}

// enqueue schedules commands produced by bus handlers and store watchers.
// Update returns them once the current message is handled.
func (m *Model) enqueue(cmds ...tea.Cmd) {
	for _, c := range cmds {
		if c != nil {
			m.pending = append(m.pending, c)
		}
	}
}

func (m *Model) drain() tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			log.Report(log.ErrorReport{
				Source:  "update",
				Message: fmt.Sprint(r),
				Stack:   string(debug.Stack()),
				Context: map[string]string{"msg": fmt.Sprintf("%T", msg)},
			})
			m.setStatus(fmt.Sprintf("internal error: %v", r), true)
			model, cmd = m, m.drain()
		}
	}()

	m.enqueue(m.handle(msg))
	m.afterUpdate()
	return m, m.drain()
}

func (m *Model) handle(msg tea.Msg) tea.Cmd {
	if cmd, ok := m.routeFetch(msg); ok {
		return cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case pubsub.Event[string]:
		return m.handleEvent(msg)

	case modal.SubmitMsg:
		m.confirmRemove()
		return nil

	case modal.CancelMsg:
		m.confirm, m.doomed = nil, ""
		return nil

	case toaster.DismissMsg:
		m.toast = m.toast.Update(msg)
		return nil

	case pollMsg:
		return m.handlePoll(msg)

	case repoValidatedMsg:
		return m.handleRepoValidated(msg)

	case branchesMsg:
		return m.handleBranches(msg)

	case checkoutMsg:
		return m.handleCheckout(msg)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.bus.Emit(keys.CmdQuit)
		return nil
	}
	if m.picker != nil {
		return m.updatePicker(msg)
	}
	if m.confirm != nil {
		var cmd tea.Cmd
		*m.confirm, cmd = m.confirm.Update(msg)
		return cmd
	}

	id, ok := m.table.Resolve(msg, m.adding)
	if m.adding {
		return m.updateInput(msg)
	}
	if m.showHelp {
		if ok && (id == keys.CmdHelp || id == keys.CmdCancel || id == keys.CmdQuit) {
			m.showHelp = false
		}
		return nil
	}
	if ok {
		m.bus.Emit(id)
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.adding || m.picker != nil || m.confirm != nil || m.showHelp {
		return nil
	}
	if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
		for _, r := range state.Regions(m.store.Snapshot().ViewMode) {
			if z := m.zones.Get(string(r)); z != nil && z.InBounds(msg) {
				m.store.SetFocusedRegion(r)
				return nil
			}
		}
		return nil
	}
	if z := m.zones.Get(string(state.RegionDiff)); z != nil && z.InBounds(msg) {
		var cmd tea.Cmd
		m.diff, cmd = m.diff.Update(msg)
		return cmd
	}
	return nil
}

// routeFetch hands msg to whichever site owns it and reports failures.
func (m *Model) routeFetch(msg tea.Msg) (tea.Cmd, bool) {
	if cmd, ok := route(m.commits, msg); ok {
		m.commitsLoaded()
		return cmd, true
	}
	if cmd, ok := route(m.branch, msg); ok {
		return cmd, true
	}
	if cmd, ok := route(m.files, msg); ok {
		return cmd, true
	}
	if cmd, ok := route(m.contents, msg); ok {
		return cmd, true
	}
	if cmd, ok := route(m.changes, msg); ok {
		return cmd, true
	}
	return nil, false
}

func route[T any](s *fetch.Site[T], msg tea.Msg) (tea.Cmd, bool) {
	before := s.Err()
	cmd, ok := s.Update(msg)
	if ok {
		if err := s.Err(); err != nil && err != before {
			log.Report(log.ErrorReport{
				Source:  "fetch." + s.Name(),
				Message: err.Error(),
				Context: map[string]string{"key": s.Key()},
			})
		}
	}
	return cmd, ok
}

// commitsLoaded keeps the cursor on a listed commit and selects the newest
// commit when nothing is selected yet.
func (m *Model) commitsLoaded() {
	st := m.store.Snapshot()
	if m.commits.Loading() || m.commits.ValueKey() != repoPath(st) {
		return
	}
	list, ok := m.commits.Value()
	if !ok || len(list) == 0 {
		m.commitCursor = ""
		return
	}
	if st.SelectedCommitID == "" {
		m.commitCursor = list[0].ID
		m.store.SelectCommit(list[0].ID)
		return
	}
	if indexOfCommit(list, m.commitCursor) < 0 {
		m.commitCursor = st.SelectedCommitID
	}
}

// afterUpdate keeps derived view state in step with the store.
func (m *Model) afterUpdate() {
	m.layoutPanes()
	m.syncDiff()
	m.followSelection()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

// notify shows a passing confirmation without touching the status line.
func (m *Model) notify(text string) {
	var cmd tea.Cmd
	m.toast, cmd = m.toast.Show(text, toaster.StyleSuccess, toaster.DefaultDuration)
	m.enqueue(cmd)
}

// Close releases subscriptions, the watcher and outstanding fetches.
func (m *Model) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.subs.Close()
	for _, s := range []interface{ Cancel() }{m.commits, m.branch, m.files, m.contents, m.changes} {
		s.Cancel()
	}
	m.cancel()

	var err error
	if m.watch != nil {
		err = m.watch.Stop()
		m.watch = nil
	}
	m.broker.Close()
	m.zones.Close()
	return err
}
