package tui

import (
	"context"
	"log/slog"
	"strings"

	"pulse-cli/internal/collection"
	"pulse-cli/internal/dnd"
	"pulse-cli/internal/model"
	"pulse-cli/internal/session"
	"pulse-cli/internal/statusutil"
	"pulse-cli/internal/store"
	"pulse-cli/internal/views"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type viewMode string

const (
	modeBoard viewMode = "board"
	modeList  viewMode = "list"
	modeStats viewMode = "stats"
)

var viewModes = []viewMode{modeBoard, modeList, modeStats}

func parseViewMode(s string) viewMode {
	switch viewMode(strings.ToLower(strings.TrimSpace(s))) {
	case modeList:
		return modeList
	case modeStats:
		return modeStats
	default:
		return modeBoard
	}
}

func (v viewMode) next() viewMode {
	for i, x := range viewModes {
		if x == v {
			return viewModes[(i+1)%len(viewModes)]
		}
	}
	return modeBoard
}

type screen int

const (
	screenLogin screen = iota
	screenMain
)

type modalKind int

const (
	modalNone modalKind = iota
	modalForm
	modalConfirmDelete
	modalPreview
)

// Lines above the main content: title bar, view tabs, filter/search bar, spacer.
const chromeTop = 4

// PrefsStore persists the restorable UI state.
type PrefsStore interface {
	LoadUIPrefs(ctx context.Context) (*store.UIPrefs, error)
	SaveUIPrefs(ctx context.Context, p *store.UIPrefs) error
}

type Options struct {
	Session    *session.Manager
	Collection *collection.Controller
	Prefs      PrefsStore
	Logger     *slog.Logger
}

type appModel struct {
	ctx   context.Context
	sess  *session.Manager
	coll  *collection.Controller
	prefs PrefsStore
	log   *slog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int

	screen screen
	login  loginForm
	// loggingOut is set while a user-requested sign-out runs, so no "session ended" notice
	// is shown for it.
	loggingOut bool

	mode      viewMode
	filter    statusutil.Filter
	search    textinput.Model
	searching bool

	// Derived from the controller snapshot by refresh.
	projects []model.Project
	filtered []model.Project
	board    board
	sel      boardSelection
	listSel  model.ID

	drag *dnd.Handler
	// dragCol is the column a keyboard or mouse drag currently targets (-1: none).
	dragCol   int
	mouseDrag bool

	modal         modalKind
	form          projectForm
	confirmFocus  confirmModalFocus
	pendingDelete model.Project

	inflight  int
	expirySeq int
}

func newAppModel(ctx context.Context, opts Options) appModel {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	search := textinput.New()
	search.Placeholder = "Search name or description"
	search.Prompt = "/ "
	search.CharLimit = 200
	search.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := appModel{
		ctx:     ctx,
		sess:    opts.Session,
		coll:    opts.Collection,
		prefs:   opts.Prefs,
		log:     log,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		width:   100,
		height:  30,
		login:   newLoginForm(),
		mode:    modeBoard,
		filter:  statusutil.FilterAll,
		search:  search,
		drag:    dnd.New(nil),
		dragCol: -1,
	}
	// Without a session manager there is nothing to sign in to.
	if m.sess == nil || m.sess.Authenticated() {
		m.screen = screenMain
	}
	m.restorePrefs()
	m.refresh()
	return m
}

// restorePrefs applies the last saved mode, filter and search. Missing or invalid prefs
// leave the defaults in place.
func (m *appModel) restorePrefs() {
	if m.prefs == nil {
		return
	}
	p, err := m.prefs.LoadUIPrefs(m.ctx)
	if err != nil || p == nil {
		if err != nil {
			m.log.Debug("load ui prefs failed", "err", err)
		}
		return
	}
	m.mode = parseViewMode(p.Mode)
	if f, err := statusutil.NormalizeFilter(p.Filter); err == nil {
		m.filter = f
	}
	m.search.SetValue(p.Search)
}

func (m appModel) currentPrefs() *store.UIPrefs {
	return &store.UIPrefs{Version: 1, Mode: string(m.mode), Filter: string(m.filter), Search: m.search.Value()}
}

// refresh re-derives every projection from the controller snapshot.
func (m *appModel) refresh() {
	if m.coll == nil {
		return
	}
	m.projects = m.coll.Projects()
	m.filtered = views.Filter(m.projects, m.filter, m.search.Value())
	m.board = buildBoard(views.GroupByStatus(m.filtered))
	m.sel = m.board.clamp(m.sel)
	m.listSel = m.clampList(m.listSel)
}

func (m appModel) clampList(id model.ID) model.ID {
	if len(m.filtered) == 0 {
		return ""
	}
	for _, p := range m.filtered {
		if p.ID == id {
			return id
		}
	}
	return m.filtered[0].ID
}

func (m appModel) listIndex() int {
	for i, p := range m.filtered {
		if p.ID == m.listSel {
			return i
		}
	}
	return -1
}

// selectedProject is the focused project in the current mode.
func (m appModel) selectedProject() (model.Project, bool) {
	switch m.mode {
	case modeBoard:
		return m.board.selected(m.sel)
	case modeList:
		if i := m.listIndex(); i >= 0 {
			return m.filtered[i], true
		}
	}
	return model.Project{}, false
}

func (m appModel) summary() views.Summary {
	return views.Summarize(m.projects, m.filter, m.search.Value())
}

func (m appModel) contentHeight() int {
	h := m.height - chromeTop - m.footerHeight()
	if h < 3 {
		h = 3
	}
	return h
}

func (m appModel) footerHeight() int {
	n := 1 // help line
	if m.help.ShowAll {
		n = 0
		for _, g := range m.keys.FullHelp() {
			n = max(n, len(g))
		}
	}
	if m.coll != nil {
		n += len(m.coll.Notifications().Active())
	}
	return n
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.screen == screenMain {
		cmds = append(cmds, m.loadCmd())
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}
