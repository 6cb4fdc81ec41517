// Package tui implements the overlay: a compact Bubbletea program showing the
// current CPU reading as a gauge or the recent history as a histogram.
package tui

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/transparency/config"
	"gitlab.com/tinyland/lab/transparency/display/anim"
	"gitlab.com/tinyland/lab/transparency/display/color"
	"gitlab.com/tinyland/lab/transparency/display/widgets"
	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/internal/format"
	"gitlab.com/tinyland/lab/transparency/refresh"
	"gitlab.com/tinyland/lab/transparency/scale"
	"gitlab.com/tinyland/lab/transparency/tier"
)

const (
	intervalStep = 250 * time.Millisecond
	opacityStep  = 0.05
	minOpacity   = 0.05

	zoneGauge     = "view-gauge"
	zoneHistogram = "view-histogram"

	// gaugeChrome is the label, spacing and value width around the bar.
	gaugeChrome = 9
)

// Controller is the part of the refresh loop the overlay drives.
type Controller interface {
	SetInterval(time.Duration) error
	ApplySettings(refresh.Settings)
}

// Exporter writes the histogram somewhere and returns the written path.
type Exporter func(samples []history.Sample, max float64) (string, error)

// UpdateMsg carries one refresh tick into the program.
type UpdateMsg refresh.Update

type frameMsg time.Time

type exportedMsg struct {
	path string
	err  error
}

// Options configure a Model.
type Options struct {
	Config      config.Config
	Controller  Controller
	Exporter    Exporter
	SamplerName string
	Logger      *slog.Logger
}

// Model is the top-level Bubbletea model for the overlay.
type Model struct {
	cfg     config.Config
	dirty   bool
	ctrl    Controller
	export  Exporter
	sampler string
	logger  *slog.Logger

	theme    theme
	zones    *zone.Manager
	help     help.Model
	showHelp bool

	width  int
	height int

	needle    *anim.Spring
	animating bool

	history  []history.Sample
	raw      float64
	tier     tier.Tier
	hasValue bool
	loading  bool
	err      error
	updated  time.Time

	toast   string
	toastAt time.Time

	now func() time.Time
}

// NewModel returns a Model showing the loading state.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Model{
		cfg:     opts.Config,
		ctrl:    opts.Controller,
		export:  opts.Exporter,
		sampler: opts.SamplerName,
		logger:  logger,
		theme:   newTheme(lipgloss.Color(opts.Config.Background), opts.Config.BorderSize),
		zones:   zone.New(),
		help:    help.New(),
		needle:  anim.NewNeedle(0),
		tier:    tier.Tier1,
		loading: true,
		now:     time.Now,
	}
}

// Config returns the configuration as changed by the user and whether it
// differs from the one the model started with.
func (m Model) Config() (config.Config, bool) {
	return m.cfg, m.dirty
}

// Init implements tea.Model. Nothing runs until the first tick arrives.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case UpdateMsg:
		m.consume(refresh.Update(msg))
		return m, m.animate()

	case frameMsg:
		m.animating = false
		m.needle.Step()
		if m.toast != "" && anim.ToastFade.Done(m.now().Sub(m.toastAt)) {
			m.toast = ""
		}
		return m, m.animate()

	case exportedMsg:
		if msg.err != nil {
			m.logger.Warn("histogram export failed", "error", msg.err)
			m.notify("export failed: " + msg.err.Error())
		} else {
			m.logger.Info("histogram exported", "path", msg.path)
			m.notify("saved " + msg.path)
		}
		return m, m.animate()

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		switch {
		case m.inZone(zoneGauge, msg):
			m.setView(config.ViewGauge)
		case m.inZone(zoneHistogram, msg):
			m.setView(config.ViewHistogram)
		default:
			return m, nil
		}
		return m, m.animate()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) inZone(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, keys.View):
		if m.cfg.View == config.ViewGauge {
			m.setView(config.ViewHistogram)
		} else {
			m.setView(config.ViewGauge)
		}
	case key.Matches(msg, keys.Scale):
		if m.cfg.Scale == scale.ModeLog {
			m.cfg.Scale = scale.ModeLinear
		} else {
			m.cfg.Scale = scale.ModeLog
		}
		m.dirty = true
		m.applySettings()
		if m.cfg.View == config.ViewGauge {
			m.notify(string(m.cfg.Scale) + " scale (histogram)")
		} else {
			m.notify(string(m.cfg.Scale) + " scale")
		}
	case key.Matches(msg, keys.Slower):
		m.changeInterval(intervalStep)
	case key.Matches(msg, keys.Faster):
		m.changeInterval(-intervalStep)
	case key.Matches(msg, keys.OpacityUp):
		m.changeOpacity(opacityStep)
	case key.Matches(msg, keys.OpacityDown):
		m.changeOpacity(-opacityStep)
	case key.Matches(msg, keys.Export):
		return m, m.exportCmd()
	default:
		return m, nil
	}
	return m, m.animate()
}

// consume applies one tick. A failed tick only changes the status; the
// displayed value stays where it was.
func (m *Model) consume(u refresh.Update) {
	m.history = u.History
	switch {
	case u.Loading:
		m.loading = true
		m.err = nil
		m.needle.SetTarget(0)
	case u.Err != nil:
		m.loading = false
		m.err = u.Err
	default:
		m.loading = false
		m.err = nil
		m.raw = u.Raw
		m.tier = u.Tier
		m.hasValue = true
		m.updated = u.Time
		m.needle.SetTarget(m.cfg.Scaler().Scale(u.Raw))
	}
}

// viewSamples returns the history with magnitudes recomputed from the raw
// values against s, so entries recorded under another view or mode draw to
// the same ceiling as new ones.
func (m Model) viewSamples(s scale.Scaler) []history.Sample {
	samples := make([]history.Sample, len(m.history))
	for i, h := range m.history {
		h.Magnitude = s.Scale(h.Raw)
		samples[i] = h
	}
	return samples
}

func (m *Model) setView(v config.View) {
	if m.cfg.View == v {
		return
	}
	m.cfg.View = v
	m.dirty = true
	m.applySettings()
	if m.hasValue {
		m.needle.SetTarget(m.cfg.Scaler().Scale(m.raw))
	}
	m.notify(string(v) + " view")
}

func (m *Model) changeInterval(delta time.Duration) {
	ms := clampInt(m.cfg.RefreshMS+int(delta/time.Millisecond), config.MinRefreshMS, config.MaxRefreshMS)
	if ms == m.cfg.RefreshMS {
		return
	}
	m.cfg.RefreshMS = ms
	m.dirty = true
	if m.ctrl != nil {
		if err := m.ctrl.SetInterval(m.cfg.Interval()); err != nil {
			m.logger.Warn("set refresh interval", "error", err)
			m.notify("interval not applied: " + err.Error())
			return
		}
	}
	m.notify("refresh every " + format.Interval(m.cfg.Interval()))
}

func (m *Model) changeOpacity(delta float64) {
	o := math.Round((m.cfg.Opacity+delta)*100) / 100
	o = math.Max(minOpacity, math.Min(1, o))
	if o == m.cfg.Opacity {
		return
	}
	m.cfg.Opacity = o
	m.dirty = true
	m.applySettings()
	m.notify(fmt.Sprintf("opacity %s", format.Percent(o*100)))
}

func (m *Model) applySettings() {
	if m.ctrl == nil {
		return
	}
	m.ctrl.ApplySettings(refresh.Settings{Scaler: m.cfg.Scaler(), Opacity: m.cfg.Opacity})
}

func (m *Model) notify(text string) {
	m.toast = text
	m.toastAt = m.now()
}

func (m Model) exportCmd() tea.Cmd {
	if m.export == nil || len(m.history) == 0 {
		return func() tea.Msg {
			return exportedMsg{err: fmt.Errorf("no history yet")}
		}
	}
	// The export is always a histogram, so magnitudes are recomputed
	// against the histogram curve whatever view is showing.
	hist := m.cfg
	hist.View = config.ViewHistogram
	scaler := hist.Scaler()
	samples := m.viewSamples(scaler)
	max := scaler.Max()
	export := m.export
	return func() tea.Msg {
		path, err := export(samples, max)
		return exportedMsg{path: path, err: err}
	}
}

// animate schedules the next frame while the needle moves or a toast is
// fading. At most one frame is pending at a time.
func (m *Model) animate() tea.Cmd {
	if m.animating {
		return nil
	}
	if m.needle.Settled() && m.toast == "" {
		return nil
	}
	m.animating = true
	return tea.Tick(anim.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// View implements tea.Model.
func (m Model) View() string {
	g := layout(m.width, m.height, m.cfg.BorderSize)

	rows := []string{m.renderWidget(g), m.renderStatus()}
	if m.cfg.CtrlRowBottom {
		rows = append(rows, m.renderControls())
	} else {
		rows = append([]string{m.renderControls()}, rows...)
	}
	if m.showHelp {
		rows = append(rows, m.theme.help.Render(m.help.View(keys)))
	}

	return m.zones.Scan(m.theme.frame.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func (m Model) renderWidget(g geometry) string {
	scaler := m.cfg.Scaler()
	if m.cfg.View == config.ViewHistogram {
		return widgets.RenderHistogram(widgets.HistogramConfig{
			Samples:    m.viewSamples(scaler),
			Width:      g.width,
			Height:     g.histRows,
			Max:        scaler.Max(),
			Background: m.theme.background,
		})
	}
	return widgets.RenderGauge(widgets.GaugeConfig{
		Width:      max(8, g.width-gaugeChrome),
		Raw:        m.raw,
		Magnitude:  m.needle.Position(),
		Max:        scaler.Max(),
		Tier:       m.tier,
		Background: m.theme.background,
		Label:      "CPU",
	})
}

func (m Model) renderStatus() string {
	if m.toast != "" {
		alpha := anim.ToastFade.At(m.now().Sub(m.toastAt))
		fg := color.Blend(colorText, m.theme.background, alpha)
		return lipgloss.NewStyle().Foreground(fg).Render(m.toast)
	}
	line := widgets.RenderStatus(widgets.SamplerStatus(m.sampler, m.loading, m.err))
	if m.hasValue {
		line += m.theme.muted.Render("  " + format.Clock(m.updated))
	}
	return line
}

func (m Model) renderControls() string {
	button := func(id, label string, active bool) string {
		style := m.theme.inactiveButton
		if active {
			style = m.theme.activeButton
		}
		return m.zones.Mark(id, style.Render("["+label+"]"))
	}

	var sb strings.Builder
	sb.WriteString(button(zoneGauge, "gauge", m.cfg.View == config.ViewGauge))
	sb.WriteString(" ")
	sb.WriteString(button(zoneHistogram, "histogram", m.cfg.View == config.ViewHistogram))
	sb.WriteString(m.theme.muted.Render(fmt.Sprintf("  %s · %s · %s",
		format.Interval(m.cfg.Interval()), m.cfg.Scale, format.Percent(m.cfg.Opacity*100))))
	return sb.String()
}
