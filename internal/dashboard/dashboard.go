package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"golang.org/x/time/rate"

	"github.com/torosent/syncbench/internal/runner"
)

// RunInfo holds suite parameters for display.
type RunInfo struct {
	Threads    int    // Workers per trial
	Iterations int    // Increments per worker
	Strategies int    // Number of strategies in the suite
	Compare    bool   // Whether every strategy is paired with a baseline
	ConfigFile string // Path to config file if used
}

func (r RunInfo) totalTrials() int {
	if r.Compare {
		return r.Strategies * 2
	}
	return r.Strategies
}

// Dashboard renders a live terminal UI while the suite runs. It implements
// runner.Observer; widget state is updated from the runner goroutine and drawn
// from the dashboard loop only.
type Dashboard struct {
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex
	limiter      *rate.Limiter
	redraw       chan struct{}

	// Widgets
	grid        *ui.Grid
	chart       *widgets.BarChart
	trialList   *widgets.List
	summaryPara *widgets.Paragraph
	workersPara *widgets.Paragraph

	info      RunInfo
	startTime time.Time
	running   string
	finished  []runner.Result
}

// New initializes the terminal and creates a Dashboard. shutdownFunc is called
// when the user presses q or Ctrl-C.
func New(info RunInfo, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	d := newDashboard(info, shutdownFunc)
	d.setupGrid()
	return d, nil
}

func newDashboard(info RunInfo, shutdownFunc func()) *Dashboard {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dashboard{
		ctx:          ctx,
		cancel:       cancel,
		shutdownFunc: shutdownFunc,
		limiter:      rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		redraw:       make(chan struct{}, 1),
		info:         info,
		startTime:    time.Now(),
	}
	d.initWidgets()
	return d
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	d.chart = widgets.NewBarChart()
	d.chart.Title = "Multithreaded (ms)"
	d.chart.BarWidth = 9
	d.chart.BarGap = 2
	d.chart.BarColors = []ui.Color{ui.ColorGreen, ui.ColorCyan}
	d.chart.LabelStyles = []ui.Style{ui.NewStyle(ui.ColorWhite)}
	d.chart.NumStyles = []ui.Style{ui.NewStyle(ui.ColorBlack)}
	d.chart.NumFormatter = func(v float64) string { return fmt.Sprintf("%.0f", v) }
	d.chart.BorderStyle.Fg = ui.ColorCyan

	d.trialList = widgets.NewList()
	d.trialList.Title = "Trials"
	d.trialList.Rows = []string{"Awaiting first trial"}
	d.trialList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.trialList.BorderStyle.Fg = ui.ColorCyan

	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Suite"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.workersPara = widgets.NewParagraph()
	d.workersPara.Title = "Worker Completion"
	d.workersPara.Text = "No worker data"
	d.workersPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.16,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.44,
			ui.NewCol(1.0, d.chart),
		),
		ui.NewRow(0.40,
			ui.NewCol(0.6, d.trialList),
			ui.NewCol(0.4, d.workersPara),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// TrialStarted records the trial as running.
func (d *Dashboard) TrialStarted(t runner.Trial) {
	d.mu.Lock()
	d.running = trialName(t.Strategy.Label, t.Baseline)
	d.mu.Unlock()
	d.requestRender()
}

// TrialFinished appends the result to the chart and trial list.
func (d *Dashboard) TrialFinished(res runner.Result) {
	d.mu.Lock()
	d.running = ""
	d.finished = append(d.finished, res)
	d.mu.Unlock()
	d.requestRender()
}

// idle reports whether no trial is being timed. Periodic redraws only happen
// while idle.
func (d *Dashboard) idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running == ""
}

// requestRender wakes the loop unless a frame was drawn very recently. The
// periodic tick picks up anything skipped here once the trial is over.
func (d *Dashboard) requestRender() {
	if !d.limiter.Allow() {
		return
	}
	select {
	case d.redraw <- struct{}{}:
	default:
	}
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.update()
	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Keep drawing until Stop; the current trial always completes.
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-d.redraw:
			d.update()
			d.render()
		case <-ticker.C:
			if !d.idle() {
				continue
			}
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the recorded trials.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.summaryPara.Text = formatSummary(d.info, len(d.finished), d.running, time.Since(d.startTime))

	if len(d.finished) == 0 {
		return
	}

	d.chart.Labels, d.chart.Data = chartSeries(d.finished)
	if peak := maxValue(d.chart.Data); peak > 0 {
		d.chart.MaxVal = peak * 1.1
	}

	rows := make([]string, 0, len(d.finished))
	for _, res := range d.finished {
		rows = append(rows, formatTrialRow(res))
	}
	d.trialList.Rows = rows
	d.trialList.ScrollBottom()

	d.workersPara.Text = formatWorkerStats(d.finished[len(d.finished)-1])
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

// chartSeries returns one bar per multithreaded trial. Baselines are listed
// but not charted.
func chartSeries(results []runner.Result) ([]string, []float64) {
	labels := make([]string, 0, len(results))
	data := make([]float64, 0, len(results))
	for _, res := range results {
		if res.Baseline {
			continue
		}
		labels = append(labels, res.Label)
		data = append(data, res.ElapsedMs)
	}
	return labels, data
}

func maxValue(data []float64) float64 {
	var peak float64
	for _, v := range data {
		if v > peak {
			peak = v
		}
	}
	return peak
}

func trialName(label string, baseline bool) string {
	if baseline {
		return label + " (baseline)"
	}
	return label
}

func formatTrialRow(res runner.Result) string {
	check := "[exact](fg:green)"
	if lost := res.Lost; lost > 0 {
		check = fmt.Sprintf("[lost %d](fg:red)", lost)
	}
	return fmt.Sprintf("%-26s %12.3f ms  counter %d  %s",
		trialName(res.Label, res.Baseline),
		res.ElapsedMs,
		res.FinalValue,
		check,
	)
}

func formatWorkerStats(res runner.Result) string {
	w := res.Workers
	if w.Workers == 0 {
		return fmt.Sprintf("%s\nNo worker goroutines", trialName(res.Label, res.Baseline))
	}
	return fmt.Sprintf(
		"%s\nWorkers: %d\nMin:    %.3fms\nMean:   %.3fms\nP50:    %.3fms\nP99:    %.3fms\nMax:    %.3fms\nSpread: %.3fms",
		trialName(res.Label, res.Baseline),
		w.Workers,
		w.MinMs,
		w.MeanMs,
		w.P50Ms,
		w.P99Ms,
		w.MaxMs,
		w.SpreadMs,
	)
}

// formatSummary formats the suite parameters and progress for display.
func formatSummary(info RunInfo, done int, running string, elapsed time.Duration) string {
	parts := []string{
		fmt.Sprintf("Threads: %d", info.Threads),
		fmt.Sprintf("Iterations: %d", info.Iterations),
		fmt.Sprintf("Strategies: %d", info.Strategies),
	}
	if info.Compare {
		parts = append(parts, "Compare: on")
	}
	if info.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", info.ConfigFile))
	}

	status := "idle"
	if running != "" {
		status = "running " + running
	}
	if total := info.totalTrials(); total > 0 && done >= total {
		status = "done"
	}

	return fmt.Sprintf("%s\nElapsed: %s | Trials: %d/%d | %s | q to stop after this trial",
		strings.Join(parts, " | "),
		elapsed.Round(time.Second),
		done,
		info.totalTrials(),
		status,
	)
}
