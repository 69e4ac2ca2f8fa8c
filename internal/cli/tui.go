package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/zigzag/pkg/graph"
	"github.com/matzehuels/zigzag/pkg/nodestore"
	"github.com/matzehuels/zigzag/pkg/replicate"
)

// =============================================================================
// ReplicateModel - Interactive replication progress
// =============================================================================

// progressMsg carries a progress report of the running engine.
type progressMsg replicate.Progress

// replicateDoneMsg is sent once the engine returns.
type replicateDoneMsg struct {
	res *replicate.Result
	err error
}

// ReplicateModel is the bubbletea model for the replication progress view.
type ReplicateModel struct {
	Nodes    int
	Layers   int
	Current  replicate.Progress
	Result   *replicate.Result
	Err      error
	Canceled bool

	start time.Time
	bar   progressbar.Model
}

// NewReplicateModel creates a progress view for a run of layers over nodes.
func NewReplicateModel(nodes, layers int) ReplicateModel {
	return ReplicateModel{
		Nodes:  nodes,
		Layers: layers,
		start:  time.Now(),
		bar:    progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(48)),
	}
}

func (m ReplicateModel) Init() tea.Cmd {
	return nil
}

func (m ReplicateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, 80)
	case progressMsg:
		m.Current = replicate.Progress(msg)
	case replicateDoneMsg:
		m.Result = msg.res
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

// Fraction returns the share of node encodings done, counting every layer.
func (m ReplicateModel) Fraction() float64 {
	if m.Result != nil {
		return 1
	}
	total := m.Nodes * m.Layers
	if total == 0 {
		return 0
	}
	return float64(m.Current.Layer*m.Nodes+m.Current.Node) / float64(total)
}

func (m ReplicateModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Replicating sector"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	b.WriteString("  " + m.bar.ViewAs(m.Fraction()))
	b.WriteString("\n\n")

	dir := graph.LayerDirection(m.Current.Layer)
	b.WriteString(fmt.Sprintf("  %s %s  %s %s  %s %s\n",
		StyleDim.Render("layer"),
		StyleNumber.Render(fmt.Sprintf("%d/%d", m.Current.Layer+1, m.Layers)),
		StyleDim.Render("direction"),
		styleValue.Render(dir.String()),
		StyleDim.Render("node"),
		StyleNumber.Render(fmt.Sprintf("%d/%d", m.Current.Node, m.Nodes)),
	))
	b.WriteString("  " + StyleDim.Render("elapsed "+time.Since(m.start).Round(time.Second).String()))
	b.WriteString("\n")

	return b.String()
}

// runReplicateTUI replicates s while showing the progress view. Quitting the
// view cancels the run.
func runReplicateTUI(ctx context.Context, g *graph.Graph, s nodestore.Store, opts replicate.Options) (*replicate.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewReplicateModel(g.Nodes(), opts.Layers)
	if m.Layers == 0 {
		m.Layers = replicate.DefaultLayers
	}
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	opts.Progress = func(pr replicate.Progress) {
		p.Send(progressMsg(pr))
	}
	engine, err := replicate.New(g, opts)
	if err != nil {
		return nil, err
	}

	done := make(chan replicateDoneMsg, 1)
	go func() {
		res, err := engine.Replicate(ctx, s)
		done <- replicateDoneMsg{res: res, err: err}
		p.Send(replicateDoneMsg{res: res, err: err})
	}()

	final, runErr := p.Run()
	// Stop the engine if the view quit first, then wait for it to return so
	// the store is no longer in use.
	cancel()
	result := <-done

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return nil, runErr
	}
	if result.err != nil {
		if model, ok := final.(ReplicateModel); ok && model.Canceled {
			return nil, context.Canceled
		}
		return nil, result.err
	}
	return result.res, nil
}
