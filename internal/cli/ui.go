package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/zigzag/pkg/graph"
	"github.com/matzehuels/zigzag/pkg/replicate"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim    = lipgloss.NewStyle().Foreground(colorDim)
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(18)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh       = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconArrow  = "→"
	iconCached = "cached"
	iconFresh  = "fresh"
)

// status lines are "<icon> <message>" on stdout.
var (
	lineSuccess = statusLine{icon: "✓", style: lipgloss.NewStyle().Foreground(colorGreen)}
	lineError   = statusLine{icon: "✗", style: lipgloss.NewStyle().Foreground(colorRed)}
	lineWarning = statusLine{icon: "!", style: lipgloss.NewStyle().Foreground(colorYellow), tint: true}
	lineInfo    = statusLine{icon: "›", style: lipgloss.NewStyle().Foreground(colorGray)}
)

type statusLine struct {
	icon  string
	style lipgloss.Style
	tint  bool // color the message as well as the icon
}

func (l statusLine) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.tint {
		msg = l.style.Render(msg)
	}
	fmt.Println(l.style.Render(l.icon) + " " + msg)
}

func printSuccess(format string, args ...any) { lineSuccess.print(format, args...) }
func printError(format string, args ...any)   { lineError.print(format, args...) }
func printWarning(format string, args ...any) { lineWarning.print(format, args...) }
func printInfo(format string, args ...any)    { lineInfo.print(format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + styleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printStats prints graph statistics on a single line.
func printStats(s graph.Stats, cached bool) {
	fmt.Println(statsLine(s, cached))
}

func statsLine(s graph.Stats, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d drg edges", s.DRGEdges),
	}
	if s.ExpanderEdges > 0 {
		parts = append(parts, fmt.Sprintf("%d expander edges", s.ExpanderEdges))
	}

	status := styleFresh.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	sep := StyleDim.Render(" · ")
	return "  " + StyleDim.Render(strings.Join(parts, " · ")) + sep + status
}

// printParams prints the parameters a graph was generated from.
func printParams(p graph.Params) {
	printKeyValue("nodes", StyleNumber.Render(strconv.Itoa(p.Nodes)))
	printKeyValue("base degree", StyleNumber.Render(strconv.Itoa(p.BaseDegree)))
	printKeyValue("expansion degree", StyleNumber.Render(strconv.Itoa(p.ExpansionDegree)))
	printKeyValue("seed", fmt.Sprint(p.Seed))
}

// layerTable renders per-layer timings.
func layerTable(stats []replicate.LayerStats) string {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			strconv.Itoa(s.Layer),
			s.Direction.String(),
			s.Duration.Round(time.Millisecond).String(),
			s.KeyTime.Round(time.Millisecond).String(),
			s.WriteTime.Round(time.Millisecond).String(),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Layer", "Direction", "Total", "Keys", "Writes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}
