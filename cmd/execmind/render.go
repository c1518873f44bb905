package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"execmind/internal/idea"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorBlue    = lipgloss.Color("#2196F3")
	colorCyan    = lipgloss.Color("#4db6ac")
	colorGreen   = lipgloss.Color("#8BC34A")
	colorYellow  = lipgloss.Color("#FFC107")
	colorRed     = lipgloss.Color("#e53935")
	colorMagenta = lipgloss.Color("#ba68c8")
	colorMuted   = lipgloss.Color("#8a94a6")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Width(13)
	headingStyle = lipgloss.NewStyle().Bold(true)
)

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

// verdictColor maps a verdict to its panel colour; unknown verdicts are red.
func verdictColor(v idea.Verdict) lipgloss.Color {
	switch v {
	case idea.VerdictPursue:
		return colorGreen
	case idea.VerdictRefine:
		return colorYellow
	default:
		return colorRed
	}
}

// view renders workflow results to an output stream.
type view struct {
	out      io.Writer
	markdown *glamour.TermRenderer
}

// newView renders markdown with the named glamour style; "" picks one from
// the terminal background.
func newView(out io.Writer, style string) *view {
	v := &view{out: out}
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	if r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(80)); err == nil {
		v.markdown = r
	}
	return v
}

func (v *view) printf(format string, args ...interface{}) {
	fmt.Fprintf(v.out, format, args...)
}

func (v *view) println(s string) {
	fmt.Fprintln(v.out, s)
}

func (v *view) renderMarkdown(md string) string {
	if v.markdown == nil {
		return md
	}
	out, err := v.markdown.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (v *view) welcome() {
	v.println(panel(colorBlue).Render(titleStyle.Foreground(colorBlue).Render("ExecMind") + "\n" + mutedStyle.Render("Idea framing, research and evaluation")))
}

func (v *view) menu() {
	v.println("\n" + headingStyle.Render("Select an option:"))
	v.println("1. " + lipgloss.NewStyle().Foreground(colorGreen).Render("New idea (text)"))
	v.println("2. " + lipgloss.NewStyle().Foreground(colorYellow).Render("New idea (voice)"))
	v.println("3. " + lipgloss.NewStyle().Foreground(colorRed).Render("Exit"))
}

func (v *view) muted(s string) {
	v.println(mutedStyle.Render(s))
}

func (v *view) failure(err error) {
	v.println(errorStyle.Render("Error: " + err.Error()))
}

func (v *view) interpretation(restatement, question string) {
	v.println("\n" + headingStyle.Foreground(colorCyan).Render("--- Interpretation ---"))
	v.println(lipgloss.NewStyle().Italic(true).Render(restatement))
	v.println("\n" + headingStyle.Foreground(colorYellow).Render("Agent asks: ") + question)
}

func (v *view) research(report string) {
	v.println(panel(colorBlue).Render(headingStyle.Render("Research Verification") + "\n" + v.renderMarkdown(report)))
}

func (v *view) idea(it *idea.Idea) {
	rows := []string{
		labelStyle.Render("Problem:") + it.ProblemStatement,
		labelStyle.Render("Solution:") + it.ProposedSolution,
		labelStyle.Render("Users:") + it.TargetUsers,
		labelStyle.Render("Assumptions:") + it.Assumptions,
	}
	title := headingStyle.Foreground(colorCyan).Render(fmt.Sprintf("Idea #%d", it.ID))
	v.println(panel(colorCyan).Render(title + "\n" + strings.Join(rows, "\n")))
}

func (v *view) evaluation(e *idea.Evaluation) {
	v.println("\n" + headingStyle.Foreground(colorMagenta).Render("--- Evaluation Results ---"))

	metric := lipgloss.NewStyle().Foreground(colorCyan).Width(14)
	score := lipgloss.NewStyle().Foreground(colorGreen).Width(6).Align(lipgloss.Right)
	rows := []string{headingStyle.Render(metric.Render("Metric") + score.Render("1-10"))}
	for _, r := range []struct {
		name  string
		value int
	}{
		{"Feasibility", e.Feasibility},
		{"Market Value", e.MarketValue},
		{"Complexity", e.Complexity},
		{"Risk", e.Risk},
		{"Innovation", e.Innovation},
	} {
		rows = append(rows, metric.Render(r.name)+score.Render(strconv.Itoa(r.value)))
	}
	v.println(panel(colorMuted).Render("Scorecard\n" + strings.Join(rows, "\n")))

	md := fmt.Sprintf("**Verdict:** %s\n\n**Final Score:** %.2f/10\n\n**Summary:** %s",
		strings.ToUpper(string(e.Verdict)), e.FinalScore, e.Summary)
	v.println(panel(verdictColor(e.Verdict)).Render(headingStyle.Render("Conclusion") + "\n" + v.renderMarkdown(md)))
}

func (v *view) ideaRow(it idea.Idea) {
	solution := it.ProposedSolution
	if solution == "" {
		solution = it.RawInput
	}
	if r := []rune(solution); len(r) > 70 {
		solution = string(r[:70]) + "..."
	}
	v.printf("%5d  %s  %-5s  %s\n", it.ID, it.CreatedAt.Local().Format("2006-01-02 15:04"), it.Source, solution)
}
