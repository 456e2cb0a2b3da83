package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/holdem-engine/internal/simulator"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	nameStyle   = lipgloss.NewStyle().Width(16)
	numStyle    = lipgloss.NewStyle().Width(12).Align(lipgloss.Right)
	winStyle    = numStyle.Foreground(lipgloss.Color("#04B575"))
	loseStyle   = numStyle.Foreground(lipgloss.Color("#FF5F87"))
)

func row(name string, cells ...string) string {
	parts := []string{nameStyle.Render(name)}
	for _, c := range cells {
		parts = append(parts, numStyle.Render(c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderSummary prints per-bot results, best first.
func renderSummary(res *simulator.Results) string {
	var b strings.Builder

	hands := 0
	for _, t := range res.Tables {
		hands += t.Hands
	}
	b.WriteString(titleStyle.Render(" ♠ ♥ Simulation Results ♦ ♣ "))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Seed: %d   Tables: %d   Hands: %d\n\n", res.Seed, len(res.Tables), hands)

	names := make([]string, 0, len(res.Players))
	for name := range res.Players {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		mi, mj := res.Players[names[i]].Mean(), res.Players[names[j]].Mean()
		if mi != mj {
			return mi > mj
		}
		return names[i] < names[j]
	})

	b.WriteString(headerStyle.Render(row("Bot", "Hands", "bb/hand", "95% CI ±", "SD wins", "NSD wins", "Max pot bb")))
	b.WriteString("\n")
	for _, name := range names {
		st := res.Players[name]
		low, high := st.ConfidenceInterval95()
		mean := numStyle
		if st.Mean() > 0 {
			mean = winStyle
		} else if st.Mean() < 0 {
			mean = loseStyle
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(name),
			numStyle.Render(fmt.Sprint(st.Hands)),
			mean.Render(fmt.Sprintf("%+.3f", st.Mean())),
			numStyle.Render(fmt.Sprintf("%.3f", (high-low)/2)),
			numStyle.Render(fmt.Sprint(st.ShowdownWins)),
			numStyle.Render(fmt.Sprint(st.NonShowdownWins)),
			numStyle.Render(fmt.Sprintf("%.1f", st.MaxPotBB)),
		))
		b.WriteString("\n")
	}
	return b.String()
}
