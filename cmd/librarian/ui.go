package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"library-client/internal/models"
)

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorMuted  = lipgloss.Color("#5C6F77")
	colorError  = lipgloss.Color("#E74C3C")
)

var styles = struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Label   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Header:  lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1),
	Cell:    lipgloss.NewStyle().Padding(0, 1),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Foreground(colorAccent),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(colorError),
	Label:   lipgloss.NewStyle().Foreground(colorMuted).Width(12),
}

// renderTable lays rows out under headers. An empty result prints a muted note.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("(none)"))
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		})
	fmt.Fprintln(w, t.Render())
}

// renderFields prints label/value pairs, one per line.
func renderFields(w io.Writer, title string, fields [][2]string) {
	fmt.Fprintln(w, styles.Title.Render(title))
	for _, f := range fields {
		value := f[1]
		if value == "" {
			value = styles.Muted.Render("-")
		}
		fmt.Fprintln(w, styles.Label.Render(f[0])+" "+value)
	}
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.Success.Render("✓ ")+fmt.Sprintf(format, args...))
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ordinal(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

// titles lists related entities, comma separated.
func titles[T models.Entity](list []T) string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.EntityTitle()
	}
	return strings.Join(out, ", ")
}
