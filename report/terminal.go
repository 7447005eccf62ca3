package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zalepa/judgefee/fee"
)

var (
	colorTitle   = lipgloss.Color("#dc2626")
	colorHeading = lipgloss.Color("#1e40af")
	colorBorder  = lipgloss.Color("#93c5fd")
	colorMuted   = lipgloss.Color("#6b7280")
)

type terminalStyles struct {
	title, heading, line, total, card, muted lipgloss.Style
}

func newTerminalStyles(r *lipgloss.Renderer) terminalStyles {
	return terminalStyles{
		title:   r.NewStyle().Bold(true).Foreground(colorTitle),
		heading: r.NewStyle().Bold(true).Foreground(colorHeading),
		line:    r.NewStyle(),
		total:   r.NewStyle().Bold(true).Foreground(colorHeading).MarginTop(1),
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		muted: r.NewStyle().Foreground(colorMuted),
	}
}

// RenderTerminal prints one bordered card per judge followed by the grand
// total. Colors are only emitted when w is a terminal.
func RenderTerminal(w io.Writer, results []fee.Result, o Options) error {
	st := newTerminalStyles(lipgloss.NewRenderer(w))

	var sb strings.Builder
	sb.WriteString(st.title.Render(o.title()))
	sb.WriteByte('\n')

	for i, r := range results {
		lines := Lines(r, o)
		body := make([]string, 0, len(lines)+2)
		body = append(body, st.heading.Render(Heading(i, r, o)))
		for _, l := range lines {
			body = append(body, st.line.Render(l.String()))
		}
		if len(lines) == 0 {
			body = append(body, st.muted.Render("(no line items)"))
		}
		body = append(body, st.total.Render(TotalLine(r)))
		sb.WriteString(st.card.Render(lipgloss.JoinVertical(lipgloss.Left, body...)))
		sb.WriteByte('\n')
	}

	sb.WriteString(st.muted.Render(fmt.Sprintf("%d judge(s), grand total %s", len(results), fee.FormatMoney(fee.Sum(results)))))
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}
