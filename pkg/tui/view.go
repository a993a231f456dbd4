package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

const sidebarWidth = 32

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("236"))

	statusAccent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Bold(true)

	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	sidebarLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	noticeStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Foreground(lipgloss.Color("214")).
			Padding(0, 1)

	errorPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Padding(1, 2)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))
)

// View lays out: notices (if any) above the image pane, the optional
// sidebar to the right, and a one-line status bar at the bottom.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 1 {
		return ""
	}
	contentH := m.height - 1

	var top string
	if notices := m.state.Notices(); len(notices) > 0 {
		top = m.viewNotices()
		contentH -= lipgloss.Height(top)
		if contentH < 1 {
			contentH = 1
		}
	}

	sidebarW := 0
	if m.showSidebar && m.width >= 2*sidebarWidth {
		sidebarW = sidebarWidth
	}

	content := m.viewImage(m.width-sidebarW, contentH)
	if sidebarW > 0 {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.viewSidebar(sidebarW, contentH))
	}

	parts := make([]string, 0, 3)
	if top != "" {
		parts = append(parts, top)
	}
	parts = append(parts, content, m.viewStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// viewImage renders the current entry into a w x h cell area.
func (m Model) viewImage(w, h int) string {
	cur := m.state.Current()

	switch {
	case cur == nil && m.state.Waiting():
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			m.spin.View()+" loading")

	case cur == nil:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			placeholderStyle.Render("no image - open a file or directory"))

	case cur.Err != nil:
		panel := errorPanelStyle.Render(fmt.Sprintf("cannot display %s\n\n%v",
			filepath.Base(cur.Path), cur.Err))
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)
	}

	frame := 0
	if cur.Play != nil {
		frame = cur.Play.Frame()
	}
	pix := cur.Image.Frames[frame].Pix

	rendered, err := m.renderer.Render(cur.Path, frame, pix, w, h)
	if err != nil {
		m.log.Debug("render failed", "path", cur.Path, "error", err)
		panel := errorPanelStyle.Render(fmt.Sprintf("render failed\n\n%v", err))
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)
	}
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, rendered)
}

// viewSidebar shows the properties of the current entry.
func (m Model) viewSidebar(w, h int) string {
	cur := m.state.Current()

	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", sidebarLabel.Render(label), value)
	}

	if cur == nil || cur.Image == nil {
		b.WriteString(placeholderStyle.Render("no properties"))
	} else {
		img := cur.Image
		row("name:", filepath.Base(cur.Path))
		row("format:", img.Format)
		row("kind:", img.Kind())
		row("size:", fmt.Sprintf("%dx%d", img.Width, img.Height))
		if img.Animated() {
			row("frames:", fmt.Sprintf("%d", len(img.Frames)))
			if cur.Play != nil {
				state := "paused"
				if cur.Play.Playing() {
					state = "playing"
				}
				row("frame:", fmt.Sprintf("%d (%s)", cur.Play.Frame()+1, state))
			}
		}
		row("on disk:", humanize.Bytes(uint64(img.Meta.FileSize)))
		row("decoded:", humanize.IBytes(uint64(img.SizeInMemory())))
		row("modified:", img.Meta.ModTime.Format("2006-01-02 15:04"))
	}

	return sidebarStyle.Width(w - 2).Height(h - 1).Render(strings.TrimRight(b.String(), "\n"))
}

// viewNotices stacks the dismissible messages.
func (m Model) viewNotices() string {
	notices := m.state.Notices()
	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		lines = append(lines, noticeStyle.Render(n.Message+"  (x to dismiss)"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// viewStatusBar renders the bottom line: file name on the left, state
// indicators on the right.
func (m Model) viewStatusBar() string {
	left := " loupe"
	if cur := m.state.Current(); cur != nil {
		left = " " + filepath.Base(cur.Path)
		if cur.Image != nil {
			left += statusStyle.Render(fmt.Sprintf("  %dx%d %s",
				cur.Image.Width, cur.Image.Height, cur.Image.Format))
		}
	}

	var right string
	if m.slideshowOn {
		right += statusAccent.Render(" slideshow ")
	}
	if m.state.Waiting() {
		right += m.spin.View() + " "
	}

	leftW := ansi.StringWidth(left)
	rightW := ansi.StringWidth(right)
	gap := m.width - leftW - rightW
	if gap < 1 {
		left = ansi.Truncate(left, m.width-rightW-1, "…")
		gap = m.width - ansi.StringWidth(left) - rightW
		if gap < 0 {
			gap = 0
		}
	}

	return statusStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
