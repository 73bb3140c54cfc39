package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/MKhiriev/go-secure-folder/internal/service"
	"github.com/MKhiriev/go-secure-folder/models"
)

const hotKeysBrowser = "enter: open • ←: up • e: encrypt • d: decrypt • n: new folder • s/o: save/load key\n" +
	"  L: key length • x: cancel • c: copy path • r: refresh • tab: history • v: about"

func (m appModel) View() string {
	if m.showBuildInfo {
		return appStyle.Render(renderBuildInfoWindow(m.buildInfo()))
	}

	var body string
	switch m.screen {
	case screenHistory:
		body = m.historyView()
	default:
		body = m.browserView()
	}
	if m.prompt.active() {
		body += "\n\n" + m.prompt.View()
	}
	return appStyle.Render(body)
}

func (m appModel) buildInfo() models.AppBuildInfo {
	if m.appInfo == nil {
		return models.NewAppBuildInfo("", "", "")
	}
	return m.appInfo.GetBuildInfo(m.ctx)
}

func (m appModel) browserView() string {
	var b strings.Builder

	b.WriteString(helpStyle.Render(fitPath(m.dir, m.nameWidth()+30)))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(helpStyle.Render("(empty folder)"))
		b.WriteString("\n")
	}
	start, end := visibleWindow(m.cursor, len(m.entries), m.listHeight())
	for i := start; i < end; i++ {
		b.WriteString(m.renderEntry(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.keyLine())
	for _, op := range m.running {
		b.WriteString("\n")
		b.WriteString(m.renderProgress(op))
	}
	if s := m.status.View(); s != "" {
		b.WriteString("\n\n")
		b.WriteString(s)
	}

	return renderPage("SECURE FOLDER", b.String(), hotKeysBrowser)
}

func (m appModel) renderEntry(i int) string {
	e := m.entries[i]
	width := m.nameWidth()

	label := e.Name
	if e.IsDir {
		label += "/"
	}
	label = fmt.Sprintf("%-*s", width, fitText(label, width))

	size := ""
	switch {
	case e.IsDir:
		label = dirStyle.Render(label)
	case e.IsContainer():
		label = containerStyle.Render(label)
		size = humanize.Bytes(uint64(e.Size))
	default:
		size = humanize.Bytes(uint64(e.Size))
	}

	row := fmt.Sprintf("%s  %9s  %s", label, size, humanize.Time(e.ModTime))
	if i == m.cursor {
		return selectedStyle.Render("> ") + row
	}
	return "  " + row
}

func (m appModel) keyLine() string {
	held := "none"
	if m.heldKey != nil {
		held = "loaded"
	}
	return helpStyle.Render(fmt.Sprintf("key: %s • new containers: %d-bit", held, m.keyLength.Bits()))
}

func (m appModel) renderProgress(op *service.Operation) string {
	p := op.Progress()
	return fmt.Sprintf("%s %s %s  %d/%d files  %s / %s  (%s)",
		m.spinner.View(),
		operationVerb(op.Kind),
		fitText(filepath.Base(op.Target), 32),
		p.FilesDone, p.FilesTotal,
		humanize.Bytes(uint64(p.BytesDone)), humanize.Bytes(uint64(p.BytesTotal)),
		p.State,
	)
}

func (m appModel) nameWidth() int {
	if m.width <= 0 {
		return 40
	}
	return min(max(m.width-40, 16), 60)
}

func (m appModel) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(m.height-18, 5)
}

// visibleWindow returns the slice of rows to draw so that cursor stays
// on screen. height 0 means no limit.
func visibleWindow(cursor, n, height int) (start, end int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start = max(cursor-height/2, 0)
	if start+height > n {
		start = n - height
	}
	return start, start + height
}
