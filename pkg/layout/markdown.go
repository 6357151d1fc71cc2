package layout

import (
	"fmt"
	"path"
	"strings"
)

// Markdown renders the pages as a markdown outline: one heading per section
// and one table row per artifact group.
func Markdown(title string, pages []Page) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, p := range pages {
		depth := strings.Count(p.Section, "/") + 2
		sb.WriteString(fmt.Sprintf("%s %s\n\n", strings.Repeat("#", min(depth, 6)), p.Title))

		if len(p.Groups) == 0 {
			sb.WriteString("_No artifacts._\n\n")
			continue
		}

		width := 0
		for _, g := range p.Groups {
			width = max(width, len(g))
		}

		sb.WriteString("|" + strings.Repeat(" |", width) + "\n")
		sb.WriteString("|" + strings.Repeat("---|", width) + "\n")
		for _, g := range p.Groups {
			sb.WriteString("|")
			for i := 0; i < width; i++ {
				cell := ""
				if i < len(g) {
					cell = "`" + path.Base(g[i]) + "`"
				}
				sb.WriteString(" " + cell + " |")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
