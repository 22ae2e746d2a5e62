package publish

import (
	"bytes"
	"fmt"
	"strings"

	"kanby/internal/model"
	"kanby/internal/store"
)

type RenderOptions struct {
	// IncludeIDs appends each task's id in code style.
	IncludeIDs bool
}

// RenderProjectMarkdown renders one project: a heading per column, then its
// tasks in board order as "[P] title" list items. Empty project means the
// current project.
func RenderProjectMarkdown(b *store.Board, project string, opt RenderOptions) (string, error) {
	if b == nil {
		return "", fmt.Errorf("missing board")
	}
	p, err := findProject(b, project)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	writeProject(&buf, p, "#", opt)
	return buf.String(), nil
}

// RenderBoardMarkdown renders every project in board order.
func RenderBoardMarkdown(b *store.Board, opt RenderOptions) (string, error) {
	if b == nil {
		return "", fmt.Errorf("missing board")
	}
	var buf bytes.Buffer
	buf.WriteString("# Board\n\n")
	for i := range b.Projects {
		writeProject(&buf, &b.Projects[i], "##", opt)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

func findProject(b *store.Board, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b.CurrentProject(), nil
	}
	p, ok := b.FindProject(name)
	if !ok {
		return nil, fmt.Errorf("project not found: %s", name)
	}
	return p, nil
}

func writeProject(buf *bytes.Buffer, p *model.Project, level string, opt RenderOptions) {
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}
	writeLn(level + " " + p.Name)
	writeLn("")
	for _, c := range p.Columns {
		writeLn(fmt.Sprintf("%s# %s (%d)", level, c.Name, len(c.Tasks)))
		writeLn("")
		if len(c.Tasks) == 0 {
			writeLn("_No tasks_")
			writeLn("")
			continue
		}
		for _, t := range c.Tasks {
			line := "- **[" + t.Priority.Abbrev() + "]** " + escapeInline(t.Title)
			if opt.IncludeIDs && t.ID != "" {
				line += " `" + t.ID + "`"
			}
			writeLn(line)
		}
		writeLn("")
	}
}

// escapeInline keeps task titles from being read as markdown markup.
func escapeInline(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"[", `\[`,
		"]", `\]`,
		"#", `\#`,
	)
	return r.Replace(strings.TrimSpace(s))
}
