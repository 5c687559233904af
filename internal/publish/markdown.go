package publish

import (
	"bytes"
	"fmt"
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"
	"pulse-cli/internal/views"
)

// RenderProjectMarkdown renders one project page.
func RenderProjectMarkdown(p model.Project) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(p.Name))
	writeLn("")
	writeLn("- ID: " + p.ID.String())
	writeLn("- Status: " + statusutil.Label(p.Status))
	if p.OwnerID != "" {
		writeLn("- Owner: " + p.OwnerID.String())
	}

	if desc := strings.TrimSpace(p.DescriptionText()); desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}
	return buf.String()
}

// RenderBoardMarkdown renders the stats summary and one section per status column.
// Project names link to their pages when linkPages is set.
func RenderBoardMarkdown(title string, projects []model.Project, linkPages bool) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	if strings.TrimSpace(title) == "" {
		title = "Projects"
	}
	writeLn("# " + title)
	writeLn("")

	st := views.ComputeStats(projects)
	writeLn("| Status | Count | Rate |")
	writeLn("|---|---:|---:|")
	for _, s := range model.Statuses {
		writeLn(fmt.Sprintf("| %s | %d | %d%% |", statusutil.Label(s), st.Count(s), st.Rate(s)))
	}
	writeLn(fmt.Sprintf("| **Total** | **%d** | |", st.Total))

	groups := views.GroupByStatus(projects)
	for _, s := range model.Statuses {
		writeLn("")
		writeLn("## " + statusutil.Label(s))
		writeLn("")
		bucket := groups.Bucket(s)
		if len(bucket) == 0 {
			writeLn("_No projects_")
			continue
		}
		for _, p := range bucket {
			name := escapeInline(p.Name)
			if linkPages {
				name = fmt.Sprintf("[%s](%s)", name, projectPagePath(p.ID))
			}
			line := "- " + name
			if d := firstLine(p.DescriptionText()); d != "" {
				line += ": " + escapeInline(d)
			}
			writeLn(line)
		}
	}
	return buf.String()
}

func projectPagePath(id model.ID) string {
	return "projects/" + id.String() + ".md"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

var inlineEscaper = strings.NewReplacer("[", `\[`, "]", `\]`, "|", `\|`)

func escapeInline(s string) string {
	return inlineEscaper.Replace(strings.TrimSpace(s))
}
