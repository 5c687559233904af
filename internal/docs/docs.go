// Package docs embeds the help topics shown by `pulse docs`.
package docs

import (
	"bufio"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topic is one embedded page.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Index lists every topic with the title taken from its first heading.
func Index() []Topic {
	names := Topics()
	out := make([]Topic, 0, len(names))
	for _, name := range names {
		md, _ := Get(name)
		out = append(out, Topic{Name: name, Title: title(md, name)})
	}
	return out
}

// Topics returns the sorted topic names.
func Topics() []string {
	matches, _ := fs.Glob(contentFS, "content/*.md")
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".md"))
	}
	sort.Strings(names)
	return names
}

// Get returns the markdown of a topic. Names are case-insensitive and may not contain a
// path separator.
func Get(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	b, err := contentFS.ReadFile("content/" + name + ".md")
	if err != nil {
		return "", false
	}
	return string(b), true
}

func title(md, fallback string) string {
	sc := bufio.NewScanner(strings.NewReader(md))
	for sc.Scan() {
		if t, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return fallback
}
