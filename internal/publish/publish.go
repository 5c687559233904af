// Package publish writes a Markdown snapshot of the project board.
package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pulse-cli/internal/model"
)

type WriteOptions struct {
	Title     string
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// page is one file of a snapshot, path relative to the target directory.
type page struct {
	rel  string
	body string
}

func plan(projects []model.Project, title string) []page {
	pages := make([]page, 0, len(projects)+1)
	pages = append(pages, page{rel: "board.md", body: RenderBoardMarkdown(title, projects, true)})
	for _, p := range projects {
		pages = append(pages, page{rel: filepath.FromSlash(projectPagePath(p.ID)), body: RenderProjectMarkdown(p)})
	}
	return pages
}

// WriteBoard writes <toDir>/board.md plus one page per project under <toDir>/projects.
// Without Overwrite nothing is written when any target file already exists.
func WriteBoard(projects []model.Project, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	pages := plan(projects, opt.Title)

	if !opt.Overwrite {
		for _, pg := range pages {
			path := filepath.Join(toDir, pg.rel)
			if _, err := os.Stat(path); err == nil {
				return WriteResult{}, fmt.Errorf("file exists (use --overwrite): %s", path)
			}
		}
	}
	if err := os.MkdirAll(filepath.Join(toDir, "projects"), 0o755); err != nil {
		return WriteResult{}, err
	}

	res := WriteResult{Written: make([]string, 0, len(pages))}
	for _, pg := range pages {
		path := filepath.Join(toDir, pg.rel)
		if err := os.WriteFile(path, []byte(pg.body), 0o644); err != nil {
			return res, err
		}
		res.Written = append(res.Written, path)
	}
	return res, nil
}
