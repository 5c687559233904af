package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pulse-cli/internal/model"
)

func fixtures() []model.Project {
	return []model.Project{
		{ID: "1", Name: "Website redesign", Description: model.StrPtr("New landing page\nand more"), Status: model.StatusInProgress, OwnerID: "7"},
		{ID: "2", Name: "Mobile [beta]", Status: model.StatusCompleted},
	}
}

func TestRenderBoardMarkdown_StatsAndColumns(t *testing.T) {
	t.Parallel()

	md := RenderBoardMarkdown("Team board", fixtures(), true)
	for _, want := range []string{
		"# Team board",
		"| In Progress | 1 | 50% |",
		"| Not Started | 0 | 0% |",
		"| **Total** | **2** | |",
		"## Not Started\n\n_No projects_",
		"- [Website redesign](projects/1.md): New landing page\n",
		`- [Mobile \[beta\]](projects/2.md)`,
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown, got:\n%s", want, md)
		}
	}
}

func TestRenderProjectMarkdown_IncludesDescription(t *testing.T) {
	t.Parallel()

	md := RenderProjectMarkdown(fixtures()[0])
	if !strings.HasPrefix(md, "# Website redesign\n") {
		t.Fatalf("expected title heading, got:\n%s", md)
	}
	if !strings.Contains(md, "- Status: In Progress") || !strings.Contains(md, "## Description\n\nNew landing page\nand more") {
		t.Fatalf("expected status and description, got:\n%s", md)
	}
	if strings.Contains(RenderProjectMarkdown(fixtures()[1]), "## Description") {
		t.Fatalf("expected no description section for an empty description")
	}
}

func TestWriteBoard_RefusesToOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := WriteBoard(fixtures(), dir, WriteOptions{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected board + 2 pages, got %v", res.Written)
	}
	if _, err := os.Stat(filepath.Join(dir, "projects", "2.md")); err != nil {
		t.Fatalf("expected project page: %v", err)
	}

	if _, err := WriteBoard(fixtures(), dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "use --overwrite") {
		t.Fatalf("expected overwrite guard, got %v", err)
	}
	if _, err := WriteBoard(fixtures(), dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestWriteBoard_RequiresTarget(t *testing.T) {
	t.Parallel()

	if _, err := WriteBoard(nil, "  ", WriteOptions{}); err == nil {
		t.Fatalf("expected error for empty target")
	}
}

func TestWriteBoard_ConflictWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "projects"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "projects", "2.md"), []byte("keep"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := WriteBoard(fixtures(), dir, WriteOptions{}); err == nil {
		t.Fatalf("expected conflict error")
	}
	if _, err := os.Stat(filepath.Join(dir, "board.md")); !os.IsNotExist(err) {
		t.Fatalf("expected board.md not to be written, stat err=%v", err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "projects", "2.md"))
	if string(b) != "keep" {
		t.Fatalf("existing page was modified: %q", b)
	}
}
