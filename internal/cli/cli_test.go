package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"testing"

	"pulse-cli/internal/apitest"
)

func runCLI(t *testing.T, stdin io.Reader, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

type harness struct {
	t    *testing.T
	srv  *apitest.Server
	base []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("PULSE_SESSION_BACKEND", "sqlite")
	srv := apitest.NewServer(t)
	return &harness{t: t, srv: srv, base: []string{"--api-url", srv.URL, "--dir", t.TempDir(), "--log-level", "error"}}
}

func (h *harness) run(stdin io.Reader, args ...string) ([]byte, []byte, error) {
	h.t.Helper()
	return runCLI(h.t, stdin, append(append([]string{}, h.base...), args...))
}

func (h *harness) mustRun(args ...string) map[string]any {
	h.t.Helper()
	stdout, stderr, err := h.run(nil, args...)
	if err != nil {
		h.t.Fatalf("command failed: pulse %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		h.t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	if _, ok := env["data"]; !ok {
		h.t.Fatalf("expected JSON envelope to contain data key; got: %v\nstdout:\n%s", env, string(stdout))
	}
	return env
}

func (h *harness) signUp() {
	h.t.Helper()
	h.mustRun("register", "--email", "ada@example.com", "--password", "secret123", "--name", "Ada Lovelace")
}

func idOf(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return ""
}

func TestCLI_ProjectLifecycle(t *testing.T) {
	h := newHarness(t)
	h.signUp()

	who := h.mustRun("whoami")
	if email, _ := who["data"].(map[string]any)["email"].(string); email != "ada@example.com" {
		t.Fatalf("expected whoami to return the signed-in user; got: %#v", who["data"])
	}

	created := h.mustRun("projects", "create", "--name", "Website redesign", "--description", "New landing page")
	p := created["data"].(map[string]any)
	id := idOf(p["id"])
	if id == "" || p["status"] != "NOT_STARTED" {
		t.Fatalf("unexpected created project: %#v", p)
	}
	h.mustRun("projects", "create", "--name", "Mobile app", "--status", "doing")

	list := h.mustRun("projects", "list")
	if xs, _ := list["data"].([]any); len(xs) != 2 {
		t.Fatalf("expected 2 projects; got: %#v", list["data"])
	}

	filtered := h.mustRun("projects", "list", "--status", "in_progress")
	if xs, _ := filtered["data"].([]any); len(xs) != 1 {
		t.Fatalf("expected 1 in-progress project; got: %#v", filtered["data"])
	}
	meta, _ := filtered["meta"].(map[string]any)
	if meta["isFiltering"] != true || meta["total"] != float64(2) || meta["filtered"] != float64(1) {
		t.Fatalf("unexpected list meta: %#v", meta)
	}

	moved := h.mustRun("projects", "status", id, "done")
	if moved["data"].(map[string]any)["status"] != "COMPLETED" {
		t.Fatalf("expected COMPLETED after status change; got: %#v", moved["data"])
	}

	updated := h.mustRun("projects", "update", id, "--name", "Website v2")
	if updated["data"].(map[string]any)["name"] != "Website v2" {
		t.Fatalf("expected renamed project; got: %#v", updated["data"])
	}

	stats := h.mustRun("stats")
	s := stats["data"].(map[string]any)
	if s["total"] != float64(2) || s["completionRate"] != float64(50) || s["activeRate"] != float64(50) {
		t.Fatalf("unexpected stats: %#v", s)
	}

	grouped := h.mustRun("projects", "list", "--group")
	g := grouped["data"].(map[string]any)
	if xs, _ := g["COMPLETED"].([]any); len(xs) != 1 {
		t.Fatalf("expected one completed project in groups; got: %#v", g)
	}

	del := h.mustRun("projects", "delete", id, "--yes")
	if del["data"].(map[string]any)["deleted"] != true {
		t.Fatalf("expected delete to report deleted=true; got: %#v", del["data"])
	}
	if got := len(h.srv.Projects()); got != 1 {
		t.Fatalf("expected 1 project left on the server, got %d", got)
	}
}

func TestCLI_DeleteAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	h.signUp()
	created := h.mustRun("projects", "create", "--name", "Keep me")
	id := idOf(created["data"].(map[string]any)["id"])

	stdout, stderr, err := h.run(strings.NewReader("n\n"), "projects", "delete", id)
	if err != nil {
		t.Fatalf("delete failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(string(stderr), `Are you sure you want to delete "Keep me"? This action cannot be undone. [y/N]`) {
		t.Fatalf("expected confirmation prompt on stderr; got: %q", stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, stdout)
	}
	if env["data"].(map[string]any)["deleted"] != false {
		t.Fatalf("expected deleted=false; got: %#v", env["data"])
	}
	if h.srv.CallCount("DELETE", "/projects/") != 0 {
		t.Fatalf("expected no DELETE request after declining")
	}

	if _, stderr, err = h.run(strings.NewReader("y\n"), "projects", "delete", id); err != nil {
		t.Fatalf("delete failed: %v\n%s", err, stderr)
	}
	if len(h.srv.Projects()) != 0 {
		t.Fatalf("expected project to be deleted after confirming")
	}
}

func TestCLI_RequiresSession(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run(nil, "projects", "list")
	if err == nil {
		t.Fatalf("expected error without a session")
	}
	if !strings.Contains(string(stderr), "not signed in") {
		t.Fatalf("expected not-signed-in message; got: %q", stderr)
	}
	if h.srv.CallCount("GET", "/projects/") != 0 {
		t.Fatalf("expected no API call without a session")
	}
}

func TestCLI_LoginFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ada@example.com", "secret123", "")

	_, stderr, err := h.run(nil, "login", "--email", "ada@example.com", "--password", "wrong")
	if err == nil {
		t.Fatalf("expected login failure")
	}
	if !strings.Contains(string(stderr), "Incorrect email or password") {
		t.Fatalf("expected server detail on stderr; got: %q", stderr)
	}

	// Password from stdin when the flag is omitted.
	if _, stderr, err = h.run(strings.NewReader("secret123\n"), "login", "--email", "ada@example.com"); err != nil {
		t.Fatalf("login failed: %v\n%s", err, stderr)
	}
	h.mustRun("whoami")
}

func TestCLI_LogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.signUp()
	h.mustRun("logout")
	if _, _, err := h.run(nil, "whoami"); err == nil {
		t.Fatalf("expected whoami to fail after logout")
	}
}

func TestCLI_ExpiredServerSessionSignsOut(t *testing.T) {
	h := newHarness(t)
	h.signUp()
	h.srv.FailNext("GET", "/projects/", 401, "Could not validate credentials")

	_, stderr, err := h.run(nil, "projects", "list")
	if err == nil {
		t.Fatalf("expected list to fail on 401")
	}
	if !strings.Contains(string(stderr), "Could not validate credentials") {
		t.Fatalf("expected server detail; got: %q", stderr)
	}
	if _, _, err := h.run(nil, "whoami"); err == nil {
		t.Fatalf("expected the session to be cleared after a 401")
	}
}

func TestCLI_ValidationErrorsAreLocal(t *testing.T) {
	h := newHarness(t)
	h.signUp()
	h.srv.ResetCalls()

	_, stderr, err := h.run(nil, "projects", "create", "--name", "ab")
	if err == nil || !strings.Contains(string(stderr), "at least 3 characters") {
		t.Fatalf("expected local name validation; err=%v stderr=%q", err, stderr)
	}
	if _, _, err = h.run(nil, "projects", "status", "1", "archived"); err == nil {
		t.Fatalf("expected invalid status to be rejected")
	}
	if n := len(h.srv.Calls()); n != 0 {
		t.Fatalf("expected no API calls for invalid input, got %d", n)
	}
}

func TestCLI_TableFormat(t *testing.T) {
	h := newHarness(t)
	h.signUp()
	h.mustRun("projects", "create", "--name", "Website redesign")

	stdout, stderr, err := h.run(nil, "--format", "table", "projects", "list")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, stderr)
	}
	out := string(stdout)
	for _, want := range []string{"NAME", "STATUS", "Website redesign", "Not Started"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table output; got:\n%s", want, out)
		}
	}
}

func TestCLI_Health(t *testing.T) {
	h := newHarness(t)
	env := h.mustRun("health")
	if env["data"].(map[string]any)["status"] != "ok" {
		t.Fatalf("unexpected health: %#v", env["data"])
	}
}

func TestCLI_PublishWritesBoard(t *testing.T) {
	h := newHarness(t)
	h.signUp()
	h.mustRun("projects", "create", "--name", "Website redesign", "--status", "done")

	out := t.TempDir()
	env := h.mustRun("publish", "--to", out, "--title", "Weekly")
	written, _ := env["data"].(map[string]any)["written"].([]any)
	if len(written) != 2 {
		t.Fatalf("expected board + 1 page; got: %#v", env["data"])
	}

	md := h.mustRun("publish", "--stdout")["data"].(map[string]any)["markdown"].(string)
	if !strings.Contains(md, "| Completed | 1 | 100% |") || !strings.Contains(md, "- Website redesign") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestCLI_Docs(t *testing.T) {
	h := newHarness(t)
	topics := h.mustRun("docs")
	if xs, _ := topics["data"].([]any); len(xs) == 0 {
		t.Fatalf("expected topics; got: %#v", topics["data"])
	}
	board := h.mustRun("docs", "board")
	if md, _ := board["data"].(map[string]any)["markdown"].(string); !strings.Contains(md, "space") {
		t.Fatalf("expected board docs; got: %#v", board["data"])
	}
	if _, _, err := h.run(nil, "docs", "nope"); err == nil {
		t.Fatalf("expected unknown topic to fail")
	}
	out, _, err := h.run(nil, "docs", "statuses", "--render")
	if err != nil || !strings.Contains(string(out), "Statuses") {
		t.Fatalf("expected rendered statuses topic; err=%v out=%s", err, out)
	}
}
