package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv isolates config lookup and returns a data file path in a temp dir.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("KANBY_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("KANBY_DATA_FILE", "")
	t.Setenv("KANBY_LOG_FILE", "")
	t.Setenv("KANBY_LOG_LEVEL", "")
	t.Setenv("KANBY_HISTORY", "")
	t.Setenv("KANBY_FORMAT", "")
	t.Setenv("NO_COLOR", "")
	return filepath.Join(dir, "board.json")
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// mustJSON runs a command with --format json against data and decodes the envelope.
func mustJSON(t *testing.T, data string, args ...string) map[string]any {
	t.Helper()
	full := append([]string{"--data-file", data, "--format", "json"}, args...)
	stdout, stderr, err := runCLI(t, full)
	if err != nil {
		t.Fatalf("kanby %v: %v\nstderr:\n%s", args, err, stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("kanby %v: stdout is not JSON: %v\n%s", args, err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("kanby %v: missing data key: %s", args, stdout)
	}
	return env
}

func projectNames(env map[string]any) []string {
	var names []string
	for _, p := range env["data"].([]any) {
		names = append(names, p.(map[string]any)["name"].(string))
	}
	return names
}

func TestProjectsLifecycle(t *testing.T) {
	data := testEnv(t)

	mustJSON(t, data, "projects", "create", "Work")
	mustJSON(t, data, "projects", "create", "Home")
	got := projectNames(mustJSON(t, data, "projects", "list"))
	if strings.Join(got, ",") != "Default Project,Work,Home" {
		t.Fatalf("projects = %v", got)
	}

	mustJSON(t, data, "projects", "rename", "Work", "Office")
	mustJSON(t, data, "projects", "use", "Office")
	list := mustJSON(t, data, "projects", "list")
	for _, p := range list["data"].([]any) {
		pm := p.(map[string]any)
		if pm["current"].(bool) != (pm["name"] == "Office") {
			t.Fatalf("current flag wrong: %v", list["data"])
		}
	}

	if _, _, err := runCLI(t, []string{"--data-file", data, "projects", "rename", "Office", "Home"}); err == nil {
		t.Fatalf("rename onto an existing name should fail")
	}
	if _, _, err := runCLI(t, []string{"--data-file", data, "projects", "delete", "Home"}); err == nil {
		t.Fatalf("delete without --yes should fail")
	}
	mustJSON(t, data, "projects", "delete", "Home", "--yes")
	mustJSON(t, data, "projects", "delete", "Default Project", "--yes")
	if _, _, err := runCLI(t, []string{"--data-file", data, "projects", "delete", "Office", "--yes"}); err == nil {
		t.Fatalf("deleting the last project should fail")
	}
	if got := projectNames(mustJSON(t, data, "projects", "list")); strings.Join(got, ",") != "Office" {
		t.Fatalf("projects = %v", got)
	}
}

func TestTasksLifecycle(t *testing.T) {
	data := testEnv(t)

	a := mustJSON(t, data, "tasks", "add", "Write", "docs", "--priority", "high")
	aID := a["data"].(map[string]any)["id"].(string)
	if len(aID) != 8 {
		t.Fatalf("id = %q", aID)
	}
	if title := a["data"].(map[string]any)["title"]; title != "Write docs" {
		t.Fatalf("title = %v", title)
	}
	b := mustJSON(t, data, "tasks", "add", "Review", "--column", "in progress")
	bID := b["data"].(map[string]any)["id"].(string)
	if col := b["data"].(map[string]any)["column"]; col != "In Progress" {
		t.Fatalf("column = %v", col)
	}

	e := mustJSON(t, data, "tasks", "edit", aID, "--priority", "l")
	if got := e["data"].(map[string]any); got["priority"] != "Low" || got["title"] != "Write docs" {
		t.Fatalf("edit = %v", got)
	}

	m := mustJSON(t, data, "tasks", "move", aID, "--column", "In Progress", "--position", "1")
	if got := m["data"].(map[string]any); got["column"] != "In Progress" || got["position"].(float64) != 1 {
		t.Fatalf("move = %v", got)
	}
	m = mustJSON(t, data, "tasks", "move", bID, "--position", "99")
	if got := m["data"].(map[string]any); got["position"].(float64) != 2 {
		t.Fatalf("position should clamp to the end: %v", got)
	}

	list := mustJSON(t, data, "tasks", "list")
	cols := list["data"].(map[string]any)["columns"].([]any)
	inProgress := cols[1].(map[string]any)["tasks"].([]any)
	if len(inProgress) != 2 || inProgress[0].(map[string]any)["id"] != aID || inProgress[1].(map[string]any)["id"] != bID {
		t.Fatalf("In Progress = %v", inProgress)
	}

	mustJSON(t, data, "tasks", "delete", aID)
	if _, _, err := runCLI(t, []string{"--data-file", data, "tasks", "delete", aID}); err == nil {
		t.Fatalf("deleting a missing task should fail")
	}
	if _, _, err := runCLI(t, []string{"--data-file", data, "tasks", "add", "x", "--priority", "urgent"}); err == nil {
		t.Fatalf("bad priority should fail")
	}
}

func TestHistory_RecordsCommits(t *testing.T) {
	data := testEnv(t)

	mustJSON(t, data, "projects", "create", "Work")
	mustJSON(t, data, "tasks", "add", "one")

	env := mustJSON(t, data, "history", "--limit", "5")
	events := env["data"].([]any)
	if len(events) != 2 {
		t.Fatalf("events = %v", events)
	}
	if typ := events[0].(map[string]any)["type"]; typ != "task.add" {
		t.Fatalf("newest first: got %v", typ)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(data), "board.history.sqlite")); err != nil {
		t.Fatalf("history file: %v", err)
	}
}

func TestDoctor_LeavesHistoryUntouched(t *testing.T) {
	data := testEnv(t)
	mustJSON(t, data, "tasks", "add", "one")

	hist := filepath.Join(filepath.Dir(data), "board.history.sqlite")
	before, err := os.ReadFile(hist)
	if err != nil {
		t.Fatalf("history file: %v", err)
	}

	env := mustJSON(t, data, "doctor")
	r := env["data"].(map[string]any)
	if r["history"] != hist {
		t.Fatalf("history = %v, want %s", r["history"], hist)
	}
	after, err := os.ReadFile(hist)
	if err != nil || !bytes.Equal(before, after) {
		t.Fatalf("doctor changed the history file (err=%v)", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(hist + suffix); err == nil {
			t.Fatalf("doctor created %s", hist+suffix)
		}
	}
}

func TestCorruptDataFile_IsLeftUntouched(t *testing.T) {
	data := testEnv(t)
	content := []byte(`{"Default Project": {"To Do": [{"title": 7}]}}`)
	if err := os.WriteFile(data, content, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"tasks", "list"},
		{"tasks", "add", "x"},
		{"doctor"},
	} {
		if _, _, err := runCLI(t, append([]string{"--data-file", data}, args...)); err == nil {
			t.Fatalf("kanby %v: expected an error for a corrupt file", args)
		}
	}
	got, _ := os.ReadFile(data)
	if !bytes.Equal(got, content) {
		t.Fatalf("corrupt file was modified:\n%s", got)
	}
	if _, err := os.Stat(data + ".bak"); err == nil {
		t.Fatalf("no backup should be written for a corrupt file")
	}
}

func TestDoctor_ReportsUpgradeWithoutWriting(t *testing.T) {
	data := testEnv(t)
	legacy := []byte(`{"To Do": [{"title": "old"}], "Done": []}`)
	if err := os.WriteFile(data, legacy, 0o644); err != nil {
		t.Fatal(err)
	}

	env := mustJSON(t, data, "doctor")
	r := env["data"].(map[string]any)
	if r["ok"] != true || r["needsUpgrade"] != true || r["tasks"].(float64) != 1 {
		t.Fatalf("report = %v", r)
	}
	got, _ := os.ReadFile(data)
	if !bytes.Equal(got, legacy) {
		t.Fatalf("doctor modified the data file")
	}
}

func TestExport_Markdown(t *testing.T) {
	data := testEnv(t)
	mustJSON(t, data, "tasks", "add", "Ship it", "--priority", "h")

	stdout, stderr, err := runCLI(t, []string{"--data-file", data, "export"})
	if err != nil {
		t.Fatalf("export: %v\n%s", err, stderr)
	}
	md := string(stdout)
	if !strings.Contains(md, "# Default Project") || !strings.Contains(md, "- **[H]** Ship it") {
		t.Fatalf("markdown:\n%s", md)
	}

	stdout, _, err = runCLI(t, []string{"--data-file", data, "export", "--render", "--style", "notty"})
	if err != nil {
		t.Fatalf("export --render: %v", err)
	}
	if !strings.Contains(string(stdout), "Ship it") {
		t.Fatalf("rendered:\n%s", stdout)
	}

	if _, _, err := runCLI(t, []string{"--data-file", data, "export", "--project", "Nope"}); err == nil {
		t.Fatalf("unknown project should fail")
	}
}

func TestTextFormat(t *testing.T) {
	data := testEnv(t)
	mustJSON(t, data, "tasks", "add", "Ship it")

	stdout, _, err := runCLI(t, []string{"--data-file", data, "tasks", "list"})
	if err != nil {
		t.Fatalf("tasks list: %v", err)
	}
	out := string(stdout)
	for _, want := range []string{"Default Project", "To Do (1)", "[M] Ship it", "In Progress (0)", "[No tasks]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestMain_ExitCodes(t *testing.T) {
	data := testEnv(t)

	var out, errOut bytes.Buffer
	if code := Main([]string{"--version"}, &out, &errOut); code != 0 {
		t.Fatalf("--version exit = %d", code)
	}
	if !strings.Contains(out.String(), Version) {
		t.Fatalf("--version output = %q", out.String())
	}

	errOut.Reset()
	if code := Main([]string{"--data-file", data, "tasks", "delete", "nope"}, &out, &errOut); code != 1 {
		t.Fatalf("error exit = %d", code)
	}
	if !strings.Contains(errOut.String(), "Error:") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestDocs(t *testing.T) {
	data := testEnv(t)

	env := mustJSON(t, data, "docs")
	topics := env["data"].(map[string]any)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("no topics: %v", env)
	}

	stdout, _, err := runCLI(t, []string{"--data-file", data, "docs", "keys", "--raw"})
	if err != nil {
		t.Fatalf("docs keys --raw: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "# Keys") {
		t.Fatalf("raw docs = %q", stdout)
	}

	stdout, _, err = runCLI(t, []string{"--data-file", data, "docs", "keys", "--style", "notty"})
	if err != nil {
		t.Fatalf("docs keys: %v", err)
	}
	if !strings.Contains(string(stdout), "Move mode") {
		t.Fatalf("rendered docs:\n%s", stdout)
	}

	if _, _, err := runCLI(t, []string{"--data-file", data, "docs", "nope"}); err == nil {
		t.Fatalf("unknown topic should fail")
	}
}
