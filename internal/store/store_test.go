package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"kanby/internal/model"
)

func testStore(t *testing.T) Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "kanby_data.json"), Defaults{})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_MissingFileYieldsDefaultBoard(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	b, upgraded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if upgraded {
		t.Fatalf("expected no upgrade for a missing file")
	}
	if got := b.ProjectNames(); !reflect.DeepEqual(got, []string{DefaultProjectName}) {
		t.Fatalf("projects = %v", got)
	}
	p := b.CurrentProject()
	var cols []string
	for _, c := range p.Columns {
		cols = append(cols, c.Name)
		if len(c.Tasks) != 0 {
			t.Fatalf("expected empty column %q", c.Name)
		}
	}
	if !reflect.DeepEqual(cols, DefaultColumns) {
		t.Fatalf("columns = %v", cols)
	}
	if b.Meta.LastProject != DefaultProjectName {
		t.Fatalf("last project = %q", b.Meta.LastProject)
	}
	if _, err := os.Stat(s.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load must not create the file, stat err = %v", err)
	}
}

func TestLoad_BlankFileYieldsDefaultBoard(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	writeFile(t, s.Path, "  \n\t")

	b, _, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.Projects) != 1 || b.Projects[0].Name != DefaultProjectName {
		t.Fatalf("unexpected board: %+v", b.Projects)
	}
}

func TestLoad_ConfiguredDefaults(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "b.json"), Defaults{Project: "Inbox", Columns: []string{"Backlog", " ", "Doing"}})

	b, _, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := b.CurrentProject()
	if p.Name != "Inbox" {
		t.Fatalf("project = %q", p.Name)
	}
	if len(p.Columns) != 2 || p.Columns[0].Name != "Backlog" || p.Columns[1].Name != "Doing" {
		t.Fatalf("columns = %+v", p.Columns)
	}
}

func TestLoad_CorruptFileIsReportedAndUntouched(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		content string
	}{
		{name: "invalid json", content: `{"Default Project": {"To Do": [`},
		{name: "not an object", content: `["a", "b"]`},
		{name: "task without title", content: `{"P": {"To Do": [{"id": "x"}]}}`},
		{name: "column is not a list", content: `{"P": {"To Do": "nope"}}`},
		{name: "bad meta version", content: `{"P": {}, "_meta": {"version": "two"}}`},
		{name: "duplicate project", content: `{"P": {}, "P": {}}`},
		{name: "trailing garbage", content: `{"P": {}} {}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := testStore(t)
			writeFile(t, s.Path, tc.content)

			_, _, err := s.Load()
			if err == nil {
				t.Fatalf("expected corruption error")
			}
			if !IsCorruption(err) {
				t.Fatalf("expected CorruptionError, got %T: %v", err, err)
			}
			got, rerr := os.ReadFile(s.Path)
			if rerr != nil {
				t.Fatalf("read back: %v", rerr)
			}
			if string(got) != tc.content {
				t.Fatalf("file modified: %q", got)
			}
		})
	}
}

func TestSaveLoad_RoundTripKeepsOrder(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	b := &Board{
		Projects: []model.Project{
			{Name: "Zeta", Columns: []model.Column{
				{Name: "Later", Tasks: []model.Task{{ID: "aaaa0001", Title: "one", Priority: model.PriorityHigh}}},
				{Name: "Now", Tasks: []model.Task{
					{ID: "aaaa0003", Title: "three", Priority: model.PriorityLow},
					{ID: "aaaa0002", Title: "two", Priority: model.PriorityMid},
				}},
			}},
			{Name: "Alpha", Columns: []model.Column{{Name: "Only", Tasks: []model.Task{}}}},
		},
		Meta: Meta{LastProject: "Alpha", Version: BoardVersion},
	}
	if err := s.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, upgraded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if upgraded {
		t.Fatalf("a freshly saved board must not need an upgrade")
	}
	if !reflect.DeepEqual(got.Projects, b.Projects) {
		t.Fatalf("projects differ:\n got %+v\nwant %+v", got.Projects, b.Projects)
	}
	if got.Meta != b.Meta {
		t.Fatalf("meta = %+v, want %+v", got.Meta, b.Meta)
	}

	raw, _ := os.ReadFile(s.Path)
	if strings.Index(string(raw), `"Zeta"`) > strings.Index(string(raw), `"Alpha"`) {
		t.Fatalf("project order not preserved in file:\n%s", raw)
	}
	if strings.Index(string(raw), `"Later"`) > strings.Index(string(raw), `"Now"`) {
		t.Fatalf("column order not preserved in file:\n%s", raw)
	}
}

func TestSave_KeepsBackupOfPreviousFile(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	first := NewBoard(Defaults{})
	if err := s.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(s.BackupPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("no backup expected after the first save")
	}
	prev, _ := os.ReadFile(s.Path)

	second := first.Clone()
	second.Projects[0].Columns[0].Tasks = append(second.Projects[0].Columns[0].Tasks, model.Task{ID: "t1", Title: "x", Priority: model.PriorityMid})
	if err := s.Save(second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	bak, err := os.ReadFile(s.BackupPath())
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(bak) != string(prev) {
		t.Fatalf("backup does not match previous file")
	}

	entries, _ := os.ReadDir(filepath.Dir(s.Path))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLoad_UpgradesLegacyDocument(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	writeFile(t, s.Path, `{
  "To Do": [{"title": "first"}, {"title": "second", "priority": "high"}],
  "Done": [{"id": "keepme01", "title": "done", "priority": "Low"}]
}`)

	b, upgraded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !upgraded {
		t.Fatalf("expected upgrade")
	}
	if len(b.Projects) != 1 || b.Projects[0].Name != DefaultProjectName {
		t.Fatalf("projects = %v", b.ProjectNames())
	}
	p := b.Projects[0]
	if got := columnNames(p); strings.Join(got, ",") != "To Do,In Progress,Done" {
		t.Fatalf("columns = %v", got)
	}
	todo := p.Columns[0].Tasks
	if todo[0].ID == "" || todo[1].ID == "" || todo[0].ID == todo[1].ID {
		t.Fatalf("expected fresh distinct ids, got %q %q", todo[0].ID, todo[1].ID)
	}
	if todo[0].Priority != model.PriorityMid {
		t.Fatalf("missing priority should default to Mid, got %q", todo[0].Priority)
	}
	if todo[1].Priority != model.PriorityHigh {
		t.Fatalf("priority should normalize to High, got %q", todo[1].Priority)
	}
	if got := p.Columns[2].Tasks[0].ID; got != "keepme01" {
		t.Fatalf("existing id changed to %q", got)
	}
	if b.Meta.Version != BoardVersion || b.Meta.LastProject != DefaultProjectName {
		t.Fatalf("meta = %+v", b.Meta)
	}
}

func TestLoad_LegacyUnknownKeysGoToFirstColumn(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	writeFile(t, s.Path, `{"To Do":[{"title":"a"}],"Backlog":[{"title":"b"}]}`)

	b, upgraded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !upgraded {
		t.Fatalf("expected upgrade")
	}
	p := b.Projects[0]
	if got := columnNames(p); strings.Join(got, ",") != "To Do,In Progress,Done" {
		t.Fatalf("columns = %v", got)
	}
	todo := p.Columns[0].Tasks
	if len(todo) != 2 || todo[0].Title != "a" || todo[1].Title != "b" {
		t.Fatalf("first column = %+v", todo)
	}
	if len(p.Columns[1].Tasks) != 0 || len(p.Columns[2].Tasks) != 0 {
		t.Fatalf("other columns should be empty: %+v", p.Columns)
	}
}

func columnNames(p model.Project) []string {
	out := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		out = append(out, c.Name)
	}
	return out
}

func TestLoad_UpgradeIsIdempotent(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	writeFile(t, s.Path, `{"Work": {"Todo": [{"title": "a"}, {"id": "dup", "title": "b"}, {"id": "dup", "title": "c"}]}}`)

	b, upgraded, err := s.Load()
	if err != nil || !upgraded {
		t.Fatalf("Load: upgraded=%v err=%v", upgraded, err)
	}
	if err := s.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, _ := os.ReadFile(s.Path)

	again, upgraded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if upgraded {
		t.Fatalf("second load must be a no-op")
	}
	if !reflect.DeepEqual(again.Projects, b.Projects) {
		t.Fatalf("board changed across reload")
	}
	if err := s.Save(again); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, _ := os.ReadFile(s.Path)
	if string(first) != string(second) {
		t.Fatalf("document changed on re-save:\n%s\n---\n%s", first, second)
	}

	ids := map[string]bool{}
	for _, tk := range again.Projects[0].Columns[0].Tasks {
		if ids[tk.ID] {
			t.Fatalf("duplicate id %q survived", tk.ID)
		}
		ids[tk.ID] = true
	}
	if again.Projects[0].Columns[0].Tasks[1].ID != "dup" {
		t.Fatalf("first holder of an id keeps it")
	}
}

func TestLoad_RepairsDanglingLastProject(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	writeFile(t, s.Path, `{"A": {"c": []}, "B": {"c": []}, "_meta": {"last_project": "gone", "version": 2}}`)

	b, upgraded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !upgraded || b.Meta.LastProject != "A" {
		t.Fatalf("upgraded=%v last=%q", upgraded, b.Meta.LastProject)
	}
}

func TestNewTaskID_Unique(t *testing.T) {
	t.Parallel()
	b := NewBoard(Defaults{})
	seen := map[string]bool{}
	for range 500 {
		id, err := NewTaskID(b)
		if err != nil {
			t.Fatalf("NewTaskID: %v", err)
		}
		if len(id) != taskIDLen {
			t.Fatalf("id %q has length %d", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		b.Projects[0].Columns[0].Tasks = append(b.Projects[0].Columns[0].Tasks, model.Task{ID: id, Title: "t"})
	}
}
