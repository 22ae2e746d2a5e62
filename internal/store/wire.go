package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"kanby/internal/model"
)

// MetaKey is the reserved top-level key holding Meta. It can never be a project name.
const MetaKey = "_meta"

// wireTask is the on-disk task record. ID and priority may be missing in
// documents written by older versions; the upgrade step fills them in.
type wireTask struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Priority string `json:"priority,omitempty"`
}

type wireBoard struct {
	board *Board
	// legacyColumns holds top-level "column -> tasks" entries from the flat
	// pre-project layout, in document order.
	legacyColumns []model.Column
	hasMeta       bool
}

// encodeBoard writes the board as an indented JSON object whose key order is
// the board order (projects, then columns), followed by _meta.
func encodeBoard(b *Board) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range b.Projects {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, p.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, c := range p.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, c.Name); err != nil {
				return nil, err
			}
			tasks := c.Tasks
			if tasks == nil {
				tasks = []model.Task{}
			}
			raw, err := json.Marshal(tasks)
			if err != nil {
				return nil, err
			}
			buf.Write(raw)
		}
		buf.WriteByte('}')
	}
	if len(b.Projects) > 0 {
		buf.WriteByte(',')
	}
	if err := writeKey(&buf, MetaKey); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(b.Meta)
	if err != nil {
		return nil, err
	}
	buf.Write(raw)
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(raw)
	buf.WriteByte(':')
	return nil
}

// decodeBoard parses a document that already passed schema validation,
// preserving key order.
func decodeBoard(b []byte) (wireBoard, error) {
	out := wireBoard{board: &Board{}}
	seen := map[string]bool{}
	err := walkObject(b, func(key string, val json.RawMessage) error {
		if key == MetaKey {
			if err := json.Unmarshal(val, &out.board.Meta); err != nil {
				return fmt.Errorf("%s: %w", MetaKey, err)
			}
			out.hasMeta = true
			return nil
		}
		if seen[key] {
			return fmt.Errorf("duplicate project %q", key)
		}
		seen[key] = true

		if isJSONArray(val) {
			tasks, err := decodeTasks(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			out.legacyColumns = append(out.legacyColumns, model.Column{Name: key, Tasks: tasks})
			return nil
		}

		p := model.Project{Name: key, Columns: []model.Column{}}
		colSeen := map[string]bool{}
		err := walkObject(val, func(col string, tasksRaw json.RawMessage) error {
			if colSeen[col] {
				return fmt.Errorf("duplicate column %q", col)
			}
			colSeen[col] = true
			tasks, err := decodeTasks(tasksRaw)
			if err != nil {
				return fmt.Errorf("%s: %w", col, err)
			}
			p.Columns = append(p.Columns, model.Column{Name: col, Tasks: tasks})
			return nil
		})
		if err != nil {
			return fmt.Errorf("project %q: %w", key, err)
		}
		out.board.Projects = append(out.board.Projects, p)
		return nil
	})
	if err != nil {
		return wireBoard{}, err
	}
	return out, nil
}

func decodeTasks(raw json.RawMessage) ([]model.Task, error) {
	var recs []wireTask
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(recs))
	for _, r := range recs {
		tasks = append(tasks, model.Task{
			ID:       strings.TrimSpace(r.ID),
			Title:    r.Title,
			Priority: model.Priority(r.Priority),
		})
	}
	return tasks, nil
}

// walkObject calls fn for every member of the JSON object in b, in document order.
func walkObject(b []byte, fn func(key string, val json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return err
		}
		if err := fn(key, val); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func isJSONArray(b []byte) bool {
	s := bytes.TrimSpace(b)
	return len(s) > 0 && s[0] == '['
}
