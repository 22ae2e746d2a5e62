package mutate

import "kanby/internal/store"

// Result describes a mutation applied to a board. Callers run mutations inside
// store.Session.Commit and hand Change() back to it for the history log.
type Result struct {
	Project      string
	Entity       string
	Changed      bool
	EventPayload map[string]any
}

func (r Result) Change() store.Change {
	return store.Change{Project: r.Project, Entity: r.Entity, Payload: r.EventPayload}
}

// Committer persists a board mutation. *store.Session implements it.
type Committer interface {
	Commit(op string, fn func(*store.Board) (store.Change, error)) error
}
