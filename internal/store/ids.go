package store

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// taskIDLen is the length of generated task ids: the first 8 hex digits of a v4 UUID.
const taskIDLen = 8

func newRandomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:taskIDLen]
}

// NewTaskID returns an id not used by any task on the board.
func NewTaskID(b *Board) (string, error) {
	for range 64 {
		id := newRandomID()
		if !b.HasTaskID(id) {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a unique task id")
}
