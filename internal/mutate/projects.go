package mutate

import (
	"strings"

	"kanby/internal/model"
	"kanby/internal/store"
)

func normalizeProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ValidationError{Field: "project name", Reason: "must not be empty"}
	}
	if name == store.MetaKey {
		return "", ValidationError{Field: "project name", Reason: quote(name) + " is reserved"}
	}
	return name, nil
}

// CreateProject appends a project with the board's default columns and makes
// it the current project.
func CreateProject(b *store.Board, name string) (Result, error) {
	name, err := normalizeProjectName(name)
	if err != nil {
		return Result{}, err
	}
	if b.ProjectIndex(name) >= 0 {
		return Result{}, DuplicateNameError{Name: name}
	}
	p := model.NewProject(name, b.DefaultColumnNames())
	b.Projects = append(b.Projects, p)
	b.Meta.LastProject = name

	cols := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		cols = append(cols, c.Name)
	}
	return Result{
		Project:      name,
		Entity:       name,
		Changed:      true,
		EventPayload: map[string]any{"columns": cols},
	}, nil
}

// RenameProject renames in place, keeping the project's position, columns
// and tasks. Renaming to the same name is a no-op.
func RenameProject(b *store.Board, oldName, newName string) (Result, error) {
	i := b.ProjectIndex(oldName)
	if i < 0 {
		return Result{}, NotFoundError{Kind: "project", ID: oldName}
	}
	newName, err := normalizeProjectName(newName)
	if err != nil {
		return Result{}, err
	}
	if newName == oldName {
		return Result{Project: oldName, Entity: oldName}, nil
	}
	if b.ProjectIndex(newName) >= 0 {
		return Result{}, DuplicateNameError{Name: newName}
	}
	b.Projects[i].Name = newName
	if b.Meta.LastProject == oldName {
		b.Meta.LastProject = newName
	}
	return Result{
		Project:      newName,
		Entity:       newName,
		Changed:      true,
		EventPayload: map[string]any{"from": oldName, "to": newName},
	}, nil
}

// DeleteProject removes a project and its tasks. The last remaining project
// cannot be deleted.
func DeleteProject(b *store.Board, name string) (Result, error) {
	i := b.ProjectIndex(name)
	if i < 0 {
		return Result{}, NotFoundError{Kind: "project", ID: name}
	}
	if len(b.Projects) == 1 {
		return Result{}, LastProjectError{Name: name}
	}
	removed := b.Projects[i].TaskCount()
	b.Projects = append(b.Projects[:i], b.Projects[i+1:]...)
	if b.Meta.LastProject == name {
		b.Meta.LastProject = b.Projects[0].Name
	}
	return Result{
		Project:      name,
		Entity:       name,
		Changed:      true,
		EventPayload: map[string]any{"tasks": removed},
	}, nil
}

func SwitchProject(b *store.Board, name string) (Result, error) {
	if b.ProjectIndex(name) < 0 {
		return Result{}, NotFoundError{Kind: "project", ID: name}
	}
	if b.Meta.LastProject == name {
		return Result{Project: name, Entity: name}, nil
	}
	from := b.Meta.LastProject
	b.Meta.LastProject = name
	return Result{
		Project:      name,
		Entity:       name,
		Changed:      true,
		EventPayload: map[string]any{"from": from},
	}, nil
}
