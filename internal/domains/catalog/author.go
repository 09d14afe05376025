package catalog

import (
	"context"
)

// Author writes articles. Both id and name are fixed once set.
type Author struct {
	session *Session
	id      int64
	name    string
	deleted bool
}

// NewAuthor validates name and returns an unsaved author.
func (s *Session) NewAuthor(name string) (*Author, error) {
	if err := ValidateAuthorName(name); err != nil {
		return nil, err
	}
	return &Author{session: s, name: name}, nil
}

// CreateAuthor is NewAuthor followed by Save.
func (s *Session) CreateAuthor(ctx context.Context, name string) (*Author, error) {
	a, err := s.NewAuthor(name)
	if err != nil {
		return nil, err
	}
	if err := a.Save(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// FindAuthor returns the session's instance for id, loading it if needed.
func (s *Session) FindAuthor(ctx context.Context, id int64) (*Author, error) {
	if a, ok := s.authors.get(id); ok {
		return a, nil
	}

	cached, hit, err := cachedRow[authorRow](ctx, s, entityAuthor, id, authorExists)
	if err != nil {
		return nil, err
	}
	if hit {
		return s.hydrateAuthor(cached), nil
	}

	row, found, err := queryRow(ctx, s, selectAuthorByID, scanAuthor, id)
	if err != nil {
		return nil, storageError("find", entityAuthor, err)
	}
	if !found {
		return nil, &NotFoundError{Entity: entityAuthor, ID: id}
	}

	s.cacheRow(ctx, entityAuthor, id, row)
	return s.hydrateAuthor(row), nil
}

// Authors lists every stored author.
func (s *Session) Authors(ctx context.Context) ([]*Author, error) {
	rows, err := queryRows(ctx, s, selectAuthors, scanAuthor)
	if err != nil {
		return nil, storageError("list", entityAuthor, err)
	}
	return hydrateAll(rows, s.hydrateAuthor), nil
}

func (a *Author) ID() int64 { return a.id }

func (a *Author) Name() string { return a.name }

func (a *Author) owner() *Session { return a.session }

// IsPersisted reports whether the author has a live row.
func (a *Author) IsPersisted() bool {
	return a != nil && a.id != 0 && !a.deleted
}

// SetName always fails: an author's name is fixed at construction.
func (a *Author) SetName(string) error {
	return &ImmutableFieldError{Entity: entityAuthor, Field: "name"}
}

// Save inserts an unsaved author and registers it. Saving a persisted
// author is a no-op since none of its fields can change.
func (a *Author) Save(ctx context.Context) error {
	if a.deleted {
		return &NotFoundError{Entity: entityAuthor, ID: a.id}
	}
	if a.id != 0 {
		return nil
	}

	id, err := a.session.store.Insert(ctx, insertAuthor, a.name)
	if err != nil {
		return storageError("insert", entityAuthor, err)
	}

	a.id = id
	a.session.authors.put(id, a)
	a.session.log.Debug().Int64("author_id", id).Msg("author saved")
	return nil
}

// Articles returns the author's articles in creation order.
func (a *Author) Articles(ctx context.Context) ([]*Article, error) {
	if err := a.requirePersisted(); err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, a.session, selectArticlesByAuthor, scanArticle, a.id)
	if err != nil {
		return nil, storageError("list articles of", entityAuthor, err)
	}
	return hydrateAll(rows, a.session.hydrateArticle), nil
}

// Magazines returns the distinct magazines the author has written for.
func (a *Author) Magazines(ctx context.Context) ([]*Magazine, error) {
	if err := a.requirePersisted(); err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, a.session, selectMagazinesByAuthor, scanMagazine, a.id)
	if err != nil {
		return nil, storageError("list magazines of", entityAuthor, err)
	}
	return hydrateAll(rows, a.session.hydrateMagazine), nil
}

// Delete removes the row and evicts the instance. Authors that still
// have articles are protected by the foreign key and fail with a
// StorageError.
func (a *Author) Delete(ctx context.Context) error {
	if err := a.requirePersisted(); err != nil {
		return err
	}
	if err := a.session.invalidateRow(ctx, "delete", entityAuthor, a.id); err != nil {
		return err
	}

	err := a.session.execByID(ctx, "delete", entityAuthor, a.id, deleteAuthor, a.id)
	if err != nil && !IsNotFound(err) {
		return err
	}

	a.detach()
	if err != nil {
		return err
	}
	a.session.log.Debug().Int64("author_id", a.id).Msg("author deleted")
	return a.session.invalidateRow(ctx, "delete", entityAuthor, a.id)
}

func (a *Author) detach() {
	a.session.authors.evict(a.id)
	a.deleted = true
}

func (a *Author) requirePersisted() error {
	if !a.IsPersisted() {
		return &NotFoundError{Entity: entityAuthor, ID: a.id}
	}
	return nil
}
