package catalog

import (
	"context"
)

// Magazine publishes articles. Name and category may change; changes
// are held in memory until Save.
type Magazine struct {
	session  *Session
	id       int64
	name     string
	category string
	dirty    bool
	deleted  bool
}

func (s *Session) NewMagazine(name, category string) (*Magazine, error) {
	if err := ValidateMagazineName(name); err != nil {
		return nil, err
	}
	if err := ValidateCategory(category); err != nil {
		return nil, err
	}
	return &Magazine{session: s, name: name, category: category}, nil
}

func (s *Session) CreateMagazine(ctx context.Context, name, category string) (*Magazine, error) {
	m, err := s.NewMagazine(name, category)
	if err != nil {
		return nil, err
	}
	if err := m.Save(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Session) FindMagazine(ctx context.Context, id int64) (*Magazine, error) {
	if m, ok := s.magazines.get(id); ok {
		return m, nil
	}

	cached, hit, err := cachedRow[magazineRow](ctx, s, entityMagazine, id, magazineExists)
	if err != nil {
		return nil, err
	}
	if hit {
		return s.hydrateMagazine(cached), nil
	}

	row, found, err := queryRow(ctx, s, selectMagazineByID, scanMagazine, id)
	if err != nil {
		return nil, storageError("find", entityMagazine, err)
	}
	if !found {
		return nil, &NotFoundError{Entity: entityMagazine, ID: id}
	}

	s.cacheRow(ctx, entityMagazine, id, row)
	return s.hydrateMagazine(row), nil
}

// FindMagazineByName returns the oldest magazine with the given name.
// Names are not unique.
func (s *Session) FindMagazineByName(ctx context.Context, name string) (*Magazine, error) {
	row, found, err := queryRow(ctx, s, selectMagazineByName, scanMagazine, name)
	if err != nil {
		return nil, storageError("find", entityMagazine, err)
	}
	if !found {
		return nil, &NotFoundError{Entity: entityMagazine}
	}
	return s.hydrateMagazine(row), nil
}

func (s *Session) Magazines(ctx context.Context) ([]*Magazine, error) {
	rows, err := queryRows(ctx, s, selectMagazines, scanMagazine)
	if err != nil {
		return nil, storageError("list", entityMagazine, err)
	}
	return hydrateAll(rows, s.hydrateMagazine), nil
}

func (m *Magazine) ID() int64 { return m.id }

func (m *Magazine) Name() string { return m.name }

func (m *Magazine) Category() string { return m.category }

func (m *Magazine) owner() *Session { return m.session }

// Dirty reports whether setter changes are waiting for Save.
func (m *Magazine) Dirty() bool { return m.dirty }

func (m *Magazine) IsPersisted() bool {
	return m != nil && m.id != 0 && !m.deleted
}

// SetName validates and assigns a new name. The old name is kept on error.
func (m *Magazine) SetName(name string) error {
	if err := ValidateMagazineName(name); err != nil {
		return err
	}
	m.name = name
	m.dirty = true
	return nil
}

// SetCategory validates and assigns a new category. The old category is kept on error.
func (m *Magazine) SetCategory(category string) error {
	if err := ValidateCategory(category); err != nil {
		return err
	}
	m.category = category
	m.dirty = true
	return nil
}

// Save inserts an unsaved magazine, or writes pending setter changes of
// a persisted one.
func (m *Magazine) Save(ctx context.Context) error {
	if m.deleted {
		return &NotFoundError{Entity: entityMagazine, ID: m.id}
	}

	if m.id == 0 {
		id, err := m.session.store.Insert(ctx, insertMagazine, m.name, m.category)
		if err != nil {
			return storageError("insert", entityMagazine, err)
		}
		m.id = id
		m.dirty = false
		m.session.magazines.put(id, m)
		m.session.log.Debug().Int64("magazine_id", id).Msg("magazine saved")
		return nil
	}

	if !m.dirty {
		return nil
	}
	if err := m.session.invalidateRow(ctx, "update", entityMagazine, m.id); err != nil {
		return err
	}

	err := m.session.execByID(ctx, "update", entityMagazine, m.id, updateMagazine, m.name, m.category, m.id)
	if IsNotFound(err) {
		m.detach()
	}
	if err != nil {
		return err
	}

	m.dirty = false
	m.session.log.Debug().Int64("magazine_id", m.id).Msg("magazine updated")
	return m.session.invalidateRow(ctx, "update", entityMagazine, m.id)
}

// Articles returns the magazine's articles in creation order.
func (m *Magazine) Articles(ctx context.Context) ([]*Article, error) {
	if err := m.requirePersisted(); err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, m.session, selectArticlesByMagazine, scanArticle, m.id)
	if err != nil {
		return nil, storageError("list articles of", entityMagazine, err)
	}
	return hydrateAll(rows, m.session.hydrateArticle), nil
}

// Contributors returns the distinct authors with at least one article
// in the magazine.
func (m *Magazine) Contributors(ctx context.Context) ([]*Author, error) {
	if err := m.requirePersisted(); err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, m.session, selectContributors, scanAuthor, m.id)
	if err != nil {
		return nil, storageError("list contributors of", entityMagazine, err)
	}
	return hydrateAll(rows, m.session.hydrateAuthor), nil
}

// ContributingAuthors returns the authors with more than
// ContributingThreshold articles in the magazine, or nil when no
// author qualifies.
func (m *Magazine) ContributingAuthors(ctx context.Context) ([]*Author, error) {
	if err := m.requirePersisted(); err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, m.session, selectContributingAuthors, scanAuthor, m.id, ContributingThreshold)
	if err != nil {
		return nil, storageError("list contributing authors of", entityMagazine, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return hydrateAll(rows, m.session.hydrateAuthor), nil
}

// ArticleTitles returns the titles of the magazine's articles in creation
// order. ok is false when the magazine has no articles at all.
func (m *Magazine) ArticleTitles(ctx context.Context) (titles []string, ok bool, err error) {
	if err := m.requirePersisted(); err != nil {
		return nil, false, err
	}
	titles, err = queryRows(ctx, m.session, selectTitlesByMagazine, scanTitle, m.id)
	if err != nil {
		return nil, false, storageError("list article titles of", entityMagazine, err)
	}
	if len(titles) == 0 {
		return nil, false, nil
	}
	return titles, true, nil
}

// Delete removes the row and evicts the instance. A magazine that still
// has articles fails with a foreign key StorageError.
func (m *Magazine) Delete(ctx context.Context) error {
	if err := m.requirePersisted(); err != nil {
		return err
	}
	if err := m.session.invalidateRow(ctx, "delete", entityMagazine, m.id); err != nil {
		return err
	}

	err := m.session.execByID(ctx, "delete", entityMagazine, m.id, deleteMagazine, m.id)
	if err != nil && !IsNotFound(err) {
		return err
	}

	m.detach()
	if err != nil {
		return err
	}
	m.session.log.Debug().Int64("magazine_id", m.id).Msg("magazine deleted")
	return m.session.invalidateRow(ctx, "delete", entityMagazine, m.id)
}

// detach evicts a magazine whose row no longer exists.
func (m *Magazine) detach() {
	m.session.magazines.evict(m.id)
	m.deleted = true
}

func (m *Magazine) requirePersisted() error {
	if !m.IsPersisted() {
		return &NotFoundError{Entity: entityMagazine, ID: m.id}
	}
	return nil
}
