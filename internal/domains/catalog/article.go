package catalog

import (
	"context"
)

// Article belongs to one author and one magazine. Only its content can
// change after construction, and only through Update.
type Article struct {
	session    *Session
	id         int64
	title      string
	content    string
	authorID   int64
	magazineID int64
	deleted    bool
}

// NewArticle validates its arguments and returns an unsaved article.
// author and magazine must be saved entities of this session.
func (s *Session) NewArticle(title, content string, author *Author, magazine *Magazine) (*Article, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := ValidateContent(content); err != nil {
		return nil, err
	}
	if author == nil {
		return nil, newTypeError(entityArticle, "author", "is required")
	}
	if err := validateParent(s, "author", author); err != nil {
		return nil, err
	}
	if magazine == nil {
		return nil, newTypeError(entityArticle, "magazine", "is required")
	}
	if err := validateParent(s, "magazine", magazine); err != nil {
		return nil, err
	}

	return &Article{
		session:    s,
		title:      title,
		content:    content,
		authorID:   author.id,
		magazineID: magazine.id,
	}, nil
}

func (s *Session) CreateArticle(ctx context.Context, title, content string, author *Author, magazine *Magazine) (*Article, error) {
	a, err := s.NewArticle(title, content, author, magazine)
	if err != nil {
		return nil, err
	}
	if err := a.Save(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Session) FindArticle(ctx context.Context, id int64) (*Article, error) {
	if a, ok := s.articles.get(id); ok {
		return a, nil
	}

	cached, hit, err := cachedRow[articleRow](ctx, s, entityArticle, id, articleExists)
	if err != nil {
		return nil, err
	}
	if hit {
		return s.hydrateArticle(cached), nil
	}

	row, found, err := queryRow(ctx, s, selectArticleByID, scanArticle, id)
	if err != nil {
		return nil, storageError("find", entityArticle, err)
	}
	if !found {
		return nil, &NotFoundError{Entity: entityArticle, ID: id}
	}

	s.cacheRow(ctx, entityArticle, id, row)
	return s.hydrateArticle(row), nil
}

func (s *Session) Articles(ctx context.Context) ([]*Article, error) {
	rows, err := queryRows(ctx, s, selectArticles, scanArticle)
	if err != nil {
		return nil, storageError("list", entityArticle, err)
	}
	return hydrateAll(rows, s.hydrateArticle), nil
}

func (a *Article) ID() int64         { return a.id }
func (a *Article) Title() string     { return a.title }
func (a *Article) Content() string   { return a.content }
func (a *Article) AuthorID() int64   { return a.authorID }
func (a *Article) MagazineID() int64 { return a.magazineID }

func (a *Article) IsPersisted() bool {
	return a != nil && a.id != 0 && !a.deleted
}

// SetTitle always fails: titles are fixed at construction.
func (a *Article) SetTitle(string) error {
	return &ImmutableFieldError{Entity: entityArticle, Field: "title"}
}

// SetAuthor always fails: an article never changes author.
func (a *Article) SetAuthor(*Author) error {
	return &ImmutableFieldError{Entity: entityArticle, Field: "author_id"}
}

// SetMagazine always fails: an article never moves between magazines.
func (a *Article) SetMagazine(*Magazine) error {
	return &ImmutableFieldError{Entity: entityArticle, Field: "magazine_id"}
}

// Save inserts an unsaved article and registers it. Content changes of
// a persisted article go through Update, so saving one is a no-op.
func (a *Article) Save(ctx context.Context) error {
	if a.deleted {
		return &NotFoundError{Entity: entityArticle, ID: a.id}
	}
	if a.id != 0 {
		return nil
	}

	id, err := a.session.store.Insert(ctx, insertArticle, a.title, a.content, a.authorID, a.magazineID)
	if err != nil {
		return storageError("insert", entityArticle, err)
	}

	a.id = id
	a.session.articles.put(id, a)
	a.session.log.Debug().
		Int64("article_id", id).
		Int64("author_id", a.authorID).
		Int64("magazine_id", a.magazineID).
		Msg("article saved")
	return nil
}

// Update replaces the content. A persisted article is written first and
// only changed in memory once the write committed.
func (a *Article) Update(ctx context.Context, content string) error {
	if err := ValidateContent(content); err != nil {
		return err
	}
	if a.deleted {
		return &NotFoundError{Entity: entityArticle, ID: a.id}
	}
	if a.id == 0 {
		a.content = content
		return nil
	}
	if err := a.session.invalidateRow(ctx, "update", entityArticle, a.id); err != nil {
		return err
	}

	err := a.session.execByID(ctx, "update", entityArticle, a.id, updateArticle, content, a.id)
	if IsNotFound(err) {
		a.detach()
	}
	if err != nil {
		return err
	}

	a.content = content
	a.session.log.Debug().Int64("article_id", a.id).Msg("article updated")
	// A reader may have cached the old row while the write was in flight.
	return a.session.invalidateRow(ctx, "update", entityArticle, a.id)
}

// Author loads the article's author through the stored row, not the
// in-memory foreign key.
func (a *Article) Author(ctx context.Context) (*Author, error) {
	if err := a.requirePersisted(); err != nil {
		return nil, err
	}
	row, found, err := queryRow(ctx, a.session, selectAuthorOfArticle, scanAuthor, a.id)
	if err != nil {
		return nil, storageError("find author of", entityArticle, err)
	}
	if !found {
		return nil, &NotFoundError{Entity: entityAuthor, ID: a.id, Via: entityArticle}
	}
	return a.session.hydrateAuthor(row), nil
}

// Magazine loads the article's magazine through the stored row.
func (a *Article) Magazine(ctx context.Context) (*Magazine, error) {
	if err := a.requirePersisted(); err != nil {
		return nil, err
	}
	row, found, err := queryRow(ctx, a.session, selectMagazineOfArticle, scanMagazine, a.id)
	if err != nil {
		return nil, storageError("find magazine of", entityArticle, err)
	}
	if !found {
		return nil, &NotFoundError{Entity: entityMagazine, ID: a.id, Via: entityArticle}
	}
	return a.session.hydrateMagazine(row), nil
}

// Delete removes the row and evicts the instance.
func (a *Article) Delete(ctx context.Context) error {
	if err := a.requirePersisted(); err != nil {
		return err
	}
	if err := a.session.invalidateRow(ctx, "delete", entityArticle, a.id); err != nil {
		return err
	}

	err := a.session.execByID(ctx, "delete", entityArticle, a.id, deleteArticle, a.id)
	if err != nil && !IsNotFound(err) {
		return err
	}

	a.detach()
	if err != nil {
		return err
	}
	a.session.log.Debug().Int64("article_id", a.id).Msg("article deleted")
	return a.session.invalidateRow(ctx, "delete", entityArticle, a.id)
}

func (a *Article) detach() {
	a.session.articles.evict(a.id)
	a.deleted = true
}

func (a *Article) requirePersisted() error {
	if !a.IsPersisted() {
		return &NotFoundError{Entity: entityArticle, ID: a.id}
	}
	return nil
}
