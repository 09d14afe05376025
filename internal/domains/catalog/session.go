// Package catalog maps authors, magazines and articles onto their tables.
//
// All entities are created, loaded and traversed through a Session, which
// owns one identity map per entity type: within a session a given id is
// represented by exactly one pointer. A Session is a unit of work for a
// single goroutine; create one per request or per process and call Clear
// to drop what it has cached.
package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"magazine-catalog/internal/infrastructure/database"
	"magazine-catalog/pkg/cache"
)

const (
	entityAuthor   = "author"
	entityMagazine = "magazine"
	entityArticle  = "article"
)

// Store is the storage gateway the catalog runs on.
// *database.Gateway implements it.
type Store interface {
	// WithConn runs fn on one connection and releases it afterwards.
	WithConn(ctx context.Context, fn func(database.Querier) error) error
	// WithTx runs fn in a committed transaction on one connection.
	WithTx(ctx context.Context, fn func(database.Querier) error) error
	// Insert runs an INSERT ... RETURNING id and returns the new id.
	Insert(ctx context.Context, query string, args ...any) (int64, error)
}

var _ Store = (*database.Gateway)(nil)

type Session struct {
	id    uuid.UUID
	store Store
	log   zerolog.Logger

	rows   cache.Cache
	rowTTL time.Duration

	authors   *identityMap[Author]
	magazines *identityMap[Magazine]
	articles  *identityMap[Article]
}

type Option func(*Session)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithRowCache adds a second-level cache of rows, consulted by the Find
// methods when the identity map has no entry.
func WithRowCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Session) {
		s.rows = c
		s.rowTTL = ttl
	}
}

func NewSession(store Store, opts ...Option) *Session {
	s := &Session{
		id:        uuid.New(),
		store:     store,
		log:       zerolog.Nop(),
		authors:   newIdentityMap[Author](),
		magazines: newIdentityMap[Magazine](),
		articles:  newIdentityMap[Article](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session", s.id.String()).Logger()
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

// Clear empties every identity map. Instances handed out before the call
// stay usable but are no longer returned by lookups.
func (s *Session) Clear() {
	s.authors.clear()
	s.magazines.clear()
	s.articles.clear()
	s.log.Debug().Msg("identity maps cleared")
}

// Stats counts the instances currently held by the identity maps.
type Stats struct {
	Authors   int `json:"authors"`
	Magazines int `json:"magazines"`
	Articles  int `json:"articles"`
}

func (s *Session) Stats() Stats {
	return Stats{
		Authors:   s.authors.len(),
		Magazines: s.magazines.len(),
		Articles:  s.articles.len(),
	}
}

// ---- hydration ----

func (s *Session) hydrateAuthor(r authorRow) *Author {
	return s.authors.resolve(r.ID, func() *Author {
		return &Author{session: s, id: r.ID, name: r.Name}
	}, nil)
}

func (s *Session) hydrateMagazine(r magazineRow) *Magazine {
	return s.magazines.resolve(r.ID, func() *Magazine {
		return &Magazine{session: s, id: r.ID, name: r.Name, category: r.Category}
	}, func(m *Magazine) {
		// Unsaved setter changes win over the stored row.
		if !m.dirty {
			m.name = r.Name
			m.category = r.Category
		}
	})
}

func (s *Session) hydrateArticle(r articleRow) *Article {
	return s.articles.resolve(r.ID, func() *Article {
		return &Article{
			session:    s,
			id:         r.ID,
			title:      r.Title,
			content:    r.Content,
			authorID:   r.AuthorID,
			magazineID: r.MagazineID,
		}
	}, func(a *Article) {
		a.content = r.Content
	})
}

func hydrateAll[R any, T any](rows []R, hydrate func(R) *T) []*T {
	out := make([]*T, 0, len(rows))
	for _, r := range rows {
		out = append(out, hydrate(r))
	}
	return out
}

// ---- store access ----

type rowScanner interface {
	Scan(dest ...any) error
}

// queryRows runs a read on one connection and scans every row.
func queryRows[R any](ctx context.Context, s *Session, query string, scan func(rowScanner) (R, error), args ...any) ([]R, error) {
	var out []R
	err := s.store.WithConn(ctx, func(q database.Querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scan(rows)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}

// queryRow runs a single-row read. found is false when nothing matched.
func queryRow[R any](ctx context.Context, s *Session, query string, scan func(rowScanner) (R, error), args ...any) (row R, found bool, err error) {
	err = s.store.WithConn(ctx, func(q database.Querier) error {
		var scanErr error
		row, scanErr = scan(q.QueryRowContext(ctx, query, args...))
		return scanErr
	})
	if database.IsNoRows(err) {
		return row, false, nil
	}
	return row, err == nil, err
}

// execByID runs a single-row write in its own transaction. A statement
// that touches no row yields a NotFoundError.
func (s *Session) execByID(ctx context.Context, op, entity string, id int64, query string, args ...any) error {
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		res, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		return requireAffected(res, entity, id)
	})
	if err != nil {
		return storageError(op, entity, err)
	}
	return nil
}

func requireAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

// storageError wraps a gateway failure. Catalog errors pass through.
func storageError(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsValidationError(err) {
		return err
	}
	return &StorageError{Op: op, Entity: entity, Constraint: database.Classify(err), Err: err}
}
