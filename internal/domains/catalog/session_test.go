package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magazine-catalog/internal/infrastructure/database"
	"magazine-catalog/internal/testutil"
)

// memoryCache is a JSON round-tripping stand-in for the redis cache.
type memoryCache struct {
	items   map[string][]byte
	gets    int
	fail    error
	delFail error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.gets++
	if c.fail != nil {
		return false, c.fail
	}
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.fail != nil {
		return c.fail
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	if c.delFail != nil {
		return c.delFail
	}
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *memoryCache) DeletePattern(context.Context, string) error { return nil }

func (c *memoryCache) Ping(context.Context) error { return c.fail }

func TestIdentityMap(t *testing.T) {
	m := newIdentityMap[Author]()
	built := 0
	build := func() *Author { built++; return &Author{id: 1, name: "Asha"} }

	first := m.resolve(1, build, nil)
	second := m.resolve(1, build, nil)
	assert.Same(t, first, second)
	assert.Equal(t, 1, built)
	assert.Equal(t, 1, m.len())

	refreshed := false
	m.resolve(1, build, func(*Author) { refreshed = true })
	assert.True(t, refreshed)

	m.evict(1)
	_, ok := m.get(1)
	assert.False(t, ok)

	m.put(2, &Author{id: 2})
	m.clear()
	assert.Zero(t, m.len())
}

func TestRowCacheServesFindMisses(t *testing.T) {
	gw := testutil.NewGateway(t)
	rows := newMemoryCache()
	ctx := context.Background()

	writer := NewSession(gw, WithRowCache(rows, time.Minute))
	asha, err := writer.CreateAuthor(ctx, "Asha")
	require.NoError(t, err)

	reader := NewSession(gw, WithRowCache(rows, time.Minute))
	found, err := reader.FindAuthor(ctx, asha.ID())
	require.NoError(t, err)
	assert.Equal(t, "Asha", found.Name())
	assert.Contains(t, rows.items, rowKey(entityAuthor, asha.ID()))

	// A row known only to the cache is not an entity: it is dropped and
	// the lookup fails.
	rows.items[rowKey(entityMagazine, 77)] = []byte(`{"id":77,"name":"Cached Mag","category":"Misc"}`)
	_, err = reader.FindMagazine(ctx, 77)
	assert.True(t, IsNotFound(err), "got %v", err)
	assert.NotContains(t, rows.items, rowKey(entityMagazine, 77))

	// Identity map hits never reach the cache.
	before := rows.gets
	_, err = reader.FindAuthor(ctx, asha.ID())
	require.NoError(t, err)
	assert.Equal(t, before, rows.gets)

	require.NoError(t, found.Delete(ctx))
	assert.NotContains(t, rows.items, rowKey(entityAuthor, asha.ID()))
}

func TestRowCacheInvalidatedOnUpdate(t *testing.T) {
	gw := testutil.NewGateway(t)
	rows := newMemoryCache()
	ctx := context.Background()

	s := NewSession(gw, WithRowCache(rows, time.Minute))
	asha, err := s.CreateAuthor(ctx, "Asha")
	require.NoError(t, err)
	mag, err := s.CreateMagazine(ctx, "Tech Weekly", "Tech")
	require.NoError(t, err)
	ar, err := s.CreateArticle(ctx, "Intro to Systems", "v1", asha, mag)
	require.NoError(t, err)

	_, err = NewSession(gw, WithRowCache(rows, time.Minute)).FindArticle(ctx, ar.ID())
	require.NoError(t, err)
	require.Contains(t, rows.items, rowKey(entityArticle, ar.ID()))

	require.NoError(t, ar.Update(ctx, "v2"))
	assert.NotContains(t, rows.items, rowKey(entityArticle, ar.ID()))

	reloaded, err := NewSession(gw, WithRowCache(rows, time.Minute)).FindArticle(ctx, ar.ID())
	require.NoError(t, err)
	assert.Equal(t, "v2", reloaded.Content())
}

func TestRowCacheFailureFallsBackToStore(t *testing.T) {
	gw := testutil.NewGateway(t)
	rows := newMemoryCache()
	ctx := context.Background()

	asha, err := NewSession(gw).CreateAuthor(ctx, "Asha")
	require.NoError(t, err)

	rows.fail = errors.New("redis down")
	found, err := NewSession(gw, WithRowCache(rows, time.Minute)).FindAuthor(ctx, asha.ID())
	require.NoError(t, err)
	assert.Equal(t, "Asha", found.Name())
}

func TestRowCacheInvalidationFailureFailsWrite(t *testing.T) {
	gw := testutil.NewGateway(t)
	rows := newMemoryCache()
	ctx := context.Background()
	fresh := func() *Session { return NewSession(gw, WithRowCache(rows, time.Minute)) }

	s := fresh()
	asha, err := s.CreateAuthor(ctx, "Asha")
	require.NoError(t, err)
	mag, err := s.CreateMagazine(ctx, "Tech Weekly", "Tech")
	require.NoError(t, err)
	ar, err := s.CreateArticle(ctx, "Intro to Systems", "v1", asha, mag)
	require.NoError(t, err)

	_, err = fresh().FindArticle(ctx, ar.ID())
	require.NoError(t, err)
	require.Contains(t, rows.items, rowKey(entityArticle, ar.ID()))

	rows.delFail = errors.New("redis timeout")

	err = ar.Update(ctx, "v2")
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.Equal(t, "v1", ar.Content())

	err = ar.Delete(ctx)
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.True(t, ar.IsPersisted())
	assert.Equal(t, 1, testutil.CountRows(t, gw, "articles"))

	require.NoError(t, mag.SetName("Tech Daily"))
	require.Error(t, mag.Save(ctx))
	assert.True(t, mag.Dirty())

	// Readers keep seeing what the store holds.
	cached, err := fresh().FindArticle(ctx, ar.ID())
	require.NoError(t, err)
	assert.Equal(t, "v1", cached.Content())

	rows.delFail = nil

	require.NoError(t, ar.Update(ctx, "v2"))
	reloaded, err := fresh().FindArticle(ctx, ar.ID())
	require.NoError(t, err)
	assert.Equal(t, "v2", reloaded.Content())

	require.NoError(t, ar.Delete(ctx))
	_, err = fresh().FindArticle(ctx, ar.ID())
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestRowCacheEntryWithoutRowIsDropped(t *testing.T) {
	gw := testutil.NewGateway(t)
	rows := newMemoryCache()
	ctx := context.Background()

	s := NewSession(gw, WithRowCache(rows, time.Minute))
	asha, err := s.CreateAuthor(ctx, "Asha")
	require.NoError(t, err)
	_, err = NewSession(gw, WithRowCache(rows, time.Minute)).FindAuthor(ctx, asha.ID())
	require.NoError(t, err)
	require.Contains(t, rows.items, rowKey(entityAuthor, asha.ID()))

	// The row goes away without the catalog knowing.
	_, err = gw.DB().Exec(`DELETE FROM authors WHERE id = $1`, asha.ID())
	require.NoError(t, err)

	_, err = NewSession(gw, WithRowCache(rows, time.Minute)).FindAuthor(ctx, asha.ID())
	assert.True(t, IsNotFound(err), "got %v", err)
	assert.NotContains(t, rows.items, rowKey(entityAuthor, asha.ID()))
}

func TestValidateParentUsesOwningSession(t *testing.T) {
	s := NewSession(nil)
	other := NewSession(nil)

	tests := []struct {
		name   string
		parent Parent
		ok     bool
	}{
		{"saved author", &Author{session: s, id: 1, name: "Asha"}, true},
		{"saved magazine", &Magazine{session: s, id: 1, name: "Tech Weekly", category: "Tech"}, true},
		{"unsaved", &Author{session: s, name: "Asha"}, false},
		{"deleted", &Magazine{session: s, id: 2, name: "Gone", category: "Tech", deleted: true}, false},
		{"other session", &Author{session: other, id: 1, name: "Asha"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateParent(s, "author", tt.parent)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsTypeError(err), "got %v", err)
		})
	}
}

func newMockSession(t *testing.T) (*Session, sqlmock.Sqlmock, *database.Gateway) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	gw := database.NewGateway(db, "sqlmock", zerolog.Nop())
	return NewSession(gw), mock, gw
}

func TestStorageErrorsPropagate(t *testing.T) {
	s, mock, gw := newMockSession(t)
	ctx := context.Background()
	boom := errors.New("connection reset")

	mock.ExpectQuery("SELECT id, name FROM authors").WithArgs(int64(3)).WillReturnError(boom)

	_, err := s.FindAuthor(ctx, 3)
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(err))

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO authors").WithArgs("Asha").WillReturnError(boom)
	mock.ExpectRollback()

	_, err = s.CreateAuthor(ctx, "Asha")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Stats{}, s.Stats())

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0, gw.Stats().InUse)
}

func TestUpdateNotAppliedWhenWriteFails(t *testing.T) {
	s, mock, _ := newMockSession(t)
	ctx := context.Background()

	ar := &Article{session: s, id: 5, title: "Intro to Systems", content: "old", authorID: 1, magazineID: 1}
	s.articles.put(5, ar)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE articles SET content").
		WithArgs("new", int64(5)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := ar.Update(ctx, "new")
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.Equal(t, "old", ar.Content())
	assert.True(t, ar.IsPersisted())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContributingAuthorsQuery(t *testing.T) {
	s, mock, _ := newMockSession(t)
	m := &Magazine{session: s, id: 9, name: "Tech Weekly", category: "Tech"}

	mock.ExpectQuery(`HAVING COUNT\(ar.id\) > \$2`).
		WithArgs(int64(9), ContributingThreshold).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Asha"))

	authors, err := m.ContributingAuthors(context.Background())
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "Asha", authors[0].Name())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"type", newTypeError(entityArticle, "author", "is required"), "TYPE_VALIDATION_ERROR", http.StatusBadRequest},
		{"range", ValidateTitle("Four"), "RANGE_VALIDATION_ERROR", http.StatusBadRequest},
		{"immutable", NewImmutableFieldError(entityArticle, "title"), "IMMUTABLE_FIELD", http.StatusUnprocessableEntity},
		{"not found", &NotFoundError{Entity: entityAuthor, ID: 1}, "NOT_FOUND", http.StatusNotFound},
		{"foreign key", &StorageError{Op: "delete", Entity: entityAuthor, Constraint: database.ConstraintForeignKey, Err: errors.New("fk")}, "REFERENCE_CONFLICT", http.StatusConflict},
		{"unique", &StorageError{Op: "insert", Entity: entityAuthor, Constraint: database.ConstraintUnique, Err: errors.New("dup")}, "DUPLICATE", http.StatusConflict},
		{"storage", &StorageError{Op: "find", Entity: entityAuthor, Err: errors.New("io")}, "STORAGE_ERROR", http.StatusInternalServerError},
		{"other", errors.New("x"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ToErrorCode(tt.err))
			assert.Equal(t, tt.status, ToHTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "author 4 not found", (&NotFoundError{Entity: "author", ID: 4}).Error())
	assert.Equal(t, "magazine of article 2 not found", (&NotFoundError{Entity: "magazine", ID: 2, Via: "article"}).Error())
	assert.Equal(t, "article title cannot be changed after construction", NewImmutableFieldError("article", "title").Error())
	assert.Equal(t, "range", KindRange.String())
}
