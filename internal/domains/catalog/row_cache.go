package catalog

import (
	"context"
	"fmt"
)

// Row cache keys: catalog:<entity>:<id>.
func rowKey(entity string, id int64) string {
	return fmt.Sprintf("catalog:%s:%d", entity, id)
}

// cachedRow loads a row from the row cache. A hit is only served once the
// store confirms the id still has a row; otherwise the entry is dropped
// and the lookup fails with NotFoundError. Cache read failures count as
// misses.
func cachedRow[R any](ctx context.Context, s *Session, entity string, id int64, existsQuery string) (row R, hit bool, err error) {
	if s.rows == nil {
		return row, false, nil
	}

	found, err := s.rows.Get(ctx, rowKey(entity, id), &row)
	if err != nil {
		s.log.Warn().Err(err).Str("entity", entity).Int64("id", id).Msg("row cache read failed")
		return row, false, nil
	}
	if !found {
		return row, false, nil
	}

	_, exists, err := queryRow(ctx, s, existsQuery, scanExists, id)
	if err != nil {
		return row, false, storageError("find", entity, err)
	}
	if !exists {
		if err := s.rows.Delete(ctx, rowKey(entity, id)); err != nil {
			s.log.Warn().Err(err).Str("entity", entity).Int64("id", id).Msg("stale row cache entry kept")
		}
		return row, false, &NotFoundError{Entity: entity, ID: id}
	}
	return row, true, nil
}

func (s *Session) cacheRow(ctx context.Context, entity string, id int64, row any) {
	if s.rows == nil {
		return
	}
	if err := s.rows.Set(ctx, rowKey(entity, id), row, s.rowTTL); err != nil {
		s.log.Warn().Err(err).Str("entity", entity).Int64("id", id).Msg("row cache write failed")
	}
}

// invalidateRow drops the cached row for id. Writes call it before and
// after touching the store; a failure is a StorageError because the
// entry would outlive the write.
func (s *Session) invalidateRow(ctx context.Context, op, entity string, id int64) error {
	if s.rows == nil {
		return nil
	}
	if err := s.rows.Delete(ctx, rowKey(entity, id)); err != nil {
		return &StorageError{Op: op, Entity: entity, Err: fmt.Errorf("failed to invalidate cached row: %w", err)}
	}
	return nil
}
