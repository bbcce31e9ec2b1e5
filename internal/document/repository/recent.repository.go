package repository

import (
	"database/sql"
	"time"

	"manjaword/pkg/logger"
	"manjaword/store"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// RecentRepository keeps the most recently used document paths. The
// statements use $n placeholders, which both lib/pq and modernc sqlite bind
// positionally.
type RecentRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewRecentRepository(db *sql.DB) *RecentRepository {
	return &RecentRepository{DB: db, now: time.Now}
}

func (r *RecentRepository) Touch(path, kind string) error {
	_, err := r.DB.Exec(`INSERT INTO recent_documents (path, kind, used_at) VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE SET kind = excluded.kind, used_at = excluded.used_at`,
		path, kind, r.now().UTC())
	if err != nil {
		logger.Sugar.Errorf("Failed to record recent document %s: %v", path, err)
	}
	return err
}

func (r *RecentRepository) List(limit int) ([]store.RecentDocument, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	rows, err := r.DB.Query(`SELECT path, kind, used_at FROM recent_documents ORDER BY used_at DESC LIMIT $1`, limit)
	if err != nil {
		logger.Sugar.Errorf("Failed to list recent documents: %v", err)
		return nil, err
	}
	defer rows.Close()

	docs := []store.RecentDocument{}
	for rows.Next() {
		var doc store.RecentDocument
		if err := rows.Scan(&doc.Path, &doc.Kind, &doc.UsedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan recent document: %v", err)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *RecentRepository) Remove(path string) error {
	_, err := r.DB.Exec(`DELETE FROM recent_documents WHERE path = $1`, path)
	if err != nil {
		logger.Sugar.Errorf("Failed to remove recent document %s: %v", path, err)
	}
	return err
}
