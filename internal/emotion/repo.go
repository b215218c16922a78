package emotion

import (
	"context"
	"database/sql"
)

// Repository persists check-in records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one record.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO student_emotions (id, student_name, emotion, emotion_display, image_path, image_url, ts)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rec.ID, rec.StudentName, rec.Emotion, rec.EmotionDisplay, rec.ImagePath, rec.ImageURL, rec.Timestamp)
	return err
}

// ListAll returns every record, most recent first. The dashboard reads the
// whole table on each load; no pagination or time window is applied.
func (r *Repository) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_name, emotion, emotion_display, image_path, image_url, ts
		FROM student_emotions
		ORDER BY ts DESC NULLS LAST
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var ts sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.StudentName, &rec.Emotion, &rec.EmotionDisplay, &rec.ImagePath, &rec.ImageURL, &ts); err != nil {
			return nil, err
		}
		if ts.Valid {
			t := ts.Time
			rec.Timestamp = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
