package emotion

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"moodboard/internal/canvas"
)

// Validation errors reported before any store call is made.
var (
	ErrNameRequired = errors.New("student name required")
	ErrDrawingEmpty = errors.New("drawing has no strokes")
	ErrNoBlobStore  = errors.New("image storage not configured")
)

var (
	submissionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moodboard_submissions_accepted_total",
		Help: "Check-ins persisted to both stores.",
	})
	submissionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moodboard_submissions_rejected_total",
		Help: "Check-ins rejected by input validation.",
	})
	submissionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moodboard_submissions_failed_total",
		Help: "Check-ins that failed during encode or store writes.",
	})
)

// Record is one persisted student check-in. Records are written once and
// never updated or deleted.
type Record struct {
	ID             string     `json:"id"`
	StudentName    string     `json:"student_name"`
	Emotion        string     `json:"emotion"`
	EmotionDisplay string     `json:"emotion_display"`
	ImagePath      string     `json:"image_path"`
	ImageURL       string     `json:"image_url"`
	Timestamp      *time.Time `json:"timestamp"`
}

// RecordStore persists submission metadata.
type RecordStore interface {
	Insert(ctx context.Context, rec Record) error
	ListAll(ctx context.Context) ([]Record, error)
}

// BlobStore persists encoded drawings under a caller-chosen key and returns
// a publicly retrievable URL.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service runs the submission and dashboard pipelines.
type Service struct {
	repo  RecordStore
	blobs BlobStore
	now   func() time.Time
}

// NewService creates a service backed by a record store and a blob store.
func NewService(repo RecordStore, blobs BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs, now: time.Now}
}

// StorageKey derives the blob key for a drawing from the student name and the
// captured submission time: drawings/{name}_{YYYYMMDD_HHMMSS}.jpg. Two
// submissions by the same name within one second collide; the last writer
// wins at that key.
func StorageKey(name string, ts time.Time) string {
	return fmt.Sprintf("drawings/%s_%s.jpg", name, ts.Format("20060102_150405"))
}

// Submit validates one check-in and persists the drawing blob followed by the
// metadata record. Validation failures return before any external call. The
// two writes are not transactional: a record insert failing after the blob
// upload leaves an orphaned blob behind, which is never reconciled.
func (s *Service) Submit(ctx context.Context, name, code string, drawing image.Image) (Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		submissionsRejected.Inc()
		return Record{}, ErrNameRequired
	}
	em, err := Parse(code)
	if err != nil {
		submissionsRejected.Inc()
		return Record{}, err
	}
	if drawing == nil || !canvas.HasInk(drawing) {
		submissionsRejected.Inc()
		return Record{}, ErrDrawingEmpty
	}
	if s.blobs == nil {
		submissionsRejected.Inc()
		return Record{}, ErrNoBlobStore
	}

	// Single time capture: the blob key and the record timestamp must agree.
	ts := s.now()

	flat := canvas.Flatten(drawing)
	data, err := canvas.EncodeJPEG(flat)
	if err != nil {
		submissionsFailed.Inc()
		return Record{}, fmt.Errorf("encode drawing: %w", err)
	}

	key := StorageKey(name, ts)
	url, err := s.blobs.Put(ctx, key, data, "image/jpeg")
	if err != nil {
		submissionsFailed.Inc()
		return Record{}, fmt.Errorf("upload drawing: %w", err)
	}

	rec := Record{
		ID:             uuid.NewString(),
		StudentName:    name,
		Emotion:        string(em),
		EmotionDisplay: em.Label(),
		ImagePath:      key,
		ImageURL:       url,
		Timestamp:      &ts,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		submissionsFailed.Inc()
		return Record{}, fmt.Errorf("save record: %w", err)
	}

	submissionsAccepted.Inc()
	return rec, nil
}
