package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mediamorph/mediamorph/internal/model"
)

var (
	ErrVideoNotFound = errors.New("video not found")
)

type VideoRepository interface {
	Create(video *model.Video) error
	All() ([]*model.Video, error)
	ByID(id string) (*model.Video, error)
	ByPublicID(publicID string) (*model.Video, error)
	UpdateEncoding(publicID, compressedSize string, duration float64, updatedAt time.Time) error
}

type videoRepository struct {
	db *sqlx.DB
}

func NewVideoRepository(db *sqlx.DB) *videoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(video *model.Video) error {
	query := `INSERT INTO videos (id, title, description, public_id, original_size, compressed_size, duration, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		video.ID,
		video.Title,
		video.Description,
		video.PublicID,
		video.OriginalSize,
		video.CompressedSize,
		video.Duration,
		video.CreatedAt,
		video.UpdatedAt,
	)

	return err
}

// All returns every video, most recently created first.
func (r *videoRepository) All() ([]*model.Video, error) {
	var videos []*model.Video
	query := `SELECT * FROM videos ORDER BY created_at DESC`

	err := r.db.Select(&videos, query)
	if err != nil {
		return nil, err
	}

	return videos, nil
}

func (r *videoRepository) ByID(id string) (*model.Video, error) {
	video := &model.Video{}
	query := `SELECT * FROM videos WHERE id = $1`

	err := r.db.Get(video, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrVideoNotFound
	}

	return video, err
}

func (r *videoRepository) ByPublicID(publicID string) (*model.Video, error) {
	video := &model.Video{}
	query := `SELECT * FROM videos WHERE public_id = $1`

	err := r.db.Get(video, query, publicID)
	if err == sql.ErrNoRows {
		return nil, ErrVideoNotFound
	}

	return video, err
}

func (r *videoRepository) UpdateEncoding(publicID, compressedSize string, duration float64, updatedAt time.Time) error {
	query := `UPDATE videos SET compressed_size = $1, duration = $2, updated_at = $3 WHERE public_id = $4`

	res, err := r.db.Exec(query, compressedSize, duration, updatedAt, publicID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVideoNotFound
	}

	return nil
}
