package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

//go:embed schema.sql
var schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplemedia.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// EnsureSchema creates the media tables when they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return r.handlePostgresError("ensure schema", err)
	}
	return nil
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return simplemedia.ErrMediaNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) StoreLocalMedia(ctx context.Context, media *simplemedia.LocalMedia) error {
	query := `
		INSERT INTO local_media_repository (
			media_id, media_type, media_length, upload_name, user_id, created_at, quarantined
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (media_id) DO UPDATE SET
			media_type = EXCLUDED.media_type,
			media_length = EXCLUDED.media_length,
			upload_name = EXCLUDED.upload_name,
			quarantined = EXCLUDED.quarantined`

	_, err := r.db.Exec(ctx, query,
		media.MediaID, media.MediaType, media.MediaLength, media.UploadName,
		media.UserID, media.CreatedAt, media.Quarantined)
	if err != nil {
		return r.handlePostgresError("store local media", err)
	}
	return nil
}

func (r *Repository) GetLocalMedia(ctx context.Context, mediaID string) (*simplemedia.LocalMedia, error) {
	query := `
		SELECT media_id, media_type, media_length, upload_name, user_id, created_at, quarantined
		FROM local_media_repository
		WHERE media_id = $1`

	var m simplemedia.LocalMedia
	err := r.db.QueryRow(ctx, query, mediaID).Scan(
		&m.MediaID, &m.MediaType, &m.MediaLength, &m.UploadName,
		&m.UserID, &m.CreatedAt, &m.Quarantined)
	if err != nil {
		return nil, r.handlePostgresError("get local media", err)
	}
	return &m, nil
}

func (r *Repository) StoreCachedRemoteMedia(ctx context.Context, media *simplemedia.RemoteMedia) error {
	query := `
		INSERT INTO remote_media_cache (
			media_origin, media_id, filesystem_id, media_type, media_length,
			upload_name, created_at, quarantined
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (media_origin, media_id) DO UPDATE SET
			filesystem_id = EXCLUDED.filesystem_id,
			media_type = EXCLUDED.media_type,
			media_length = EXCLUDED.media_length,
			upload_name = EXCLUDED.upload_name`

	_, err := r.db.Exec(ctx, query,
		media.ServerName, media.MediaID, media.FilesystemID, media.MediaType,
		media.MediaLength, media.UploadName, media.CreatedAt, media.Quarantined)
	if err != nil {
		return r.handlePostgresError("store cached remote media", err)
	}
	return nil
}

func (r *Repository) GetCachedRemoteMedia(ctx context.Context, serverName, mediaID string) (*simplemedia.RemoteMedia, error) {
	query := `
		SELECT media_origin, media_id, filesystem_id, media_type, media_length,
			upload_name, created_at, quarantined
		FROM remote_media_cache
		WHERE media_origin = $1 AND media_id = $2`

	var m simplemedia.RemoteMedia
	err := r.db.QueryRow(ctx, query, serverName, mediaID).Scan(
		&m.ServerName, &m.MediaID, &m.FilesystemID, &m.MediaType,
		&m.MediaLength, &m.UploadName, &m.CreatedAt, &m.Quarantined)
	if err != nil {
		return nil, r.handlePostgresError("get cached remote media", err)
	}
	return &m, nil
}
