// server/social/repository.go
package social

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ViniZap4/folio-server/domain"
)

const (
	queryInsertUser  = `INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`
	queryUserByEmail = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

	queryListComments = `SELECT c.id, c.post_slug, c.content, c.user_id, c.author_name, c.created_at, c.updated_at, u.name
		FROM comments c LEFT JOIN users u ON u.id = c.user_id
		WHERE c.post_slug = $1
		ORDER BY c.created_at DESC`

	queryInsertComment = `INSERT INTO comments (id, post_slug, content, user_id, author_name, ip_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	queryCommentByID   = `SELECT id, post_slug, content, user_id, author_name, created_at, updated_at FROM comments WHERE id = $1`
	queryUpdateComment = `UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3`
	queryDeleteComment = `DELETE FROM comments WHERE id = $1`

	queryDeleteLike  = `DELETE FROM likes WHERE post_slug = $1 AND user_id = $2`
	queryInsertLike  = `INSERT INTO likes (id, post_slug, user_id, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (post_slug, user_id) DO NOTHING`
	queryCountLikes  = `SELECT COUNT(*) FROM likes WHERE post_slug = $1`
	queryHasLike     = `SELECT EXISTS (SELECT 1 FROM likes WHERE post_slug = $1 AND user_id = $2)`
	queryLikesByUser = `SELECT id, post_slug, user_id, created_at FROM likes WHERE user_id = $1 ORDER BY created_at DESC`

	queryDeleteFollow  = `DELETE FROM topic_follows WHERE topic = $1 AND user_id = $2`
	queryInsertFollow  = `INSERT INTO topic_follows (id, topic, user_id, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (topic, user_id) DO NOTHING`
	queryHasFollow     = `SELECT EXISTS (SELECT 1 FROM topic_follows WHERE topic = $1 AND user_id = $2)`
	queryFollowsByUser = `SELECT id, topic, user_id, created_at FROM topic_follows WHERE user_id = $1 ORDER BY topic ASC`
)

// Repository persists users and their interactions with posts.
type Repository struct {
	DB *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

func dbError(err error) error {
	return domain.Storage("Something went wrong", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *Repository) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := r.DB.ExecContext(ctx, queryInsertUser, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return domain.Conflict("User with this email already exists")
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.QueryRowContext(ctx, queryUserByEmail, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("User not found")
	}
	if err != nil {
		return nil, dbError(err)
	}
	return &u, nil
}

func (r *Repository) ListComments(ctx context.Context, slug string) ([]domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, queryListComments, slug)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var (
			c        domain.Comment
			userID   uuid.NullUUID
			author   sql.NullString
			userName sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.PostSlug, &c.Content, &userID, &author, &c.CreatedAt, &c.UpdatedAt, &userName); err != nil {
			return nil, dbError(err)
		}
		if userID.Valid {
			id := userID.UUID
			c.UserID = &id
		}
		c.AuthorName = author.String
		if userName.Valid {
			c.User = &domain.CommentUser{Name: userName.String}
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return comments, nil
}

func (r *Repository) CreateComment(ctx context.Context, c *domain.Comment) error {
	var userID uuid.NullUUID
	if c.UserID != nil {
		userID = uuid.NullUUID{UUID: *c.UserID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, queryInsertComment,
		c.ID, c.PostSlug, c.Content, userID, nullString(c.AuthorName), nullString(c.IPAddress), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (r *Repository) CommentByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var (
		c      domain.Comment
		userID uuid.NullUUID
		author sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, queryCommentByID, id).
		Scan(&c.ID, &c.PostSlug, &c.Content, &userID, &author, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Comment not found")
	}
	if err != nil {
		return nil, dbError(err)
	}
	if userID.Valid {
		uid := userID.UUID
		c.UserID = &uid
	}
	c.AuthorName = author.String
	return &c, nil
}

func (r *Repository) UpdateComment(ctx context.Context, id uuid.UUID, content string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, queryUpdateComment, content, at, id)
	return affectedOne(res, err, "Comment not found")
}

func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, queryDeleteComment, id)
	return affectedOne(res, err, "Comment not found")
}

// DeleteLike reports whether a like existed.
func (r *Repository) DeleteLike(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	return deleted(r.DB.ExecContext(ctx, queryDeleteLike, slug, userID))
}

func (r *Repository) InsertLike(ctx context.Context, l *domain.Like) error {
	if _, err := r.DB.ExecContext(ctx, queryInsertLike, l.ID, l.PostSlug, l.UserID, l.CreatedAt); err != nil {
		return dbError(err)
	}
	return nil
}

func (r *Repository) CountLikes(ctx context.Context, slug string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, queryCountLikes, slug).Scan(&n); err != nil {
		return 0, dbError(err)
	}
	return n, nil
}

func (r *Repository) HasLike(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	return r.exists(ctx, queryHasLike, slug, userID)
}

func (r *Repository) LikesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Like, error) {
	rows, err := r.DB.QueryContext(ctx, queryLikesByUser, userID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	likes := []domain.Like{}
	for rows.Next() {
		var l domain.Like
		if err := rows.Scan(&l.ID, &l.PostSlug, &l.UserID, &l.CreatedAt); err != nil {
			return nil, dbError(err)
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return likes, nil
}

// DeleteFollow reports whether a follow existed.
func (r *Repository) DeleteFollow(ctx context.Context, topic string, userID uuid.UUID) (bool, error) {
	return deleted(r.DB.ExecContext(ctx, queryDeleteFollow, topic, userID))
}

func (r *Repository) InsertFollow(ctx context.Context, f *domain.TopicFollow) error {
	if _, err := r.DB.ExecContext(ctx, queryInsertFollow, f.ID, f.Topic, f.UserID, f.CreatedAt); err != nil {
		return dbError(err)
	}
	return nil
}

func (r *Repository) HasFollow(ctx context.Context, topic string, userID uuid.UUID) (bool, error) {
	return r.exists(ctx, queryHasFollow, topic, userID)
}

func (r *Repository) FollowsByUser(ctx context.Context, userID uuid.UUID) ([]domain.TopicFollow, error) {
	rows, err := r.DB.QueryContext(ctx, queryFollowsByUser, userID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	follows := []domain.TopicFollow{}
	for rows.Next() {
		var f domain.TopicFollow
		if err := rows.Scan(&f.ID, &f.Topic, &f.UserID, &f.CreatedAt); err != nil {
			return nil, dbError(err)
		}
		follows = append(follows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return follows, nil
}

func (r *Repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, dbError(err)
	}
	return ok, nil
}

func deleted(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, dbError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

func affectedOne(res sql.Result, err error, notFound string) error {
	ok, err := deleted(res, err)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("%s", notFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
