package postgres

import (
	"context"

	"github.com/opencircle/social-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (type, recipient_id, issuer_id, post_id, comment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, read, created_at
	`, n.Type, n.RecipientID, n.IssuerID, n.PostID, n.CommentID).
		Scan(&n.ID, &n.Read, &n.CreatedAt)
}

// ListByRecipient returns the newest notifications with issuer summaries and
// post snippets for the list endpoint.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.NotificationView, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT n.id, n.type, n.recipient_id, n.issuer_id, n.post_id, n.comment_id, n.read, n.created_at,
		       u.id, u.name, u.username, u.image,
		       p.content
		FROM notifications n
		JOIN users u ON u.id = n.issuer_id
		LEFT JOIN posts p ON p.id = n.post_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.NotificationView
	for rows.Next() {
		var v domain.NotificationView
		if err := rows.Scan(
			&v.ID, &v.Type, &v.RecipientID, &v.IssuerID, &v.PostID, &v.CommentID, &v.Read, &v.CreatedAt,
			&v.Issuer.ID, &v.Issuer.Name, &v.Issuer.Username, &v.Issuer.Image,
			&v.PostContent,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND read=FALSE`,
		recipientID).Scan(&count)
	return count, err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET read=TRUE WHERE recipient_id=$1 AND read=FALSE`,
		recipientID)
	return err
}

// MarkRead is scoped to the recipient so users cannot ack each other's rows.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE notifications SET read=TRUE WHERE id=$1 AND recipient_id=$2`,
		id, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
