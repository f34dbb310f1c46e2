package adapters

import (
	"context"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

type notifier struct {
	db DBTX
}

// NewNotifier stores notifications in the notifications table, where the
// (out of scope) UI reads them.
func NewNotifier(db DBTX) domain.Notifier {
	return &notifier{db}
}

func (n *notifier) Notify(ctx context.Context, userID int, notif models.Notification) error {
	sql, args, _ := psql.
		Insert("notifications").
		Columns("user_id", "notif_type", "title", "text", "action_url").
		Values(userID, notif.NotifType, notif.Title, notif.Text, notif.ActionURL).
		ToSql()
	_, err := n.db.Exec(ctx, sql, args...)
	return err
}
