package models

type NotifType string

const (
	NotifTypeFeatured   NotifType = "featured"
	NotifTypeModeration NotifType = "moderation"
)

type Notification struct {
	UserID    int       `db:"user_id"`
	NotifType NotifType `db:"notif_type"`
	Title     string    `db:"title"`
	Text      string    `db:"text"`
	ActionURL string    `db:"action_url"`
}
