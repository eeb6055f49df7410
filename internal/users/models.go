package users

import (
	"time"
)

// TelegramLink binds a Telegram account to a user of the web app.
type TelegramLink struct {
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
