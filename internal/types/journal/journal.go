package journal

import "time"

type Entry struct {
	ID        string    `json:"id" firestore:"-" db:"id"`
	UserID    string    `json:"userId" firestore:"userId" db:"user_id"`
	Date      string    `json:"date" firestore:"date" db:"date"`
	Content   string    `json:"content" firestore:"content" db:"content"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" db:"updated_at"`
}

// EntryID is the deterministic document id for a user's entry on date.
// Saving twice on the same day overwrites the same document.
func EntryID(userID, date string) string {
	return userID + "_" + date
}

type SaveEntryRequest struct {
	Content string `json:"content"`
}
