package notification

import "time"

type DeviceToken struct {
	Token     string    `json:"token" firestore:"token" db:"token"`
	UserID    string    `json:"userId" firestore:"userId" db:"user_id"`
	Platform  string    `json:"platform" firestore:"platform" db:"platform"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" db:"created_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// Reminder is one push telling a user how many habits are still open today.
type Reminder struct {
	UserID    string
	Date      string
	Remaining []string
	Tokens    []DeviceToken
}
