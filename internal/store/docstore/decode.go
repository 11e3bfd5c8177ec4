package docstore

import (
	"errors"
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/firestore"

	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
	"habitTrackerAPI/internal/types/notification"
)

// Documents are decoded field by field instead of through DataTo. Web clients
// write timestamps as ISO strings and may store a malformed rule field, and
// neither should hide the user's other documents.

var errMissingField = errors.New("missing required field")

func stringField(data map[string]any, key string) (string, bool) {
	s, ok := data[key].(string)
	return s, ok
}

// timeField accepts a Firestore timestamp or an RFC 3339 string. Anything else
// yields the zero time.
func timeField(data map[string]any, key string) time.Time {
	switch v := data[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	default:
		return time.Time{}
	}
}

// intsField returns nil when the field is absent or holds a non-integer element.
func intsField(data map[string]any, key string) []int {
	raw, ok := data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case int64:
			out = append(out, int(n))
		case float64:
			if n != math.Trunc(n) {
				return nil
			}
			out = append(out, int(n))
		default:
			return nil
		}
	}
	return out
}

// stringsField drops non-string elements.
func stringsField(data map[string]any, key string) []string {
	out := []string{}
	raw, ok := data[key].([]any)
	if !ok {
		return out
	}
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func habitFromData(id string, data map[string]any) (habit.Habit, error) {
	userID, ok := stringField(data, "userId")
	if !ok {
		return habit.Habit{}, fmt.Errorf("habit %s userId: %w", id, errMissingField)
	}
	name, ok := stringField(data, "name")
	if !ok {
		return habit.Habit{}, fmt.Errorf("habit %s name: %w", id, errMissingField)
	}
	freq, _ := stringField(data, "frequency")
	specific, _ := stringField(data, "specificDate")

	return habit.Habit{
		ID:             id,
		UserID:         userID,
		Name:           name,
		Frequency:      habit.Frequency(freq),
		Weekdays:       intsField(data, "weekdays"),
		SpecificDate:   specific,
		CompletedDates: stringsField(data, "completedDates"),
		CreatedAt:      timeField(data, "createdAt"),
	}, nil
}

func journalFromData(id string, data map[string]any) (journal.Entry, error) {
	userID, ok := stringField(data, "userId")
	if !ok {
		return journal.Entry{}, fmt.Errorf("journal %s userId: %w", id, errMissingField)
	}
	date, ok := stringField(data, "date")
	if !ok {
		return journal.Entry{}, fmt.Errorf("journal %s date: %w", id, errMissingField)
	}
	content, _ := stringField(data, "content")

	return journal.Entry{
		ID:        id,
		UserID:    userID,
		Date:      date,
		Content:   content,
		UpdatedAt: timeField(data, "updatedAt"),
	}, nil
}

// deviceFromData falls back to the document id, which is the token itself.
func deviceFromData(id string, data map[string]any) (notification.DeviceToken, error) {
	token, ok := stringField(data, "token")
	if !ok || token == "" {
		token = id
	}
	if token == "" {
		return notification.DeviceToken{}, fmt.Errorf("device token: %w", errMissingField)
	}
	userID, _ := stringField(data, "userId")
	platform, _ := stringField(data, "platform")

	return notification.DeviceToken{
		Token:     token,
		UserID:    userID,
		Platform:  platform,
		CreatedAt: timeField(data, "createdAt"),
	}, nil
}

// decodeAll decodes every document and skips the ones that cannot be read.
func decodeAll[T any](kind string, docs []*firestore.DocumentSnapshot, decode func(string, map[string]any) (T, error)) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode(doc.Ref.ID, doc.Data())
		if err != nil {
			logger.Warn("skipping undecodable document", "kind", kind, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}
