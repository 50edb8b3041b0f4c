package schema

import "time"

type Question struct {
	ID        int64
	Question  string
	Answer    bool
	TopicID   *int64
	CreatedAt time.Time
}

type Topic struct {
	ID    int64
	Topic string
}

// TopicFallbackLabel is the topic assigned to a question when classification
// finds no known label.
const TopicFallbackLabel = "Другое"
