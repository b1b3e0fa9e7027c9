package domain

// Topic is a named FAQ category shown as a menu entry.
type Topic struct {
	Key   string
	Label string
}

// Question is a single FAQ entry with a normalized key and stored answer,
// belonging to one topic.
type Question struct {
	TopicKey    string
	QuestionKey string
	Answer      string
}
