package repository

import (
	"context"
	"fmt"

	"faq-agent/internal/domain"
)

var defaultTopics = []domain.Topic{
	{Key: "gaming", Label: "Gaming"},
	{Key: "coding", Label: "Coding"},
	{Key: "design", Label: "Design"},
}

var defaultQuestions = []domain.Question{
	{TopicKey: "gaming", QuestionKey: "best_games", Answer: "The best games right now are Elden Ring, GTA V and The Witcher 3!"},
	{TopicKey: "gaming", QuestionKey: "pro_tips", Answer: "Pro tip: practice daily and follow the top players in your field!"},
	{TopicKey: "coding", QuestionKey: "best_languages", Answer: "The best programming languages to learn: Python, JavaScript and Rust!"},
	{TopicKey: "coding", QuestionKey: "how_to_start", Answer: "Start with the basics from free resources like freeCodeCamp and CS50!"},
	{TopicKey: "design", QuestionKey: "best_design_tools", Answer: "The best design tools: Photoshop, Illustrator and Figma!"},
	{TopicKey: "design", QuestionKey: "beginner_tips", Answer: "Beginner tip: don't rush, practice design daily and start with simple projects!"},
}

// Seed installs the default topics and questions when the store is empty.
// It reports whether anything was written.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	topics, err := s.ListTopics(ctx)
	if err != nil {
		return false, fmt.Errorf("repository: Seed: %w", err)
	}
	if len(topics) > 0 {
		return false, nil
	}

	for _, topic := range defaultTopics {
		if err := s.CreateTopic(ctx, topic); err != nil {
			return false, fmt.Errorf("repository: Seed topic %q: %w", topic.Key, err)
		}
	}
	for _, q := range defaultQuestions {
		if err := s.CreateQuestion(ctx, q); err != nil {
			return false, fmt.Errorf("repository: Seed question %q: %w", q.QuestionKey, err)
		}
	}
	return true, nil
}
