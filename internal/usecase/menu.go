package usecase

import (
	"fmt"
	"strings"

	"faq-agent/internal/customid"
	"faq-agent/internal/domain"
	"faq-agent/internal/pagination"
)

const (
	msgTopicGreeting = "👋 Hi there! How can I help?\n📜 Pick a topic from the menu below to see its FAQs."
	msgPickTopic     = "📂 Pick a topic"
	msgPickQuestion  = "❓ Pick your question:"
	msgPickAnother   = "❓ Pick your next question:"
	msgAnswerMissing = "❌ I couldn't find an answer for that question!"
	msgFeedbackAsk   = "💡 Did this answer help you?"
	msgFeedbackThank = "✅ Thanks for the feedback! Glad the answer helped."
	msgSuggestionAck = "📨 Thanks for your question! It will be reviewed, this may take a moment."
	msgReplySentAck  = "📤 Answer sent to the public channel and by direct message!"
	msgNoPermission  = "❌ You don't have permission to use this command!"
	msgApology       = "❌ Something went wrong while handling that, sorry!"

	labelNextPage = "➡️ Next page"
	labelPrevPage = "⬅️ Previous page"
)

// humanizeLabel turns a normalized question key into its menu label:
// underscores become spaces and the result is upper-cased.
func humanizeLabel(questionKey string) string {
	return strings.ToUpper(strings.ReplaceAll(questionKey, "_", " "))
}

// normalizeQuestionKey derives a stable key from free text: lower-cased, with
// whitespace runs collapsed to single underscores.
func normalizeQuestionKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), "_")
}

func topicMenuMessage(topics []domain.Topic) domain.Message {
	options := make([]domain.SelectOption, 0, len(topics))
	for _, topic := range topics {
		options = append(options, domain.SelectOption{Label: topic.Label, Value: topic.Key})
	}
	return domain.Message{
		Content: msgTopicGreeting,
		Menu: &domain.SelectMenu{
			CustomID:    customid.ID{Intent: customid.SelectSection}.Encode(),
			Placeholder: msgPickTopic,
			Options:     options,
		},
	}
}

// questionMenuMessage renders a topic's question menu. Short lists render as
// one flat menu; longer lists are paged with next/prev entries appended as
// menu options. The two paths must agree on labels and selection values.
func questionMenuMessage(content, topicKey string, questions []domain.Question, pageIndex int) domain.Message {
	if !pagination.Needed(len(questions)) {
		return domain.Message{
			Content:   content,
			Ephemeral: true,
			Menu: &domain.SelectMenu{
				CustomID:    customid.ID{Intent: customid.SelectFAQ, TopicKey: topicKey}.Encode(),
				Placeholder: "📝 Pick your question",
				Options:     questionOptions(questions),
			},
		}
	}

	page := pagination.Paginate(questions, pageIndex)
	options := questionOptions(page.Items)
	if page.HasNext {
		options = append(options, domain.SelectOption{Label: labelNextPage, Value: customid.NextPage})
	}
	if page.HasPrev {
		options = append(options, domain.SelectOption{Label: labelPrevPage, Value: customid.PrevPage})
	}
	return domain.Message{
		Content:   content,
		Ephemeral: true,
		Menu: &domain.SelectMenu{
			CustomID: customid.ID{
				Intent:   customid.SelectFAQ,
				TopicKey: topicKey,
				Page:     page.Index,
				HasPage:  true,
			}.Encode(),
			Placeholder: fmt.Sprintf("📝 Pick your question (page %d of %d)", page.Index+1, page.TotalPages),
			Options:     options,
		},
	}
}

func questionOptions(questions []domain.Question) []domain.SelectOption {
	options := make([]domain.SelectOption, 0, len(questions))
	for _, q := range questions {
		options = append(options, domain.SelectOption{
			Label: humanizeLabel(q.QuestionKey),
			Value: q.QuestionKey,
		})
	}
	return options
}

func feedbackButtons(topicKey, questionKey, userID string) []domain.Button {
	return []domain.Button{
		{
			CustomID: customid.ID{Intent: customid.FeedbackYes, QuestionKey: questionKey, UserID: userID}.Encode(),
			Label:    "✅ Yes",
			Style:    "success",
		},
		{
			CustomID: customid.ID{Intent: customid.FeedbackNo, QuestionKey: questionKey, UserID: userID}.Encode(),
			Label:    "❌ No",
			Style:    "danger",
		},
		{
			CustomID: customid.ID{Intent: customid.AnotherQuestion, TopicKey: topicKey, UserID: userID}.Encode(),
			Label:    "❓ Got another question?",
			Style:    "primary",
		},
	}
}

func suggestionModal(questionKey, userID string) domain.Modal {
	return domain.Modal{
		CustomID: customid.ID{Intent: customid.FeedbackModal, QuestionKey: questionKey, UserID: userID}.Encode(),
		Title:    "💬 Submit a suggestion or new question",
		Inputs: []domain.TextInput{{
			CustomID:    "suggestion_input",
			Label:       "✍️ Write your question or suggestion here",
			Placeholder: "Example: what are the best games of 2025?",
			Paragraph:   true,
			Required:    true,
		}},
	}
}

func staffReplyModal(targetUserID, questionKey string) domain.Modal {
	return domain.Modal{
		CustomID: customid.ID{Intent: customid.ReplyModal, UserID: targetUserID, QuestionKey: questionKey}.Encode(),
		Title:    "✍️ Write the answer",
		Inputs: []domain.TextInput{
			{
				CustomID:    "user_id_input",
				Label:       "🆔 Target user ID",
				Placeholder: "Example: 123456789012345678",
				Required:    true,
			},
			{
				CustomID:    "reply_input",
				Label:       "📝 Write the answer here",
				Placeholder: "Write the answer you want to send to the user...",
				Paragraph:   true,
				Required:    true,
			},
		},
	}
}

func addFAQModal(topicKey, userID string) domain.Modal {
	return domain.Modal{
		CustomID: customid.ID{Intent: customid.AddFAQModal, TopicKey: topicKey, UserID: userID}.Encode(),
		Title:    "➕ Add a frequently asked question",
		Inputs: []domain.TextInput{
			{
				CustomID:    "question_input",
				Label:       "❓ Question",
				Placeholder: "Example: what are the best games of 2025?",
				Required:    true,
			},
			{
				CustomID:    "answer_input",
				Label:       "📝 Answer",
				Placeholder: "Write the answer here...",
				Paragraph:   true,
				Required:    true,
			},
		},
	}
}
