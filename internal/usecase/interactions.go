package usecase

import (
	"context"
	"errors"

	"faq-agent/internal/customid"
	"faq-agent/internal/domain"
	"faq-agent/internal/repository"
)

// handleChannelMessage shows the topic menu in response to any user message
// in the public channel. Messages elsewhere and bot messages are ignored.
func (s *Service) handleChannelMessage(ctx context.Context, ev domain.Event) error {
	if ev.User.Bot || ev.ChannelID != s.cfg.PublicChannelID {
		return nil
	}

	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return newError(ErrorInternal, "store_list_topics", err)
	}
	if err := s.chat.Reply(ctx, ev.ID, topicMenuMessage(topics)); err != nil {
		return newError(ErrorUpstream, "chat_reply_failed", err)
	}
	return nil
}

func (s *Service) handleMenuSelect(ctx context.Context, ev domain.Event) error {
	if len(ev.Values) == 0 {
		return nil
	}
	id := customid.Decode(ev.CustomID)

	switch id.Intent {
	case customid.SelectSection:
		return s.showQuestionMenu(ctx, ev, ev.Values[0])
	case customid.SelectFAQ:
		if ev.Values[0] == customid.NextPage || ev.Values[0] == customid.PrevPage {
			return s.turnPage(ctx, ev, id, ev.Values[0])
		}
		return s.answerQuestion(ctx, ev, id.TopicKey, ev.Values[0])
	default:
		return nil
	}
}

func (s *Service) showQuestionMenu(ctx context.Context, ev domain.Event, topicKey string) error {
	questions, err := s.store.ListQuestions(ctx, topicKey)
	if err != nil {
		return newError(ErrorInternal, "store_list_questions", err)
	}
	if err := s.chat.Reply(ctx, ev.ID, questionMenuMessage(msgPickQuestion, topicKey, questions, 0)); err != nil {
		return newError(ErrorUpstream, "chat_reply_failed", err)
	}
	return nil
}

// turnPage recomputes the question page and re-renders the menu in place.
func (s *Service) turnPage(ctx context.Context, ev domain.Event, id customid.ID, direction string) error {
	questions, err := s.store.ListQuestions(ctx, id.TopicKey)
	if err != nil {
		return newError(ErrorInternal, "store_list_questions", err)
	}

	page := id.Page
	if direction == customid.NextPage {
		page++
	} else {
		page--
	}

	if err := s.chat.Update(ctx, ev.ID, questionMenuMessage(msgPickQuestion, id.TopicKey, questions, page)); err != nil {
		return newError(ErrorUpstream, "chat_update_failed", err)
	}
	return nil
}

// answerQuestion delivers the stored answer publicly, then a private feedback
// prompt. A missing answer is a user-facing fallback, not a failure.
func (s *Service) answerQuestion(ctx context.Context, ev domain.Event, topicKey, questionKey string) error {
	content := msgAnswerMissing
	q, err := s.store.GetAnswer(ctx, topicKey, questionKey)
	switch {
	case err == nil:
		content = q.Answer
	case errors.Is(err, repository.ErrNotFound):
		// keep fallback
	default:
		return newError(ErrorInternal, "store_get_answer", err)
	}

	if err := s.chat.Reply(ctx, ev.ID, domain.Message{Content: mention(ev.User.ID) + " " + content}); err != nil {
		return newError(ErrorUpstream, "chat_reply_failed", err)
	}

	feedback := domain.Message{
		Content:   msgFeedbackAsk,
		Buttons:   feedbackButtons(topicKey, questionKey, ev.User.ID),
		Ephemeral: true,
	}
	if err := s.chat.FollowUp(ctx, ev.ID, feedback); err != nil {
		return newError(ErrorUpstream, "chat_followup_failed", err)
	}
	return nil
}

func (s *Service) handleButton(ctx context.Context, ev domain.Event) error {
	id := customid.Decode(ev.CustomID)

	switch id.Intent {
	case customid.FeedbackYes:
		if err := s.chat.Update(ctx, ev.ID, ephemeral(msgFeedbackThank)); err != nil {
			return newError(ErrorUpstream, "chat_update_failed", err)
		}
		return nil

	case customid.FeedbackNo:
		if err := s.chat.OpenModal(ctx, ev.ID, suggestionModal(id.QuestionKey, ev.User.ID)); err != nil {
			return newError(ErrorUpstream, "chat_modal_failed", err)
		}
		return nil

	case customid.AnotherQuestion:
		questions, err := s.store.ListQuestions(ctx, id.TopicKey)
		if err != nil {
			return newError(ErrorInternal, "store_list_questions", err)
		}
		if err := s.chat.Update(ctx, ev.ID, questionMenuMessage(msgPickAnother, id.TopicKey, questions, 0)); err != nil {
			return newError(ErrorUpstream, "chat_update_failed", err)
		}
		return nil

	case customid.ReplyToQuestion:
		if err := s.chat.OpenModal(ctx, ev.ID, staffReplyModal(id.UserID, id.QuestionKey)); err != nil {
			return newError(ErrorUpstream, "chat_modal_failed", err)
		}
		return nil

	default:
		return nil
	}
}

func (s *Service) handleModalSubmit(ctx context.Context, ev domain.Event) error {
	id := customid.Decode(ev.CustomID)

	switch id.Intent {
	case customid.FeedbackModal:
		suggestion := ev.Fields["suggestion_input"]
		if err := s.chat.Reply(ctx, ev.ID, ephemeral(msgSuggestionAck)); err != nil {
			return newError(ErrorUpstream, "chat_reply_failed", err)
		}
		return s.relayToStaff(ctx, ev.User, id.QuestionKey, suggestion)

	case customid.ReplyModal:
		targetUserID := ev.Fields["user_id_input"]
		replyText := ev.Fields["reply_input"]
		if err := s.chat.Reply(ctx, ev.ID, ephemeral(msgReplySentAck)); err != nil {
			return newError(ErrorUpstream, "chat_reply_failed", err)
		}
		return s.relayAnswer(ctx, targetUserID, replyText, id.QuestionKey)

	case customid.AddFAQModal:
		return s.submitNewQuestion(ctx, ev, id.TopicKey)

	default:
		return nil
	}
}
