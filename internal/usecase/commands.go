package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"faq-agent/internal/domain"
	"faq-agent/internal/repository"
)

// Admin slash commands. Every command requires the configured admin role,
// checked on each invocation.
const (
	cmdAddCat    = "addcat"
	cmdAddFAQ    = "addfaq"
	cmdDeleteCat = "deletecat"
	cmdDeleteFAQ = "deletefaq"
	cmdEditCat   = "editcat"
	cmdEditFAQ   = "editfaq"
	cmdResetDB   = "resetdb"
)

func (s *Service) handleCommand(ctx context.Context, ev domain.Event) error {
	if ev.Command == nil {
		return nil
	}
	if !slices.Contains(ev.User.Roles, s.cfg.AdminRoleID) {
		return s.rejectWith(ctx, ev, msgNoPermission)
	}

	opt := func(name string) string {
		return ev.Command.Options[name]
	}

	switch ev.Command.Name {
	case cmdAddCat:
		return s.addTopic(ctx, ev, opt("name"), opt("label"))
	case cmdAddFAQ:
		return s.openAddFAQModal(ctx, ev, opt("cat_name"))
	case cmdDeleteCat:
		return s.deleteTopic(ctx, ev, opt("cat_name"))
	case cmdDeleteFAQ:
		return s.deleteQuestion(ctx, ev, opt("cat_name"), opt("question"))
	case cmdEditCat:
		return s.renameTopic(ctx, ev, opt("cat_name"), opt("new_name"), opt("new_label"))
	case cmdEditFAQ:
		return s.editAnswer(ctx, ev, opt("cat_name"), opt("question"), opt("new_answer"))
	case cmdResetDB:
		return s.resetAll(ctx, ev)
	default:
		return nil
	}
}

func (s *Service) addTopic(ctx context.Context, ev domain.Event, name, label string) error {
	if name == "" || label == "" {
		return s.rejectWith(ctx, ev, "❌ Both a name and a label are required!")
	}
	err := s.store.CreateTopic(ctx, domain.Topic{Key: name, Label: label})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return s.rejectWith(ctx, ev, "❌ That topic already exists!")
	case err != nil:
		return newError(ErrorInternal, "store_create_topic", err)
	}
	return s.confirmWith(ctx, ev, fmt.Sprintf("✅ Topic %q added!", name))
}

// openAddFAQModal verifies the topic before opening the input prompt; a
// missing topic rejects without showing anything.
func (s *Service) openAddFAQModal(ctx context.Context, ev domain.Event, topicKey string) error {
	_, err := s.store.GetTopic(ctx, topicKey)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.rejectWith(ctx, ev, "❌ That topic does not exist!")
	case err != nil:
		return newError(ErrorInternal, "store_get_topic", err)
	}

	if err := s.chat.OpenModal(ctx, ev.ID, addFAQModal(topicKey, ev.User.ID)); err != nil {
		return newError(ErrorUpstream, "chat_modal_failed", err)
	}
	return nil
}

// submitNewQuestion stores a question submitted through the add-FAQ modal.
// The key is normalized from the free-text question.
func (s *Service) submitNewQuestion(ctx context.Context, ev domain.Event, topicKey string) error {
	questionKey := normalizeQuestionKey(ev.Fields["question_input"])
	answer := ev.Fields["answer_input"]
	if questionKey == "" || answer == "" {
		return s.rejectWith(ctx, ev, "❌ Both a question and an answer are required!")
	}

	err := s.store.CreateQuestion(ctx, domain.Question{
		TopicKey:    topicKey,
		QuestionKey: questionKey,
		Answer:      answer,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return s.rejectWith(ctx, ev, "❌ That question already exists in this topic!")
	case errors.Is(err, repository.ErrNotFound):
		return s.rejectWith(ctx, ev, "❌ That topic does not exist!")
	case err != nil:
		return newError(ErrorInternal, "store_create_question", err)
	}
	return s.confirmWith(ctx, ev,
		fmt.Sprintf("✅ Question %q added to topic %q!", questionKey, topicKey))
}

func (s *Service) deleteTopic(ctx context.Context, ev domain.Event, topicKey string) error {
	err := s.store.DeleteTopic(ctx, topicKey)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.rejectWith(ctx, ev, "❌ That topic does not exist!")
	case err != nil:
		return newError(ErrorInternal, "store_delete_topic", err)
	}
	return s.confirmWith(ctx, ev,
		fmt.Sprintf("🗑️ Topic %q and all of its questions deleted!", topicKey))
}

func (s *Service) deleteQuestion(ctx context.Context, ev domain.Event, topicKey, questionKey string) error {
	err := s.store.DeleteQuestion(ctx, topicKey, questionKey)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.rejectWith(ctx, ev, "❌ That question does not exist in this topic!")
	case err != nil:
		return newError(ErrorInternal, "store_delete_question", err)
	}
	return s.confirmWith(ctx, ev,
		fmt.Sprintf("🗑️ Question %q deleted from topic %q!", questionKey, topicKey))
}

func (s *Service) renameTopic(ctx context.Context, ev domain.Event, oldKey, newKey, newLabel string) error {
	if newKey == "" || newLabel == "" {
		return s.rejectWith(ctx, ev, "❌ Both a new name and a new label are required!")
	}
	err := s.store.RenameTopic(ctx, oldKey, newKey, newLabel)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.rejectWith(ctx, ev, "❌ That topic does not exist!")
	case errors.Is(err, repository.ErrDuplicate):
		return s.rejectWith(ctx, ev, "❌ A topic with that name already exists!")
	case err != nil:
		return newError(ErrorInternal, "store_rename_topic", err)
	}
	return s.confirmWith(ctx, ev,
		fmt.Sprintf("✏️ Topic renamed from %q to %q!", oldKey, newKey))
}

func (s *Service) editAnswer(ctx context.Context, ev domain.Event, topicKey, questionKey, newAnswer string) error {
	if newAnswer == "" {
		return s.rejectWith(ctx, ev, "❌ A new answer is required!")
	}
	err := s.store.UpdateQuestionAnswer(ctx, topicKey, questionKey, newAnswer)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.rejectWith(ctx, ev, "❌ That question does not exist in this topic!")
	case err != nil:
		return newError(ErrorInternal, "store_update_answer", err)
	}
	return s.confirmWith(ctx, ev,
		fmt.Sprintf("✏️ Answer for question %q in topic %q updated!", questionKey, topicKey))
}

func (s *Service) resetAll(ctx context.Context, ev domain.Event) error {
	if err := s.store.ResetAll(ctx); err != nil {
		return newError(ErrorInternal, "store_reset", err)
	}
	return s.confirmWith(ctx, ev, "🗑️ All topics and questions have been wiped!")
}

func (s *Service) rejectWith(ctx context.Context, ev domain.Event, content string) error {
	if err := s.chat.Reply(ctx, ev.ID, ephemeral(content)); err != nil {
		return newError(ErrorUpstream, "chat_reply_failed", err)
	}
	return nil
}

func (s *Service) confirmWith(ctx context.Context, ev domain.Event, content string) error {
	return s.rejectWith(ctx, ev, content)
}
