package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"faq-agent/internal/domain"
	"faq-agent/internal/integrations/paramstore"
)

// ContentStore is the durable Topic → Question → Answer mapping consumed by
// the dispatcher.
type ContentStore interface {
	ListTopics(ctx context.Context) ([]domain.Topic, error)
	GetTopic(ctx context.Context, topicKey string) (domain.Topic, error)
	ListQuestions(ctx context.Context, topicKey string) ([]domain.Question, error)
	GetAnswer(ctx context.Context, topicKey, questionKey string) (domain.Question, error)
	CreateTopic(ctx context.Context, topic domain.Topic) error
	RenameTopic(ctx context.Context, oldKey, newKey, newLabel string) error
	DeleteTopic(ctx context.Context, topicKey string) error
	CreateQuestion(ctx context.Context, q domain.Question) error
	UpdateQuestionAnswer(ctx context.Context, topicKey, questionKey, answer string) error
	DeleteQuestion(ctx context.Context, topicKey, questionKey string) error
	ResetAll(ctx context.Context) error
}

// Transport is the chat platform's outbound surface.
type Transport interface {
	Reply(ctx context.Context, interactionID string, msg domain.Message) error
	FollowUp(ctx context.Context, interactionID string, msg domain.Message) error
	Update(ctx context.Context, interactionID string, msg domain.Message) error
	OpenModal(ctx context.Context, interactionID string, modal domain.Modal) error
	SendChannel(ctx context.Context, channelID string, msg domain.Message) error
	SendDirect(ctx context.Context, userID, content string) error
}

// Service routes inbound interactions through the FAQ state machine.
type Service struct {
	store ContentStore
	chat  Transport
	cfg   paramstore.Config
	log   *slog.Logger
}

func NewService(store ContentStore, chat Transport, cfg paramstore.Config, log *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("usecase: content store must not be nil")
	}
	if chat == nil {
		return nil, errors.New("usecase: transport must not be nil")
	}
	if cfg.PublicChannelID == "" || cfg.StaffChannelID == "" || cfg.AdminRoleID == "" {
		return nil, errors.New("usecase: channel and role config must not be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, chat: chat, cfg: cfg, log: log}, nil
}

// HandleEvent dispatches one inbound interaction. Expected rejections
// (duplicates, missing targets, missing permissions) are delivered as chat
// replies and do not surface as errors; only unexpected store or transport
// failures do. On failure a generic apology is attempted — the platform
// rejects a second reply if one was already sent, and that rejection is
// ignored.
func (s *Service) HandleEvent(ctx context.Context, ev domain.Event) error {
	err := s.dispatch(ctx, ev)
	if err != nil {
		s.log.Error("interaction handling failed",
			"type", ev.Type, "custom_id", ev.CustomID, "user", ev.User.ID, "err", err)
		if ev.ID != "" {
			if aerr := s.chat.Reply(ctx, ev.ID, ephemeral(msgApology)); aerr != nil {
				s.log.Warn("apology reply failed", "err", aerr)
			}
		}
	}
	return err
}

func (s *Service) dispatch(ctx context.Context, ev domain.Event) error {
	switch ev.Type {
	case domain.EventMessage:
		return s.handleChannelMessage(ctx, ev)
	case domain.EventMenuSelect:
		return s.handleMenuSelect(ctx, ev)
	case domain.EventButton:
		return s.handleButton(ctx, ev)
	case domain.EventModalSubmit:
		return s.handleModalSubmit(ctx, ev)
	case domain.EventCommand:
		return s.handleCommand(ctx, ev)
	default:
		return nil
	}
}

func ephemeral(content string) domain.Message {
	return domain.Message{Content: content, Ephemeral: true}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}

var newTicketID = func() string {
	return uuid.NewString()
}
