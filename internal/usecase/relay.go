package usecase

import (
	"context"
	"strings"

	"faq-agent/internal/customid"
	"faq-agent/internal/domain"
)

// relayToStaff posts a user's unanswered question to the staff channel as a
// structured notice with a reply control.
func (s *Service) relayToStaff(ctx context.Context, from domain.User, questionKey, suggestion string) error {
	notice := domain.Message{
		Embed: &domain.Embed{
			Title: "📬 New suggestion or question",
			Color: "#ff0000",
			Fields: []domain.EmbedField{
				{Name: "👤 User", Value: from.Name, Inline: true},
				{Name: "🆔 User ID", Value: from.ID, Inline: true},
				{Name: "❓ Selected question", Value: questionKey, Inline: true},
				{Name: "💬 Suggestion/question", Value: suggestion},
				{Name: "🎫 Ticket", Value: newTicketID(), Inline: true},
			},
		},
		Buttons: []domain.Button{{
			CustomID: customid.ID{Intent: customid.ReplyToQuestion, UserID: from.ID, QuestionKey: questionKey}.Encode(),
			Label:    "📝 Reply to this question",
			Style:    "primary",
		}},
	}

	if err := s.chat.SendChannel(ctx, s.cfg.StaffChannelID, notice); err != nil {
		return newError(ErrorUpstream, "staff_notice_failed", err)
	}
	return nil
}

// relayAnswer publishes a staff answer to the public channel, decorated with
// a category marker, and attempts a direct message to the target user. The
// direct message is best-effort: its failure is logged and deliberately not
// propagated.
func (s *Service) relayAnswer(ctx context.Context, targetUserID, answerText, questionKey string) error {
	public := domain.Message{
		Content: mention(targetUserID) + " " + markerFor(questionKey) + " " + answerText,
	}
	if err := s.chat.SendChannel(ctx, s.cfg.PublicChannelID, public); err != nil {
		return newError(ErrorUpstream, "public_answer_failed", err)
	}

	dm := "📩 Your question was answered in " + channelMention(s.cfg.PublicChannelID) + "! Answer: " + answerText
	if err := s.chat.SendDirect(ctx, targetUserID, dm); err != nil {
		s.log.Warn("direct message delivery failed",
			"user", targetUserID, "question", questionKey, "err", err)
	}
	return nil
}

// markerFor picks the decorative category marker for a question key.
func markerFor(questionKey string) string {
	switch {
	case strings.Contains(questionKey, "games") || strings.Contains(questionKey, "pro_tips"):
		return "🎮"
	case strings.Contains(questionKey, "languages") || strings.Contains(questionKey, "how_to_start"):
		return "💻"
	case strings.Contains(questionKey, "design_tools") || strings.Contains(questionKey, "beginner_tips"):
		return "🎨"
	default:
		return "❓"
	}
}
