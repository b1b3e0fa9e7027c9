// Package customid encodes and decodes the interaction identifiers that carry
// continuation context between stateless webhook round-trips. The wire format
// is a delimited string; this package is the single boundary that produces and
// parses it, so the rest of the system only sees typed intents.
package customid

import (
	"strconv"
	"strings"
)

// Intent tags the decoded shape of an identifier.
type Intent int

const (
	Unrecognized Intent = iota
	SelectSection
	SelectFAQ
	FeedbackYes
	FeedbackNo
	AnotherQuestion
	FeedbackModal
	ReplyToQuestion
	ReplyModal
	AddFAQModal
)

// Sentinel menu values used for page navigation inside a question menu.
const (
	NextPage = "next_page"
	PrevPage = "prev_page"
)

const (
	selectSectionID     = "select_section"
	selectFAQPrefix     = "select_faq_"
	pageMarker          = "_page_"
	feedbackYesPrefix   = "feedback_yes_"
	feedbackNoPrefix    = "feedback_no_"
	anotherQuestionPfx  = "another_question_"
	feedbackModalPrefix = "feedback_modal_"
	replyButtonPrefix   = "reply_to_question_"
	replyModalPrefix    = "reply_modal_"
	addFAQModalPrefix   = "add_faq_modal_"
)

// ID is the decoded form of an interaction identifier. Only the fields that
// the intent carries are set; HasPage distinguishes an explicit page 0 from
// an unpaged menu.
type ID struct {
	Intent      Intent
	TopicKey    string
	QuestionKey string
	UserID      string
	Page        int
	HasPage     bool
}

// Encode renders the identifier in its wire form. Unrecognized and malformed
// IDs encode to the empty string.
func (id ID) Encode() string {
	switch id.Intent {
	case SelectSection:
		return selectSectionID
	case SelectFAQ:
		if id.HasPage {
			return selectFAQPrefix + id.TopicKey + pageMarker + strconv.Itoa(id.Page)
		}
		return selectFAQPrefix + id.TopicKey
	case FeedbackYes:
		return feedbackYesPrefix + id.QuestionKey + "_" + id.UserID
	case FeedbackNo:
		return feedbackNoPrefix + id.QuestionKey + "_" + id.UserID
	case AnotherQuestion:
		return anotherQuestionPfx + id.TopicKey + "_" + id.UserID
	case FeedbackModal:
		return feedbackModalPrefix + id.QuestionKey + "_" + id.UserID
	case ReplyToQuestion:
		return replyButtonPrefix + id.UserID + "_" + id.QuestionKey
	case ReplyModal:
		return replyModalPrefix + id.UserID + "_" + id.QuestionKey
	case AddFAQModal:
		return addFAQModalPrefix + id.TopicKey + "_" + id.UserID
	default:
		return ""
	}
}

// Decode parses a raw identifier. Unknown or malformed shapes yield an ID
// with Intent Unrecognized; callers ignore those rather than fail.
//
// Topic and question keys may themselves contain underscores, so payloads are
// split from the known end of each shape (user IDs never contain the
// delimiter) instead of positionally.
func Decode(raw string) ID {
	switch {
	case raw == selectSectionID:
		return ID{Intent: SelectSection}

	case strings.HasPrefix(raw, selectFAQPrefix):
		rest := strings.TrimPrefix(raw, selectFAQPrefix)
		if i := strings.LastIndex(rest, pageMarker); i >= 0 {
			page, err := strconv.Atoi(rest[i+len(pageMarker):])
			if err == nil && rest[:i] != "" {
				return ID{Intent: SelectFAQ, TopicKey: rest[:i], Page: page, HasPage: true}
			}
			return ID{}
		}
		if rest == "" {
			return ID{}
		}
		return ID{Intent: SelectFAQ, TopicKey: rest}

	case strings.HasPrefix(raw, feedbackYesPrefix):
		q, u, ok := splitTrailingUser(strings.TrimPrefix(raw, feedbackYesPrefix))
		if !ok {
			return ID{}
		}
		return ID{Intent: FeedbackYes, QuestionKey: q, UserID: u}

	case strings.HasPrefix(raw, feedbackNoPrefix):
		q, u, ok := splitTrailingUser(strings.TrimPrefix(raw, feedbackNoPrefix))
		if !ok {
			return ID{}
		}
		return ID{Intent: FeedbackNo, QuestionKey: q, UserID: u}

	case strings.HasPrefix(raw, anotherQuestionPfx):
		topic, u, ok := splitTrailingUser(strings.TrimPrefix(raw, anotherQuestionPfx))
		if !ok {
			return ID{}
		}
		return ID{Intent: AnotherQuestion, TopicKey: topic, UserID: u}

	case strings.HasPrefix(raw, feedbackModalPrefix):
		q, u, ok := splitTrailingUser(strings.TrimPrefix(raw, feedbackModalPrefix))
		if !ok {
			return ID{}
		}
		return ID{Intent: FeedbackModal, QuestionKey: q, UserID: u}

	case strings.HasPrefix(raw, replyButtonPrefix):
		u, q, ok := splitLeadingUser(strings.TrimPrefix(raw, replyButtonPrefix))
		if !ok {
			return ID{}
		}
		return ID{Intent: ReplyToQuestion, UserID: u, QuestionKey: q}

	case strings.HasPrefix(raw, replyModalPrefix):
		u, q, ok := splitLeadingUser(strings.TrimPrefix(raw, replyModalPrefix))
		if !ok {
			return ID{}
		}
		return ID{Intent: ReplyModal, UserID: u, QuestionKey: q}

	case strings.HasPrefix(raw, addFAQModalPrefix):
		topic, u, ok := splitTrailingUser(strings.TrimPrefix(raw, addFAQModalPrefix))
		if !ok {
			return ID{}
		}
		return ID{Intent: AddFAQModal, TopicKey: topic, UserID: u}
	}
	return ID{}
}

// splitTrailingUser splits "<payload>_<userID>" on the last delimiter.
func splitTrailingUser(rest string) (payload, userID string, ok bool) {
	i := strings.LastIndex(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// splitLeadingUser splits "<userID>_<payload>" on the first delimiter.
func splitLeadingUser(rest string) (userID, payload string, ok bool) {
	i := strings.Index(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
