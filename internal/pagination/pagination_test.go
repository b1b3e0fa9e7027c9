package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"faq-agent/internal/domain"
)

func makeQuestions(n int) []domain.Question {
	qs := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, domain.Question{
			TopicKey:    "gaming",
			QuestionKey: fmt.Sprintf("question_%03d", i),
			Answer:      fmt.Sprintf("answer %d", i),
		})
	}
	return qs
}

func TestNeeded(t *testing.T) {
	require.False(t, Needed(0))
	require.False(t, Needed(25))
	require.True(t, Needed(26))
}

func TestPaginate_FirstPage(t *testing.T) {
	p := Paginate(makeQuestions(30), 0)
	require.Len(t, p.Items, PageSize)
	require.Equal(t, 2, p.TotalPages)
	require.True(t, p.HasNext)
	require.False(t, p.HasPrev)
	require.Equal(t, "question_000", p.Items[0].QuestionKey)
}

func TestPaginate_LastPage(t *testing.T) {
	// 30 questions: last page holds the 6 that did not fit on page 0.
	p := Paginate(makeQuestions(30), 1)
	require.Len(t, p.Items, 30-PageSize)
	require.False(t, p.HasNext)
	require.True(t, p.HasPrev)
	require.Equal(t, "question_024", p.Items[0].QuestionKey)
}

func TestPaginate_ExactMultiple(t *testing.T) {
	p := Paginate(makeQuestions(48), 1)
	require.Len(t, p.Items, PageSize)
	require.Equal(t, 2, p.TotalPages)
	require.False(t, p.HasNext)
	require.True(t, p.HasPrev)
}

func TestPaginate_ForwardThenBackReturnsToStart(t *testing.T) {
	qs := makeQuestions(60)
	start := Paginate(qs, 0)
	forward := Paginate(qs, start.Index+1)
	back := Paginate(qs, forward.Index-1)
	require.Equal(t, start, back)
}

func TestPaginate_ClampsOutOfRangeIndex(t *testing.T) {
	qs := makeQuestions(30)

	low := Paginate(qs, -5)
	require.Equal(t, 0, low.Index)
	require.Equal(t, Paginate(qs, 0), low)

	high := Paginate(qs, 99)
	require.Equal(t, 1, high.Index)
	require.Equal(t, Paginate(qs, 1), high)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 3)
	require.Empty(t, p.Items)
	require.Equal(t, 0, p.Index)
	require.Equal(t, 1, p.TotalPages)
	require.False(t, p.HasNext)
	require.False(t, p.HasPrev)
}
