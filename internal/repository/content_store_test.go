package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"faq-agent/internal/domain"
)

type fakeDynamo struct {
	getOut    *dynamodb.GetItemOutput
	getErr    error
	putErr    error
	delErr    error
	queryOut  *dynamodb.QueryOutput
	queryErr  error
	scanOuts  []*dynamodb.ScanOutput
	scanErr   error
	txErr     error
	batchOuts []*dynamodb.BatchWriteItemOutput
	batchErr  error

	lastGetInput   *dynamodb.GetItemInput
	lastPutInput   *dynamodb.PutItemInput
	lastDelInput   *dynamodb.DeleteItemInput
	lastQueryIn    *dynamodb.QueryInput
	txInputs       []*dynamodb.TransactWriteItemsInput
	batchInputs    []*dynamodb.BatchWriteItemInput
	scanCallCount  int
	queryCallCount int
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastDelInput = in
	return &dynamodb.DeleteItemOutput{}, f.delErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryIn = in
	f.queryCallCount++
	if f.queryOut == nil {
		return &dynamodb.QueryOutput{}, f.queryErr
	}
	return f.queryOut, f.queryErr
}

func (f *fakeDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	out := f.scanOuts[f.scanCallCount]
	f.scanCallCount++
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.txInputs = append(f.txInputs, in)
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batchInputs = append(f.batchInputs, in)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	if len(f.batchOuts) > 0 {
		out := f.batchOuts[0]
		f.batchOuts = f.batchOuts[1:]
		return out, nil
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func topicRow(key, label string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: topicPK},
		"SK":    &types.AttributeValueMemberS{Value: key},
		"label": &types.AttributeValueMemberS{Value: label},
	}
}

func questionRow(topicKey, questionKey, answer string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":     &types.AttributeValueMemberS{Value: questionPK(topicKey)},
		"SK":     &types.AttributeValueMemberS{Value: questionSK(questionKey)},
		"answer": &types.AttributeValueMemberS{Value: answer},
	}
}

func mustNewStore(t *testing.T, db *fakeDynamo) *Store {
	t.Helper()
	s, err := New(db, "faq-table")
	require.NoError(t, err)
	return s
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "faq-table")
	require.Error(t, err)

	_, err = New(&fakeDynamo{}, "  ")
	require.Error(t, err)
}

func TestListTopics(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			topicRow("coding", "Coding"),
			topicRow("gaming", "Gaming"),
		},
	}}
	s := mustNewStore(t, db)

	topics, err := s.ListTopics(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.Topic{
		{Key: "coding", Label: "Coding"},
		{Key: "gaming", Label: "Gaming"},
	}, topics)
	require.Equal(t, "PK = :pk", aws.ToString(db.lastQueryIn.KeyConditionExpression))
}

func TestListQuestions_EmptyTopic(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{}}
	s := mustNewStore(t, db)

	questions, err := s.ListQuestions(context.Background(), "ghost")
	require.NoError(t, err)
	require.Empty(t, questions)
}

func TestGetAnswer_ScopedByTopic(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{
		Item: questionRow("gaming", "best_games", "Elden Ring"),
	}}
	s := mustNewStore(t, db)

	q, err := s.GetAnswer(context.Background(), "gaming", "best_games")
	require.NoError(t, err)
	require.Equal(t, domain.Question{TopicKey: "gaming", QuestionKey: "best_games", Answer: "Elden Ring"}, q)

	// The lookup key must carry the topic partition, not just the question.
	pk := db.lastGetInput.Key["PK"].(*types.AttributeValueMemberS)
	require.Equal(t, "TOPIC#gaming", pk.Value)
}

func TestGetAnswer_NotFound(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewStore(t, db)

	_, err := s.GetAnswer(context.Background(), "gaming", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTopic_Duplicate(t *testing.T) {
	db := &fakeDynamo{putErr: &types.ConditionalCheckFailedException{}}
	s := mustNewStore(t, db)

	err := s.CreateTopic(context.Background(), domain.Topic{Key: "gaming", Label: "Gaming"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)",
		aws.ToString(db.lastPutInput.ConditionExpression))
}

func TestCreateQuestion_MissingTopic(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewStore(t, db)

	err := s.CreateQuestion(context.Background(), domain.Question{
		TopicKey: "ghost", QuestionKey: "anything", Answer: "x",
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, db.lastPutInput)
}

func TestCreateQuestion_DuplicateInTopic(t *testing.T) {
	db := &fakeDynamo{
		getOut: &dynamodb.GetItemOutput{Item: topicRow("gaming", "Gaming")},
		putErr: &types.ConditionalCheckFailedException{},
	}
	s := mustNewStore(t, db)

	err := s.CreateQuestion(context.Background(), domain.Question{
		TopicKey: "gaming", QuestionKey: "best_games", Answer: "x",
	})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestRenameTopic_SwapsMetaThenMovesQuestions(t *testing.T) {
	db := &fakeDynamo{
		getOut: &dynamodb.GetItemOutput{Item: topicRow("gaming", "Gaming")},
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				questionRow("gaming", "best_games", "a1"),
				questionRow("gaming", "pro_tips", "a2"),
			},
		},
	}
	s := mustNewStore(t, db)

	err := s.RenameTopic(context.Background(), "gaming", "games", "Games")
	require.NoError(t, err)
	require.Len(t, db.txInputs, 2)
	// first transaction swaps the topic meta, the second moves the questions
	require.Len(t, db.txInputs[0].TransactItems, 2)
	require.Len(t, db.txInputs[1].TransactItems, 2*2)

	var newPKs []string
	for _, tx := range db.txInputs {
		for _, item := range tx.TransactItems {
			if item.Put != nil {
				pk := item.Put.Item["PK"].(*types.AttributeValueMemberS)
				newPKs = append(newPKs, pk.Value)
			}
		}
	}
	require.Equal(t, []string{"TOPIC", "TOPIC#games", "TOPIC#games"}, newPKs)
}

func TestRenameTopic_BatchesLargeTopics(t *testing.T) {
	items := make([]map[string]types.AttributeValue, 0, 60)
	for i := 0; i < 60; i++ {
		items = append(items, questionRow("gaming", fmt.Sprintf("q_%03d", i), "a"))
	}
	db := &fakeDynamo{
		getOut:   &dynamodb.GetItemOutput{Item: topicRow("gaming", "Gaming")},
		queryOut: &dynamodb.QueryOutput{Items: items},
	}
	s := mustNewStore(t, db)

	err := s.RenameTopic(context.Background(), "gaming", "games", "Games")
	require.NoError(t, err)
	// meta swap, then 50 questions, then the remaining 10
	require.Len(t, db.txInputs, 3)
	require.Len(t, db.txInputs[1].TransactItems, 100)
	require.Len(t, db.txInputs[2].TransactItems, 20)
	for _, tx := range db.txInputs {
		require.LessOrEqual(t, len(tx.TransactItems), maxTransactItems)
	}
}

func TestRenameTopic_NewKeyTaken(t *testing.T) {
	code := "ConditionalCheckFailed"
	db := &fakeDynamo{
		getOut:   &dynamodb.GetItemOutput{Item: topicRow("gaming", "Gaming")},
		queryOut: &dynamodb.QueryOutput{},
		txErr: &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: &code}},
		},
	}
	s := mustNewStore(t, db)

	err := s.RenameTopic(context.Background(), "gaming", "coding", "Coding")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestRenameTopic_MissingTopic(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewStore(t, db)

	err := s.RenameTopic(context.Background(), "ghost", "new", "New")
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, db.txInputs)
}

func TestDeleteTopic_DeletesQuestionsToo(t *testing.T) {
	db := &fakeDynamo{
		getOut: &dynamodb.GetItemOutput{Item: topicRow("gaming", "Gaming")},
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				questionRow("gaming", "best_games", "a1"),
				questionRow("gaming", "pro_tips", "a2"),
			},
		},
	}
	s := mustNewStore(t, db)

	err := s.DeleteTopic(context.Background(), "gaming")
	require.NoError(t, err)
	require.Len(t, db.txInputs, 1)
	require.Len(t, db.txInputs[0].TransactItems, 3)
	for _, item := range db.txInputs[0].TransactItems {
		require.NotNil(t, item.Delete)
	}
}

func TestDeleteTopic_BatchesLargeTopics(t *testing.T) {
	items := make([]map[string]types.AttributeValue, 0, 120)
	for i := 0; i < 120; i++ {
		items = append(items, questionRow("gaming", fmt.Sprintf("q_%03d", i), "a"))
	}
	db := &fakeDynamo{
		getOut:   &dynamodb.GetItemOutput{Item: topicRow("gaming", "Gaming")},
		queryOut: &dynamodb.QueryOutput{Items: items},
	}
	s := mustNewStore(t, db)

	err := s.DeleteTopic(context.Background(), "gaming")
	require.NoError(t, err)
	// 121 deletes split at the transaction item cap
	require.Len(t, db.txInputs, 2)
	require.Len(t, db.txInputs[0].TransactItems, 100)
	require.Len(t, db.txInputs[1].TransactItems, 21)
}

func TestUpdateQuestionAnswer_NotFound(t *testing.T) {
	db := &fakeDynamo{putErr: &types.ConditionalCheckFailedException{}}
	s := mustNewStore(t, db)

	err := s.UpdateQuestionAnswer(context.Background(), "gaming", "missing", "new answer")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteQuestion_NotFound(t *testing.T) {
	db := &fakeDynamo{delErr: &types.ConditionalCheckFailedException{}}
	s := mustNewStore(t, db)

	err := s.DeleteQuestion(context.Background(), "gaming", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResetAll_BatchDeletesEverything(t *testing.T) {
	items := make([]map[string]types.AttributeValue, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, questionRow("gaming", "q", "a"))
	}
	db := &fakeDynamo{scanOuts: []*dynamodb.ScanOutput{{Items: items}}}
	s := mustNewStore(t, db)

	require.NoError(t, s.ResetAll(context.Background()))
	// 30 items in chunks of 25
	require.Len(t, db.batchInputs, 2)
	require.Len(t, db.batchInputs[0].RequestItems["faq-table"], 25)
	require.Len(t, db.batchInputs[1].RequestItems["faq-table"], 5)
}

func TestResetAll_RetriesUnprocessedDeletes(t *testing.T) {
	retained := types.WriteRequest{
		DeleteRequest: &types.DeleteRequest{Key: questionRow("gaming", "q_001", "a")},
	}
	db := &fakeDynamo{
		scanOuts: []*dynamodb.ScanOutput{{Items: []map[string]types.AttributeValue{
			questionRow("gaming", "q_000", "a"),
			questionRow("gaming", "q_001", "a"),
		}}},
		batchOuts: []*dynamodb.BatchWriteItemOutput{
			{UnprocessedItems: map[string][]types.WriteRequest{"faq-table": {retained}}},
			{},
		},
	}
	s := mustNewStore(t, db)

	require.NoError(t, s.ResetAll(context.Background()))
	require.Len(t, db.batchInputs, 2)
	require.Len(t, db.batchInputs[1].RequestItems["faq-table"], 1)
}

func TestResetAll_GivesUpOnPersistentUnprocessed(t *testing.T) {
	retained := types.WriteRequest{
		DeleteRequest: &types.DeleteRequest{Key: questionRow("gaming", "q_000", "a")},
	}
	outs := make([]*dynamodb.BatchWriteItemOutput, 0, maxBatchRetries)
	for i := 0; i < maxBatchRetries; i++ {
		outs = append(outs, &dynamodb.BatchWriteItemOutput{
			UnprocessedItems: map[string][]types.WriteRequest{"faq-table": {retained}},
		})
	}
	db := &fakeDynamo{
		scanOuts: []*dynamodb.ScanOutput{{Items: []map[string]types.AttributeValue{
			questionRow("gaming", "q_000", "a"),
		}}},
		batchOuts: outs,
	}
	s := mustNewStore(t, db)

	err := s.ResetAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unprocessed")
	require.Len(t, db.batchInputs, maxBatchRetries)
}

func TestResetAll_ScanError(t *testing.T) {
	db := &fakeDynamo{scanErr: errors.New("boom")}
	s := mustNewStore(t, db)

	err := s.ResetAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ResetAll")
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	empty := &fakeDynamo{
		queryOut: nil, // ListTopics sees no topics
		getOut:   &dynamodb.GetItemOutput{Item: topicRow("gaming", "Gaming")},
	}
	s := mustNewStore(t, empty)

	seeded, err := s.Seed(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)
	require.NotNil(t, empty.lastPutInput)

	populated := &fakeDynamo{queryOut: &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{topicRow("gaming", "Gaming")},
	}}
	s = mustNewStore(t, populated)

	seeded, err = s.Seed(context.Background())
	require.NoError(t, err)
	require.False(t, seeded)
	require.Nil(t, populated.lastPutInput)
}
