package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"faq-agent/internal/domain"
)

const (
	topicPK          = "TOPIC"
	questionPKPrefix = "TOPIC#"
	questionSKPrefix = "FAQ#"

	batchDeleteChunk = 25

	// maxTransactItems is DynamoDB's per-request cap on TransactWriteItems.
	maxTransactItems = 100

	maxBatchRetries     = 5
	batchRetryBaseDelay = 50 * time.Millisecond
)

// Sentinel conditions surfaced to the usecase layer. Both are recovered
// locally and turned into user-facing rejections, never process failures.
var (
	ErrDuplicate = errors.New("repository: duplicate key")
	ErrNotFound  = errors.New("repository: not found")
)

// dynamodbAPI is the minimal DynamoDB interface required by Store.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Store wraps a single DynamoDB table holding FAQ content. Topic metadata
// lives in one partition (PK "TOPIC"); each topic's questions live in their
// own partition (PK "TOPIC#<key>").
type Store struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new content Store.
func New(api dynamodbAPI, tableName string) (*Store, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Store{api: api, tableName: tableName}, nil
}

func questionPK(topicKey string) string {
	return questionPKPrefix + topicKey
}

func questionSK(questionKey string) string {
	return questionSKPrefix + questionKey
}

// ListTopics returns all topics in key order.
func (s *Store) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: topicPK},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: ListTopics query: %w", err)
	}

	topics := make([]domain.Topic, 0, len(out.Items))
	for _, item := range out.Items {
		topic, err := itemToTopic(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListTopics unmarshal: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// GetTopic returns the topic with the given key, or ErrNotFound.
func (s *Store) GetTopic(ctx context.Context, topicKey string) (domain.Topic, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: topicPK},
			"SK": &types.AttributeValueMemberS{Value: topicKey},
		},
	})
	if err != nil {
		return domain.Topic{}, fmt.Errorf("repository: GetTopic get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Topic{}, ErrNotFound
	}
	topic, err := itemToTopic(out.Item)
	if err != nil {
		return domain.Topic{}, fmt.Errorf("repository: GetTopic unmarshal: %w", err)
	}
	return topic, nil
}

// ListQuestions returns a topic's questions in key order. A missing or empty
// topic yields an empty slice, not an error.
func (s *Store) ListQuestions(ctx context.Context, topicKey string) ([]domain.Question, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: questionPK(topicKey)},
			":prefix": &types.AttributeValueMemberS{Value: questionSKPrefix},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: ListQuestions query: %w", err)
	}

	questions := make([]domain.Question, 0, len(out.Items))
	for _, item := range out.Items {
		q, err := itemToQuestion(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListQuestions unmarshal: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// GetAnswer looks up one question scoped by topic, or ErrNotFound.
func (s *Store) GetAnswer(ctx context.Context, topicKey, questionKey string) (domain.Question, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: questionPK(topicKey)},
			"SK": &types.AttributeValueMemberS{Value: questionSK(questionKey)},
		},
	})
	if err != nil {
		return domain.Question{}, fmt.Errorf("repository: GetAnswer get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Question{}, ErrNotFound
	}
	q, err := itemToQuestion(out.Item)
	if err != nil {
		return domain.Question{}, fmt.Errorf("repository: GetAnswer unmarshal: %w", err)
	}
	return q, nil
}

// CreateTopic inserts a new topic, or ErrDuplicate when the key exists.
func (s *Store) CreateTopic(ctx context.Context, topic domain.Topic) error {
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                topicItem(topic),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("repository: CreateTopic: %w", err)
	}
	return nil
}

// RenameTopic moves a topic and every question it owns to a new key. The
// topic meta swap runs in one transaction, so a taken new key fails cleanly
// before any question moves; questions are then re-homed in batches sized to
// the TransactWriteItems item cap. Returns ErrNotFound when the old key is
// missing and ErrDuplicate when the new key is taken.
func (s *Store) RenameTopic(ctx context.Context, oldKey, newKey, newLabel string) error {
	if _, err := s.GetTopic(ctx, oldKey); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: RenameTopic: %w", err)
	}

	questions, err := s.ListQuestions(ctx, oldKey)
	if err != nil {
		return fmt.Errorf("repository: RenameTopic: %w", err)
	}

	meta := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName: aws.String(s.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: topicPK},
					"SK": &types.AttributeValueMemberS{Value: oldKey},
				},
			},
		},
		{
			Put: &types.Put{
				TableName:           aws.String(s.tableName),
				Item:                topicItem(domain.Topic{Key: newKey, Label: newLabel}),
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			},
		},
	}
	if _, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: meta}); err != nil {
		if isTransactionConditionFailure(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("repository: RenameTopic transact: %w", err)
	}

	// Each question contributes a delete and a put, so a batch holds at most
	// half the item cap worth of questions.
	perBatch := maxTransactItems / 2
	for start := 0; start < len(questions); start += perBatch {
		end := start + perBatch
		if end > len(questions) {
			end = len(questions)
		}
		items := make([]types.TransactWriteItem, 0, 2*(end-start))
		for _, q := range questions[start:end] {
			items = append(items,
				types.TransactWriteItem{
					Delete: &types.Delete{
						TableName: aws.String(s.tableName),
						Key: map[string]types.AttributeValue{
							"PK": &types.AttributeValueMemberS{Value: questionPK(oldKey)},
							"SK": &types.AttributeValueMemberS{Value: questionSK(q.QuestionKey)},
						},
					},
				},
				types.TransactWriteItem{
					Put: &types.Put{
						TableName: aws.String(s.tableName),
						Item: questionItem(domain.Question{
							TopicKey:    newKey,
							QuestionKey: q.QuestionKey,
							Answer:      q.Answer,
						}),
					},
				},
			)
		}
		if _, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
			return fmt.Errorf("repository: RenameTopic move questions: %w", err)
		}
	}
	return nil
}

// DeleteTopic removes a topic and all of its questions. The deletes are
// batched to the TransactWriteItems item cap, meta first so the topic
// disappears from menus before its questions drain. Returns ErrNotFound when
// the topic does not exist.
func (s *Store) DeleteTopic(ctx context.Context, topicKey string) error {
	if _, err := s.GetTopic(ctx, topicKey); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: DeleteTopic: %w", err)
	}

	questions, err := s.ListQuestions(ctx, topicKey)
	if err != nil {
		return fmt.Errorf("repository: DeleteTopic: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, 1+len(questions))
	items = append(items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: topicPK},
				"SK": &types.AttributeValueMemberS{Value: topicKey},
			},
		},
	})
	for _, q := range questions {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: questionPK(topicKey)},
					"SK": &types.AttributeValueMemberS{Value: questionSK(q.QuestionKey)},
				},
			},
		})
	}

	for start := 0; start < len(items); start += maxTransactItems {
		end := start + maxTransactItems
		if end > len(items) {
			end = len(items)
		}
		if _, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items[start:end]}); err != nil {
			return fmt.Errorf("repository: DeleteTopic transact: %w", err)
		}
	}
	return nil
}

// CreateQuestion inserts a question under an existing topic. Returns
// ErrNotFound when the topic is missing and ErrDuplicate when the question
// key already exists in that topic.
func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) error {
	if _, err := s.GetTopic(ctx, q.TopicKey); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: CreateQuestion: %w", err)
	}

	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                questionItem(q),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("repository: CreateQuestion: %w", err)
	}
	return nil
}

// UpdateQuestionAnswer replaces a question's stored answer, or ErrNotFound.
func (s *Store) UpdateQuestionAnswer(ctx context.Context, topicKey, questionKey, answer string) error {
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: questionItem(domain.Question{
			TopicKey:    topicKey,
			QuestionKey: questionKey,
			Answer:      answer,
		}),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: UpdateQuestionAnswer: %w", err)
	}
	return nil
}

// DeleteQuestion removes one question, or ErrNotFound.
func (s *Store) DeleteQuestion(ctx context.Context, topicKey, questionKey string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: questionPK(topicKey)},
			"SK": &types.AttributeValueMemberS{Value: questionSK(questionKey)},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: DeleteQuestion: %w", err)
	}
	return nil
}

// ResetAll deletes every topic and question in the table.
func (s *Store) ResetAll(ctx context.Context) error {
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(s.tableName),
			ProjectionExpression: aws.String("PK, SK"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return fmt.Errorf("repository: ResetAll scan: %w", err)
		}

		for start := 0; start < len(out.Items); start += batchDeleteChunk {
			end := start + batchDeleteChunk
			if end > len(out.Items) {
				end = len(out.Items)
			}
			requests := make([]types.WriteRequest, 0, end-start)
			for _, item := range out.Items[start:end] {
				requests = append(requests, types.WriteRequest{
					DeleteRequest: &types.DeleteRequest{Key: item},
				})
			}
			if err := s.batchDelete(ctx, requests); err != nil {
				return err
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// batchDelete issues one delete batch and re-submits whatever DynamoDB
// reports back as unprocessed, backing off between attempts. Deletes still
// unprocessed after maxBatchRetries attempts fail the reset.
func (s *Store) batchDelete(ctx context.Context, requests []types.WriteRequest) error {
	for attempt := 1; ; attempt++ {
		out, err := s.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("repository: ResetAll batch delete: %w", err)
		}
		requests = out.UnprocessedItems[s.tableName]
		if len(requests) == 0 {
			return nil
		}
		if attempt >= maxBatchRetries {
			return fmt.Errorf("repository: ResetAll: %d deletes unprocessed after %d attempts", len(requests), attempt)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("repository: ResetAll: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * batchRetryBaseDelay):
		}
	}
}

func topicItem(topic domain.Topic) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: topicPK},
		"SK":    &types.AttributeValueMemberS{Value: topic.Key},
		"label": &types.AttributeValueMemberS{Value: topic.Label},
	}
}

func questionItem(q domain.Question) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":     &types.AttributeValueMemberS{Value: questionPK(q.TopicKey)},
		"SK":     &types.AttributeValueMemberS{Value: questionSK(q.QuestionKey)},
		"answer": &types.AttributeValueMemberS{Value: q.Answer},
	}
}

func itemToTopic(item map[string]types.AttributeValue) (domain.Topic, error) {
	key, err := strAttr(item, "SK")
	if err != nil {
		return domain.Topic{}, err
	}
	label, err := strAttr(item, "label")
	if err != nil {
		return domain.Topic{}, err
	}
	return domain.Topic{Key: key, Label: label}, nil
}

func itemToQuestion(item map[string]types.AttributeValue) (domain.Question, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.Question{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.Question{}, err
	}
	answer, err := strAttr(item, "answer")
	if err != nil {
		return domain.Question{}, err
	}
	return domain.Question{
		TopicKey:    strings.TrimPrefix(pk, questionPKPrefix),
		QuestionKey: strings.TrimPrefix(sk, questionSKPrefix),
		Answer:      answer,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func isConditionalCheckFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func isTransactionConditionFailure(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
