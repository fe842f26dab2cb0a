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

	"lovtiti-ussd/internal/domain"
)

const (
	pkPrefixKYC   = "KYC#"
	skPrefixRole  = "ROLE#"
	statusPending = "pending_review"
	channelUSSD   = "ussd"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ErrNotFound is returned when a submission does not exist.
var ErrNotFound = errors.New("repository: submission not found")

// Client wraps a DynamoDB table of KYC submissions.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func submissionPK(id string) string {
	return pkPrefixKYC + id
}

func roleSK(role domain.Role) string {
	return skPrefixRole + string(role)
}

// SaveSubmission writes a completed KYC record. A submission ID is written at
// most once.
func (c *Client) SaveSubmission(ctx context.Context, sub domain.Submission) error {
	if strings.TrimSpace(sub.ID) == "" {
		return errors.New("repository: SaveSubmission: submission id is required")
	}
	if !sub.Role.Valid() {
		return fmt.Errorf("repository: SaveSubmission: invalid role %q", sub.Role)
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                submissionItem(sub),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: SaveSubmission: %w", err)
	}
	return nil
}

// GetSubmission loads a submission by ID and role.
func (c *Client) GetSubmission(ctx context.Context, id string, role domain.Role) (domain.Submission, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: submissionPK(id)},
			"SK": &types.AttributeValueMemberS{Value: roleSK(role)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Submission{}, fmt.Errorf("repository: GetSubmission get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Submission{}, ErrNotFound
	}
	sub, err := itemToSubmission(out.Item)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("repository: GetSubmission decode: %w", err)
	}
	return sub, nil
}

func submissionItem(sub domain.Submission) map[string]types.AttributeValue {
	fields := make(map[string]types.AttributeValue, len(sub.Fields))
	for k, v := range sub.Fields {
		fields[k] = &types.AttributeValueMemberS{Value: v}
	}
	return map[string]types.AttributeValue{
		"PK":          &types.AttributeValueMemberS{Value: submissionPK(sub.ID)},
		"SK":          &types.AttributeValueMemberS{Value: roleSK(sub.Role)},
		"id":          &types.AttributeValueMemberS{Value: sub.ID},
		"role":        &types.AttributeValueMemberS{Value: string(sub.Role)},
		"sessionId":   &types.AttributeValueMemberS{Value: sub.SessionID},
		"phoneNumber": &types.AttributeValueMemberS{Value: sub.PhoneNumber},
		"fields":      &types.AttributeValueMemberM{Value: fields},
		"submittedAt": &types.AttributeValueMemberS{Value: sub.SubmittedAt.UTC().Format(time.RFC3339Nano)},
		"status":      &types.AttributeValueMemberS{Value: statusPending},
		"channel":     &types.AttributeValueMemberS{Value: channelUSSD},
	}
}

// itemToSubmission converts a DynamoDB attribute map to a Submission.
func itemToSubmission(item map[string]types.AttributeValue) (domain.Submission, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Submission{}, err
	}
	role, err := strAttr(item, "role")
	if err != nil {
		return domain.Submission{}, err
	}
	sessionID, _ := strAttr(item, "sessionId") // allow empty
	phone, _ := strAttr(item, "phoneNumber")   // allow empty
	submittedAt, err := strAttr(item, "submittedAt")
	if err != nil {
		return domain.Submission{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, submittedAt)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("repository: parse submittedAt: %w", err)
	}
	fields, err := mapAttr(item, "fields")
	if err != nil {
		return domain.Submission{}, err
	}
	return domain.Submission{
		ID:          id,
		SessionID:   sessionID,
		PhoneNumber: phone,
		Role:        domain.Role(role),
		Fields:      fields,
		SubmittedAt: ts,
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

func mapAttr(item map[string]types.AttributeValue, key string) (map[string]string, error) {
	v, ok := item[key]
	if !ok {
		return map[string]string{}, nil
	}
	m, ok := v.(*types.AttributeValueMemberM)
	if !ok {
		return nil, fmt.Errorf("repository: attribute %q is not a map", key)
	}
	out := make(map[string]string, len(m.Value))
	for k, av := range m.Value {
		s, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return nil, fmt.Errorf("repository: field %q is not a string", k)
		}
		out[k] = s.Value
	}
	return out, nil
}
