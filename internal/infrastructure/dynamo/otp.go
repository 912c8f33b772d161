package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/storeerr"
)

const (
	attrEmail     = "email"
	attrExpiresAt = "expires_at"
)

// OTPRepo stores pending verification codes.
// PK: email. One item per email, so Put supersedes any earlier code.
type OTPRepo struct {
	client    API
	tableName string
	timeout   time.Duration
}

func NewOTPRepo(client API, tableName string, timeout time.Duration) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName, timeout: timeout}
}

func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return storeerr.Wrap("put otp record", err)
}

// GetByEmail returns domain.ErrNoPendingVerification when no item exists.
// Items past their TTL may linger until DynamoDB reaps them; callers check Expired.
func (r *OTPRepo) GetByEmail(ctx context.Context, email string) (*domain.OTPRecord, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storeerr.Wrap("get otp record", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp record: %w", domain.ErrNoPendingVerification)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &rec, nil
}

// DeleteByEmail is a no-op when the item does not exist.
func (r *OTPRepo) DeleteByEmail(ctx context.Context, email string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrEmail, email),
	})
	return storeerr.Wrap("delete otp record", err)
}
