package ddb

import (
	"context"
	"registra/internal/types"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// CompanyStore implements ports.CompanyStore on a single DynamoDB table.
// Each company owns two rows: the profile row (COMPANY#<id> / PROFILE) and
// a title-lock row (TITLE#<title> / LOCK) that enforces title uniqueness at
// the store instead of relying on the caller's pre-check.
type CompanyStore struct {
	table string
	cli   *dynamodb.Client
}

type companyItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	types.Company
}

type titleLockItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	ID string `dynamodbav:"id"`
}

func NewCompanyStore(table string, cli *dynamodb.Client) *CompanyStore {
	createTableIfNotExists(cli, table)
	return &CompanyStore{table: table, cli: cli}
}

func (s *CompanyStore) GetByID(ctx context.Context, id string) (types.Company, error) {
	out, err := s.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.table,
		ConsistentRead: awsBool(true),
		Key: map[string]ddbTypes.AttributeValue{
			"PK": &ddbTypes.AttributeValueMemberS{Value: pkCompany(id)},
			"SK": &ddbTypes.AttributeValueMemberS{Value: skProfile()},
		},
	})
	if err != nil {
		return types.Company{}, classifyReadErr(err)
	}
	if out.Item == nil {
		return types.Company{}, types.ErrNotFound
	}
	var item companyItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return types.Company{}, types.Err(types.ErrStore, err, "")
	}
	return item.Company, nil
}

func (s *CompanyStore) FindByTitle(ctx context.Context, title string) (types.Company, error) {
	out, err := s.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.table,
		ConsistentRead: awsBool(true),
		Key: map[string]ddbTypes.AttributeValue{
			"PK": &ddbTypes.AttributeValueMemberS{Value: pkTitle(title)},
			"SK": &ddbTypes.AttributeValueMemberS{Value: skLock()},
		},
	})
	if err != nil {
		return types.Company{}, classifyReadErr(err)
	}
	if out.Item == nil {
		return types.Company{}, types.ErrNotFound
	}
	var lock titleLockItem
	if err := attributevalue.UnmarshalMap(out.Item, &lock); err != nil {
		return types.Company{}, types.Err(types.ErrStore, err, "")
	}
	return s.GetByID(ctx, lock.ID)
}

// Insert assigns the id and writes the profile row and the title lock in one
// transaction. Both puts are guarded by attribute_not_exists, so two
// concurrent inserts with the same title cannot both commit; the loser is
// reported as types.ErrDuplicate.
func (s *CompanyStore) Insert(ctx context.Context, c types.Company) (types.Company, error) {
	draft := types.CompanyDraft{Title: c.Title, Description: c.Description, URL: c.URL}
	if fe := draft.Validate(); len(fe) > 0 {
		return types.Company{}, types.Err(types.ErrValidation, fe, "")
	}
	c.ID = uuid.NewString()

	profile, err := attributevalue.MarshalMap(companyItem{
		PK:      pkCompany(c.ID),
		SK:      skProfile(),
		Company: c,
	})
	if err != nil {
		return types.Company{}, types.Err(types.ErrStore, err, "")
	}
	lock, err := attributevalue.MarshalMap(titleLockItem{
		PK: pkTitle(c.Title),
		SK: skLock(),
		ID: c.ID,
	})
	if err != nil {
		return types.Company{}, types.Err(types.ErrStore, err, "")
	}

	_, err = s.cli.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbTypes.TransactWriteItem{
			{Put: &ddbTypes.Put{
				TableName:           &s.table,
				Item:                profile,
				ConditionExpression: awsString("attribute_not_exists(PK)"),
			}},
			{Put: &ddbTypes.Put{
				TableName:           &s.table,
				Item:                lock,
				ConditionExpression: awsString("attribute_not_exists(PK)"),
			}},
		},
	})
	if err != nil {
		return types.Company{}, classifyInsertErr(err, c.Title)
	}
	return c, nil
}

// Update overwrites the profile row. When the title changed, the old lock is
// released and the new one claimed in the same transaction; losing the new
// claim surfaces as types.ErrDuplicate.
func (s *CompanyStore) Update(ctx context.Context, c types.Company, prevTitle string) (types.Company, error) {
	profile, err := attributevalue.MarshalMap(companyItem{
		PK:      pkCompany(c.ID),
		SK:      skProfile(),
		Company: c,
	})
	if err != nil {
		return types.Company{}, types.Err(types.ErrStore, err, "")
	}

	if c.Title == prevTitle {
		_, err = s.cli.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           &s.table,
			Item:                profile,
			ConditionExpression: awsString("attribute_exists(PK)"),
		})
		if err != nil {
			var cc *ddbTypes.ConditionalCheckFailedException
			if errorAs(err, &cc) {
				return types.Company{}, types.ErrNotFound
			}
			return types.Company{}, types.Err(types.ErrStore, err, "")
		}
		return c, nil
	}

	lock, err := attributevalue.MarshalMap(titleLockItem{
		PK: pkTitle(c.Title),
		SK: skLock(),
		ID: c.ID,
	})
	if err != nil {
		return types.Company{}, types.Err(types.ErrStore, err, "")
	}
	_, err = s.cli.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbTypes.TransactWriteItem{
			{Put: &ddbTypes.Put{
				TableName:           &s.table,
				Item:                profile,
				ConditionExpression: awsString("attribute_exists(PK)"),
			}},
			{Put: &ddbTypes.Put{
				TableName:           &s.table,
				Item:                lock,
				ConditionExpression: awsString("attribute_not_exists(PK)"),
			}},
			{Delete: &ddbTypes.Delete{
				TableName: &s.table,
				Key: map[string]ddbTypes.AttributeValue{
					"PK": &ddbTypes.AttributeValueMemberS{Value: pkTitle(prevTitle)},
					"SK": &ddbTypes.AttributeValueMemberS{Value: skLock()},
				},
			}},
		},
	})
	if err != nil {
		var tce *ddbTypes.TransactionCanceledException
		if errorAs(err, &tce) {
			// Order matches TransactItems: profile condition, then new lock.
			for i, reason := range tce.CancellationReasons {
				if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
					continue
				}
				if i == 0 {
					return types.Company{}, types.ErrNotFound
				}
				return types.Company{}, types.Err(types.ErrDuplicate, nil, "company with title %q already exists", c.Title)
			}
		}
		return types.Company{}, types.Err(types.ErrStore, err, "")
	}
	return c, nil
}

func (s *CompanyStore) Delete(ctx context.Context, id, title string) error {
	_, err := s.cli.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbTypes.TransactWriteItem{
			{Delete: &ddbTypes.Delete{
				TableName: &s.table,
				Key: map[string]ddbTypes.AttributeValue{
					"PK": &ddbTypes.AttributeValueMemberS{Value: pkCompany(id)},
					"SK": &ddbTypes.AttributeValueMemberS{Value: skProfile()},
				},
				ConditionExpression: awsString("attribute_exists(PK)"),
			}},
			{Delete: &ddbTypes.Delete{
				TableName: &s.table,
				Key: map[string]ddbTypes.AttributeValue{
					"PK": &ddbTypes.AttributeValueMemberS{Value: pkTitle(title)},
					"SK": &ddbTypes.AttributeValueMemberS{Value: skLock()},
				},
			}},
		},
	})
	if err != nil {
		return classifyDeleteErr(err)
	}
	return nil
}

// classifyReadErr maps a malformed-key rejection to ErrNotFound; callers
// cannot act differently on "bad key" vs "no such record".
func classifyReadErr(err error) error {
	var apiErr smithy.APIError
	if errorAs(err, &apiErr) && apiErr.ErrorCode() == "ValidationException" {
		return types.ErrNotFound
	}
	return types.Err(types.ErrStore, err, "")
}

// conditionFailed reports whether any item of a canceled transaction was
// rejected by its condition expression. Other cancellation codes
// (TransactionConflict, throttling) mean the write itself failed.
func conditionFailed(tce *ddbTypes.TransactionCanceledException) bool {
	for _, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

// classifyInsertErr turns a condition rejection into ErrDuplicate; both
// insert items carry attribute_not_exists, and a fresh uuid never collides
// on the profile row in practice, so the title lock is the one that trips.
func classifyInsertErr(err error, title string) error {
	var tce *ddbTypes.TransactionCanceledException
	if errorAs(err, &tce) && conditionFailed(tce) {
		return types.Err(types.ErrDuplicate, nil, "company with title %q already exists", title)
	}
	return types.Err(types.ErrStore, err, "")
}

// classifyDeleteErr turns a condition rejection into ErrNotFound; only the
// profile delete is conditioned, the lock delete cannot trip it.
func classifyDeleteErr(err error) error {
	var tce *ddbTypes.TransactionCanceledException
	if errorAs(err, &tce) && conditionFailed(tce) {
		return types.ErrNotFound
	}
	return types.Err(types.ErrStore, err, "")
}
