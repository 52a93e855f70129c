package ddb

import (
	"context"
	"registra/internal/types"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DivergenceJournal persists index-write failures in the same table as the
// company rows, keyed DIVERGE#<id> / TS#<at>. Entries are append-only; a
// re-index job consumes and clears them out of band.
type DivergenceJournal struct {
	table string
	cli   *dynamodb.Client
}

type divergenceItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	types.Divergence
}

func NewDivergenceJournal(table string, cli *dynamodb.Client) *DivergenceJournal {
	createTableIfNotExists(cli, table)
	return &DivergenceJournal{table: table, cli: cli}
}

func (j *DivergenceJournal) Record(ctx context.Context, d types.Divergence) error {
	item, err := attributevalue.MarshalMap(divergenceItem{
		PK:         pkDiverge(d.ID),
		SK:         skDivergeAt(d.At),
		Divergence: d,
	})
	if err != nil {
		return types.Err(types.ErrStore, err, "")
	}
	_, err = j.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &j.table,
		Item:      item,
	})
	if err != nil {
		return types.Err(types.ErrStore, err, "")
	}
	return nil
}
