package ddb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

const (
	SCompany  = "COMPANY"
	STitle    = "TITLE"
	SDiverge  = "DIVERGE"
	SKProfile = "PROFILE"
	SKLock    = "LOCK"
)

func pkCompany(id string) string  { return fmt.Sprintf("%s#%s", SCompany, id) }
func skProfile() string           { return SKProfile }
func pkTitle(title string) string { return fmt.Sprintf("%s#%s", STitle, title) }
func skLock() string              { return SKLock }
func pkDiverge(id string) string  { return fmt.Sprintf("%s#%s", SDiverge, id) }
func skDivergeAt(ts int64) string { return fmt.Sprintf("TS#%d", ts) }

func createTableIfNotExists(client *dynamodb.Client, table string) {
	_, err := client.CreateTable(context.Background(), &dynamodb.CreateTableInput{
		TableName: &table,
		AttributeDefinitions: []ddbTypes.AttributeDefinition{
			{AttributeName: awsString("PK"), AttributeType: ddbTypes.ScalarAttributeTypeS},
			{AttributeName: awsString("SK"), AttributeType: ddbTypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbTypes.KeySchemaElement{
			{AttributeName: awsString("PK"), KeyType: ddbTypes.KeyTypeHash},
			{AttributeName: awsString("SK"), KeyType: ddbTypes.KeyTypeRange},
		},
		BillingMode: ddbTypes.BillingModePayPerRequest,
	})
	var re *ddbTypes.ResourceInUseException
	if err != nil && !errors.As(err, &re) {
		log.Fatalf("Failed to create table %s: %v", table, err)
	}
}

func awsString(s string) *string         { return &s }
func awsBool(b bool) *bool               { return &b }
func errorAs(err error, target any) bool { return errors.As(err, target) }
