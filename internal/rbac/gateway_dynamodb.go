// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rbac

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	smithy "github.com/aws/smithy-go"
)

// dynamoGateway is the production Gateway, a thin wrapper around a single
// wide DynamoDB table keyed on (pk, sk). It is the only file in this
// package that imports the AWS SDK; every other component traffics in row
// values and itemKeys emitted by keys.go.
type dynamoGateway struct {
	client *dynamodb.Client
	table  string
}

var _ Gateway = (*dynamoGateway)(nil)

// NewDynamoGateway constructs a Gateway backed by table on client.
func NewDynamoGateway(client *dynamodb.Client, table string) Gateway {
	return &dynamoGateway{client: client, table: table}
}

func (g *dynamoGateway) PutBatch(ctx context.Context, items []row) error {
	for _, span := range chunks(len(items), batchLimit) {
		chunk := items[span[0]:span[1]]
		writeReqs := make([]types.WriteRequest, 0, len(chunk))
		for _, it := range chunk {
			av, err := attributevalue.MarshalMap(it)
			if err != nil {
				return wrapInternal(err, "marshal row")
			}
			writeReqs = append(writeReqs, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: av},
			})
		}
		if err := g.batchWriteWithRetry(ctx, writeReqs); err != nil {
			return err
		}
	}
	return nil
}

func (g *dynamoGateway) batchWriteWithRetry(ctx context.Context, reqs []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{g.table: reqs}
	for len(pending[g.table]) > 0 {
		out, err := g.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return translateDynamoErr(err, "batch write")
		}
		pending = out.UnprocessedItems
	}
	return nil
}

func (g *dynamoGateway) PutIfNotExists(ctx context.Context, item row) (bool, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return false, wrapInternal(err, "marshal row")
	}
	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(g.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(pk) AND attribute_not_exists(sk)"),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return false, nil
		}
		return false, translateDynamoErr(err, "conditional put")
	}
	return true, nil
}

func (g *dynamoGateway) DeleteBatch(ctx context.Context, keys []itemKey) error {
	for _, span := range chunks(len(keys), batchLimit) {
		chunk := keys[span[0]:span[1]]
		writeReqs := make([]types.WriteRequest, 0, len(chunk))
		for _, k := range chunk {
			writeReqs = append(writeReqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"pk": &types.AttributeValueMemberS{Value: k.PK},
						"sk": &types.AttributeValueMemberS{Value: k.SK},
					},
				},
			})
		}
		if err := g.batchWriteWithRetry(ctx, writeReqs); err != nil {
			return err
		}
	}
	return nil
}

func (g *dynamoGateway) GetItem(ctx context.Context, key itemKey) (*row, error) {
	out, err := g.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(g.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: key.PK},
			"sk": &types.AttributeValueMemberS{Value: key.SK},
		},
	})
	if err != nil {
		return nil, translateDynamoErr(err, "get item")
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var r row
	if err := attributevalue.UnmarshalMap(out.Item, &r); err != nil {
		return nil, wrapInternal(err, "unmarshal row")
	}
	return &r, nil
}

func (g *dynamoGateway) Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]row, error) {
	var out []row
	var exclusiveStart map[string]types.AttributeValue

	for {
		keyCond := "pk = :pk"
		values := map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: partitionKey},
		}
		if sortKeyPrefix != "" {
			keyCond += " AND begins_with(sk, :skPrefix)"
			values[":skPrefix"] = &types.AttributeValueMemberS{Value: sortKeyPrefix}
		}

		resp, err := g.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(g.table),
			KeyConditionExpression:    aws.String(keyCond),
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         exclusiveStart,
		})
		if err != nil {
			return nil, translateDynamoErr(err, "query")
		}

		for _, item := range resp.Items {
			var r row
			if err := attributevalue.UnmarshalMap(item, &r); err != nil {
				return nil, wrapInternal(err, "unmarshal row")
			}
			out = append(out, r)
		}

		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		exclusiveStart = resp.LastEvaluatedKey
	}

	return out, nil
}

// translateDynamoErr maps SDK errors onto the package error taxonomy:
// throttling/timeout/connection failures are Transient and retryable,
// everything else unexpected is Internal.
func translateDynamoErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException",
			"ThrottlingException",
			"RequestLimitExceeded",
			"LimitExceededException",
			"InternalServerError":
			return wrapTransient(err, op)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return wrapTransient(err, op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return wrapTransient(err, op)
	}
	return wrapInternal(err, fmt.Sprintf("unexpected dynamodb error during %s", op))
}

// TableSchema returns the key schema and attribute definitions
// cmd/rbac-provision needs to create the single wide table.
func TableSchema(tableName string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}
