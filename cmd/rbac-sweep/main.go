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

// Command rbac-sweep runs Repository.SweepOrphans for one or every
// resource, rewriting both dual-index rows of each assignment found in the
// resource's partition so that a pair left half-written by a prior partial
// batch failure is restored. Each sweep emits an audit event, so orphan
// repairs are visible to operators rather than silently dropped. Intended
// to run on a schedule alongside the service, not inline with request
// handling.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rbacforge/rbac/internal/config"
	"github.com/rbacforge/rbac/internal/rbac"
)

func main() {
	resourceName := flag.String("resource", "", "sweep a single resource; sweeps every resource if omitted")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Table.Region))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load aws config: %v\n", err)
		os.Exit(1)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Table.Endpoint != "" {
			o.BaseEndpoint = &cfg.Table.Endpoint
		}
	})

	repo := rbac.NewRepository(rbac.NewDynamoGateway(client, cfg.Table.Name), rbac.WithAuditLogger(rbac.NewAuditLogger(slog.Default())))

	resources := []string{*resourceName}
	if *resourceName == "" {
		var err error
		resources, err = scanResourceNames(ctx, client, cfg.Table.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to enumerate resources: %v\n", err)
			os.Exit(1)
		}
	}

	for _, name := range resources {
		if err := repo.SweepOrphans(ctx, name); err != nil {
			fmt.Fprintf(os.Stderr, "sweep failed for resource %q: %v\n", name, err)
			continue
		}
		fmt.Printf("swept resource %q\n", name)
	}
}

// scanResourceNames lists every live resource definition row by scanning the
// table for sort keys equal to the resource sentinel. A full table scan is
// acceptable here: this command runs out-of-band of request handling, not
// on a latency-sensitive path.
func scanResourceNames(ctx context.Context, client *dynamodb.Client, table string) ([]string, error) {
	var names []string
	var exclusiveStart map[string]types.AttributeValue

	for {
		out, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 &table,
			FilterExpression:          strPtr("sk = :sentinel"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":sentinel": &types.AttributeValueMemberS{Value: "RESOURCE"}},
			ExclusiveStartKey:         exclusiveStart,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			var r struct {
				ResourceName string `dynamodbav:"_resourceName"`
			}
			if err := attributevalue.UnmarshalMap(item, &r); err != nil {
				return nil, err
			}
			if r.ResourceName != "" {
				names = append(names, r.ResourceName)
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		exclusiveStart = out.LastEvaluatedKey
	}
	return names, nil
}

func strPtr(s string) *string { return &s }
