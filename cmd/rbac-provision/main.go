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

// Command rbac-provision creates the single wide table the rbac package
// needs, if it does not already exist. Table name and region come from the
// same RBAC_TABLE_* environment variables cmd/server reads.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rbacforge/rbac/internal/config"
	"github.com/rbacforge/rbac/internal/rbac"
)

func main() {
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

	_, err = client.CreateTable(ctx, rbac.TableSchema(cfg.Table.Name))
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		fmt.Printf("table %q already exists\n", cfg.Table.Name)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create table: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created table %q\n", cfg.Table.Name)
}
