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

// Command rbac-seed creates a resource along with its reserved default
// scope, so that a fresh resource has somewhere for principal access to
// bottom out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rbacforge/rbac/internal/config"
	"github.com/rbacforge/rbac/internal/rbac"
)

func main() {
	resourceName := flag.String("resource", "", "resource name to seed")
	flag.Parse()
	if *resourceName == "" {
		fmt.Fprintln(os.Stderr, "usage: rbac-seed -resource <name>")
		os.Exit(2)
	}

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

	repo := rbac.NewRepository(rbac.NewDynamoGateway(client, cfg.Table.Name))

	if _, err := repo.CreateResource(ctx, *resourceName); err != nil && rbac.KindOf(err) != rbac.KindAlreadyExists {
		fmt.Fprintf(os.Stderr, "failed to create resource: %v\n", err)
		os.Exit(1)
	}

	if _, err := repo.CreateScope(ctx, *resourceName, rbac.DefaultScopeName); err != nil && rbac.KindOf(err) != rbac.KindAlreadyExists {
		fmt.Fprintf(os.Stderr, "failed to create default scope: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded resource %q with default scope\n", *resourceName)
}
