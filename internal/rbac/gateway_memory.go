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
	"sort"
	"strings"
	"sync"
)

// memoryGateway is an in-process Gateway backed by a mutex-guarded map,
// used by the unit tests in this package. It follows the same single-table,
// prefix-query contract as the DynamoDB gateway, so callers are exercised
// through the exact same interface as production with no special-casing.
type memoryGateway struct {
	mu    sync.RWMutex
	items map[itemKey]row
}

var _ Gateway = (*memoryGateway)(nil)

// NewMemoryGateway constructs an in-process Gateway. Exported so that
// integration-style tests outside this package can exercise the Repository
// without a live DynamoDB endpoint.
func NewMemoryGateway() Gateway {
	return &memoryGateway{items: make(map[itemKey]row)}
}

func (g *memoryGateway) PutBatch(ctx context.Context, items []row) error {
	if err := ctx.Err(); err != nil {
		return wrapTransient(err, "put batch canceled")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, it := range items {
		g.items[keyOf(it)] = it
	}
	return nil
}

func (g *memoryGateway) PutIfNotExists(ctx context.Context, item row) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, wrapTransient(err, "put canceled")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	k := keyOf(item)
	if _, exists := g.items[k]; exists {
		return false, nil
	}
	g.items[k] = item
	return true, nil
}

func (g *memoryGateway) DeleteBatch(ctx context.Context, keys []itemKey) error {
	if err := ctx.Err(); err != nil {
		return wrapTransient(err, "delete batch canceled")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range keys {
		delete(g.items, k)
	}
	return nil
}

func (g *memoryGateway) GetItem(ctx context.Context, key itemKey) (*row, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapTransient(err, "get canceled")
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if it, ok := g.items[key]; ok {
		cp := it
		return &cp, nil
	}
	return nil, nil
}

func (g *memoryGateway) Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]row, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapTransient(err, "query canceled")
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []row
	for k, it := range g.items {
		if k.PK != partitionKey {
			continue
		}
		if !strings.HasPrefix(k.SK, sortKeyPrefix) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SK < out[j].SK })
	return out, nil
}
