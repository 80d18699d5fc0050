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

import "context"

// batchLimit bounds how many items a single PutBatch/DeleteBatch call issues
// to the underlying store per request; larger inputs are chunked. DynamoDB's
// BatchWriteItem caps a single request at 25 items.
const batchLimit = 25

// itemKey identifies a row by its primary key for GetItem/DeleteBatch.
type itemKey struct {
	PK string
	SK string
}

func keyOf(r row) itemKey {
	return itemKey{PK: r.PK, SK: r.SK}
}

// Gateway is the only component aware of the underlying key-value store's
// SDK; every other component in this package traffics in row values and
// keys emitted by keys.go. A Gateway implementation must:
//
//   - chunk PutBatch/DeleteBatch calls larger than the store's batch limit
//     and issue them serially, succeeding only when every chunk completes;
//   - transparently follow pagination tokens in Query until exhausted;
//   - tolerate the absence of a row on Delete (not an error);
//   - surface throttling/timeout/connection failures as a Transient *Error
//     and unexpected response shapes as an Internal *Error.
type Gateway interface {
	// PutBatch idempotently writes items. Chunks internally if len(items)
	// exceeds the store's batch limit.
	PutBatch(ctx context.Context, items []row) error

	// PutIfNotExists writes item only if no row exists at its primary key.
	// Returns (false, nil) if a row already existed; a weaker
	// read-then-put emulation is acceptable here because definition rows
	// carry no payload beyond their identity.
	PutIfNotExists(ctx context.Context, item row) (created bool, err error)

	// DeleteBatch deletes rows by key. Absence of a row is not an error.
	// Chunks internally if len(keys) exceeds the store's batch limit.
	DeleteBatch(ctx context.Context, keys []itemKey) error

	// GetItem fetches a single row by its exact primary key. Returns
	// (nil, nil) if no such row exists.
	GetItem(ctx context.Context, key itemKey) (*row, error)

	// Query enumerates every row with PK == partitionKey and SK beginning
	// with sortKeyPrefix, following pagination to exhaustion.
	Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]row, error)
}

func chunks(n, size int) [][2]int {
	if n == 0 {
		return nil
	}
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
