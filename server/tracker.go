// Copyright 2025 The Link2Trust Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"time"

	ttlcache "github.com/jellydator/ttlcache/v3"
)

// Scan lifecycle states reported by the status endpoint.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// scanState is the tracked state of one initiated scan.
type scanState struct {
	Status   string
	Progress string
	Error    string
}

// tracker records the lifecycle of initiated scans. Running entries never
// expire; terminal entries stay queryable for the retention period so clients
// can poll for the outcome before the record is dropped.
type tracker struct {
	cache *ttlcache.Cache[string, scanState]
}

func newTracker(retention time.Duration) *tracker {
	cache := ttlcache.New[string, scanState](
		ttlcache.WithTTL[string, scanState](retention),
		ttlcache.WithDisableTouchOnHit[string, scanState](),
	)

	go cache.Start()

	return &tracker{cache: cache}
}

func (t *tracker) start(id string) {
	t.cache.Set(id, scanState{Status: StatusRunning, Progress: "Preparing scan..."}, ttlcache.NoTTL)
}

func (t *tracker) progress(id, progress string) {
	t.cache.Set(id, scanState{Status: StatusRunning, Progress: progress}, ttlcache.NoTTL)
}

func (t *tracker) complete(id, progress string) {
	t.cache.Set(id, scanState{Status: StatusCompleted, Progress: progress}, ttlcache.DefaultTTL)
}

func (t *tracker) fail(id, message string) {
	t.cache.Set(id, scanState{Status: StatusFailed, Error: message}, ttlcache.DefaultTTL)
}

func (t *tracker) get(id string) (scanState, bool) {
	item := t.cache.Get(id)
	if item == nil {
		return scanState{}, false
	}

	return item.Value(), true
}

func (t *tracker) stop() {
	t.cache.Stop()
}
