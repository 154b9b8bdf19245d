// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

package app

import (
	"fmt"
	"sync"
)

// ErrBuildInProgress is returned when a graph build is already running for
// the site.
type ErrBuildInProgress struct {
	SiteID string
}

func (e *ErrBuildInProgress) Error() string {
	return fmt.Sprintf("graph build already in progress for site %s", e.SiteID)
}

// BuildRegistry tracks which sites have a graph build running.
type BuildRegistry struct {
	mu     sync.Mutex
	active map[string]bool
}

func NewBuildRegistry() *BuildRegistry {
	return &BuildRegistry{active: make(map[string]bool)}
}

// Acquire claims the build slot for siteID. The returned release func must
// be called when the build finishes; calling it more than once is harmless.
func (r *BuildRegistry) Acquire(siteID string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[siteID] {
		return nil, &ErrBuildInProgress{SiteID: siteID}
	}
	r.active[siteID] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.active, siteID)
			r.mu.Unlock()
		})
	}, nil
}

// IsBuilding reports whether a build for siteID is running.
func (r *BuildRegistry) IsBuilding(siteID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[siteID]
}
