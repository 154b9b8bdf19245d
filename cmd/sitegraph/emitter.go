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

package main

import (
	"github.com/agentberlin/sitegraph/internal/app"
	"github.com/agentberlin/sitegraph/internal/logger"
)

// cliEmitter logs app events.
type cliEmitter struct {
	log *logger.Logger
}

func (e *cliEmitter) Emit(eventType app.EventType, data interface{}) {
	switch eventType {
	case app.EventPageCrawled:
		ev, ok := data.(app.PageEvent)
		if !ok {
			return
		}
		l := e.log.WithURL(ev.URL).WithDepth(ev.Depth).WithField("processed", ev.Processed)
		if ev.Unchanged {
			l.Debug("Page unchanged")
			return
		}
		l.WithField("method", ev.Method).Info("Crawled page")
	case app.EventCrawlFailed, app.EventCrawlCompleted, app.EventCrawlStarted,
		app.EventGraphStarted, app.EventGraphCompleted:
		e.log.WithField("data", data).Info(string(eventType))
	default:
		e.log.Debug(string(eventType))
	}
}
