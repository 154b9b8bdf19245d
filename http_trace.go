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


package sitegraph

import (
	"net/http"
	"net/http/httptrace"
	"time"
)

// FetchTiming records where the time of one HTTP fetch went.
type FetchTiming struct {
	start, connect time.Time

	ConnectDuration   time.Duration
	FirstByteDuration time.Duration
	TotalDuration     time.Duration
}

func (ft *FetchTiming) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn:      func(string) { ft.start = time.Now() },
		ConnectStart: func(string, string) { ft.connect = time.Now() },
		ConnectDone: func(string, string, error) {
			ft.ConnectDuration = time.Since(ft.connect)
		},
		GotFirstResponseByte: func() {
			ft.FirstByteDuration = time.Since(ft.start)
		},
	}
}

// attach returns req with the trace hooks installed in its context.
func (ft *FetchTiming) attach(req *http.Request) *http.Request {
	ft.start = time.Now()
	return req.WithContext(httptrace.WithClientTrace(req.Context(), ft.clientTrace()))
}

// finish stamps the total duration once the body has been read.
func (ft *FetchTiming) finish() {
	ft.TotalDuration = time.Since(ft.start)
}
