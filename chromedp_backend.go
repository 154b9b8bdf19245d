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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	DefaultNavigationTimeout = 60 * time.Second
	DefaultSettleDelay       = 2 * time.Second
)

// Renderer produces the post-JavaScript HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (*RenderResult, error)
	Close() error
}

// RenderResult is the outcome of a browser navigation.
type RenderResult struct {
	HTML       string
	StatusCode int
}

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	UserAgent         string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	// ExtraFlags are appended to the default Chrome flags.
	ExtraFlags map[string]interface{}
}

// BrowserManager owns one headless Chrome process shared by every render in
// the process. The browser is launched on first use and relaunched if it has
// gone away. Each render runs in its own tab which is released afterwards.
type BrowserManager struct {
	opts BrowserOptions
	// launch starts a browser and returns its context and a shutdown func.
	launch func(BrowserOptions) (context.Context, func(), error)

	mu         sync.Mutex
	browserCtx context.Context
	shutdown   func()
	closed     bool
}

// NewBrowserManager returns a manager; no browser is started until Acquire.
func NewBrowserManager(opts BrowserOptions) *BrowserManager {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	return &BrowserManager{opts: opts, launch: launchChrome}
}

// launchChrome starts a headless Chrome process.
func launchChrome(opts BrowserOptions) (context.Context, func(), error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	for name, value := range opts.ExtraFlags {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}, nil
}

func (m *BrowserManager) shutdownLocked() {
	if m.shutdown != nil {
		m.shutdown()
	}
	m.browserCtx, m.shutdown = nil, nil
}

// Acquire returns a fresh tab context on the shared browser. The returned
// release func must be called when the tab is no longer needed.
func (m *BrowserManager) Acquire() (context.Context, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, ErrBrowserClosed
	}
	if m.browserCtx == nil || m.browserCtx.Err() != nil {
		m.shutdownLocked()
		browserCtx, shutdown, err := m.launch(m.opts)
		if err != nil {
			return nil, nil, err
		}
		m.browserCtx, m.shutdown = browserCtx, shutdown
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx)
	return tabCtx, tabCancel, nil
}

// Close shuts the browser down. Further Acquire calls fail with ErrBrowserClosed.
func (m *BrowserManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.shutdownLocked()
	return nil
}

// Render navigates to url, waits for the network to go idle plus the settle
// delay, and returns the document HTML. Only a 200 main-document response is
// accepted.
func (m *BrowserManager) Render(ctx context.Context, url string) (*RenderResult, error) {
	tabCtx, release, err := m.Acquire()
	if err != nil {
		return nil, &FetchError{Kind: FetchRender, URL: url, Message: err.Error(), Cause: err}
	}
	defer release()

	navCtx, captureCtx, cancel := renderContexts(ctx, tabCtx, m.opts.NavigationTimeout)
	defer cancel()

	var (
		mu         sync.Mutex
		statusCode int
		gotDoc     bool
	)
	idle := make(chan struct{})
	var idleOnce sync.Once

	chromedp.ListenTarget(navCtx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *network.EventResponseReceived:
			if ev.Type != network.ResourceTypeDocument {
				return
			}
			mu.Lock()
			if !gotDoc {
				gotDoc = true
				statusCode = int(ev.Response.Status)
			}
			mu.Unlock()
		case *page.EventLifecycleEvent:
			if ev.Name != "networkIdle" {
				return
			}
			mu.Lock()
			ready := gotDoc
			mu.Unlock()
			if ready {
				idleOnce.Do(func() { close(idle) })
			}
		}
	})

	err = chromedp.Run(navCtx,
		network.Enable(),
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	)
	if err != nil {
		return nil, m.renderError(url, err)
	}

	select {
	case <-idle:
	case <-navCtx.Done():
		return nil, m.renderError(url, navCtx.Err())
	}

	mu.Lock()
	status := statusCode
	mu.Unlock()
	if status != 200 {
		fe := newStatusError(url, status)
		fe.Kind = FetchRender
		return nil, fe
	}

	var html string
	err = chromedp.Run(captureCtx,
		chromedp.Sleep(m.opts.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, m.renderError(url, err)
	}
	return &RenderResult{HTML: html, StatusCode: status}, nil
}

// renderContexts splits a render into its two budgets. The navigation
// context carries the navigation timeout; the capture context has no
// deadline so the settle delay is added on top of it. Both end when the
// caller's context does.
func renderContexts(caller, tab context.Context, timeout time.Duration) (nav, capture context.Context, cancel func()) {
	nav, navCancel := context.WithTimeout(tab, timeout)
	capture, captureCancel := context.WithCancel(tab)
	stop := context.AfterFunc(caller, func() {
		navCancel()
		captureCancel()
	})
	return nav, capture, func() {
		stop()
		navCancel()
		captureCancel()
	}
}

func (m *BrowserManager) renderError(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{
			Kind:    FetchTimeout,
			URL:     url,
			Message: fmt.Sprintf("Browser navigation timeout (%ds)", int(m.opts.NavigationTimeout.Seconds())),
			Cause:   err,
		}
	}
	return &FetchError{Kind: FetchRender, URL: url, Message: "browser render failed: " + err.Error(), Cause: err}
}
