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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManagerDefaults(t *testing.T) {
	m := NewBrowserManager(BrowserOptions{SettleDelay: -1})
	assert.Equal(t, DefaultUserAgent, m.opts.UserAgent)
	assert.Equal(t, DefaultNavigationTimeout, m.opts.NavigationTimeout)
	assert.Zero(t, m.opts.SettleDelay)
}

func TestBrowserManagerClosed(t *testing.T) {
	m := NewBrowserManager(BrowserOptions{})
	require.NoError(t, m.Close())

	_, _, err := m.Acquire()
	assert.ErrorIs(t, err, ErrBrowserClosed)

	_, err = m.Render(context.Background(), "https://example.com")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FetchRender, fe.Kind)
	assert.ErrorIs(t, err, ErrBrowserClosed)

	// closing twice is harmless
	assert.NoError(t, m.Close())
}

// fakeLauncher stands in for Chrome and counts launches and shutdowns.
type fakeLauncher struct {
	launches  int
	shutdowns int
	cancel    context.CancelFunc
	err       error
}

func (f *fakeLauncher) launch(BrowserOptions) (context.Context, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.launches++
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	return ctx, func() {
		f.shutdowns++
		cancel()
	}, nil
}

func newFakeBrowserManager(f *fakeLauncher) *BrowserManager {
	m := NewBrowserManager(BrowserOptions{})
	m.launch = f.launch
	return m
}

func TestBrowserManagerLaunchesLazily(t *testing.T) {
	f := &fakeLauncher{}
	m := newFakeBrowserManager(f)
	assert.Zero(t, f.launches, "no browser before first use")

	_, release, err := m.Acquire()
	require.NoError(t, err)
	release()
	assert.Equal(t, 1, f.launches)
}

func TestBrowserManagerReusesBrowser(t *testing.T) {
	f := &fakeLauncher{}
	m := newFakeBrowserManager(f)

	for i := 0; i < 2; i++ {
		tab, release, err := m.Acquire()
		require.NoError(t, err)
		require.NotNil(t, tab)
		release()
	}
	assert.Equal(t, 1, f.launches)
	assert.Zero(t, f.shutdowns)
}

func TestBrowserManagerRelaunchesAfterDisconnect(t *testing.T) {
	f := &fakeLauncher{}
	m := newFakeBrowserManager(f)

	_, release, err := m.Acquire()
	require.NoError(t, err)
	release()

	// the browser process went away
	f.cancel()

	_, release, err = m.Acquire()
	require.NoError(t, err)
	release()
	assert.Equal(t, 2, f.launches)
	assert.Equal(t, 1, f.shutdowns, "the dead browser is cleaned up before relaunch")

	require.NoError(t, m.Close())
	assert.Equal(t, 2, f.shutdowns)
}

func TestBrowserManagerLaunchFailure(t *testing.T) {
	f := &fakeLauncher{err: errors.New("chrome not found")}
	m := newFakeBrowserManager(f)

	_, err := m.Render(context.Background(), "https://example.com")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FetchRender, fe.Kind)
	assert.Contains(t, err.Error(), "chrome not found")

	// a later Acquire retries the launch
	f.err = nil
	_, release, err := m.Acquire()
	require.NoError(t, err)
	release()
	assert.Equal(t, 1, f.launches)
}

func TestRenderContexts(t *testing.T) {
	caller, cancelCaller := context.WithCancel(context.Background())
	defer cancelCaller()
	tab, cancelTab := context.WithCancel(context.Background())
	defer cancelTab()

	nav, capture, cancel := renderContexts(caller, tab, time.Minute)
	defer cancel()

	_, ok := nav.Deadline()
	assert.True(t, ok, "navigation is bounded by the timeout")
	_, ok = capture.Deadline()
	assert.False(t, ok, "the settle delay is not charged to the navigation timeout")

	cancelCaller()
	select {
	case <-nav.Done():
	case <-time.After(time.Second):
		t.Fatal("navigation context outlived the caller")
	}
	select {
	case <-capture.Done():
	case <-time.After(time.Second):
		t.Fatal("capture context outlived the caller")
	}
	assert.NoError(t, tab.Err(), "the tab itself stays open")
}

func TestRenderContextsNavigationTimeout(t *testing.T) {
	nav, capture, cancel := renderContexts(context.Background(), context.Background(), 10*time.Millisecond)
	defer cancel()

	<-nav.Done()
	assert.ErrorIs(t, nav.Err(), context.DeadlineExceeded)
	assert.NoError(t, capture.Err(), "capture survives the navigation deadline")
}
