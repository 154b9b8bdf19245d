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
	"net/url"
	"sort"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// parseURL runs the WHATWG parser first so that inputs browsers accept
// (tabs, backslashes, mixed-case hosts) end up in the same canonical form,
// then hands back a net/url value for manipulation.
func parseURL(raw string) (*url.URL, error) {
	parsed, err := urlParser.Parse(raw)
	if err != nil {
		return nil, err
	}
	return url.Parse(parsed.Href(false))
}

// NormalizeURL produces the key used for the visited set and for page upserts.
// Trailing slashes are stripped (the root path stays "/"), default ports are
// dropped, query parameters are sorted by key and the fragment is removed.
// Input that cannot be parsed is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := parseURL(raw)
	if err != nil {
		return raw
	}

	// Trim on the escaped form so the path keeps its original encoding.
	escaped := strings.TrimRight(u.EscapedPath(), "/")
	if escaped == "" {
		escaped = "/"
	}
	if path, err := url.PathUnescape(escaped); err == nil {
		u.Path, u.RawPath = path, escaped
	}

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}

	if u.RawQuery != "" {
		u.RawQuery = sortQuery(u.RawQuery)
	}
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

// sortQuery orders parameters by key while keeping the relative order of
// repeated keys.
func sortQuery(raw string) string {
	parts := strings.Split(raw, "&")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	key := func(p string) string {
		k, _, _ := strings.Cut(p, "=")
		if unescaped, err := url.QueryUnescape(k); err == nil {
			return unescaped
		}
		return k
	}
	sort.SliceStable(kept, func(i, j int) bool { return key(kept[i]) < key(kept[j]) })
	return strings.Join(kept, "&")
}

// ResolveURL resolves ref against base. When either side cannot be parsed the
// reference is returned as-is.
func ResolveURL(base, ref string) string {
	u, err := urlParser.ParseRef(base, ref)
	if err != nil {
		return ref
	}
	return u.Href(false)
}

// IsSameDomain reports whether two URLs share a hostname, treating a leading
// "www." on either side as equivalent.
func IsSameDomain(a, b string) bool {
	ua, err := parseURL(a)
	if err != nil {
		return false
	}
	ub, err := parseURL(b)
	if err != nil {
		return false
	}
	h1, h2 := ua.Hostname(), ub.Hostname()
	if h1 == "" || h2 == "" {
		return false
	}
	return h1 == h2 || h1 == "www."+h2 || h2 == "www."+h1
}

// IsValidURL reports whether raw parses as an http or https URL.
func IsValidURL(raw string) bool {
	u, err := parseURL(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ExtractDomain returns the hostname of raw, or "" if it cannot be parsed.
func ExtractDomain(raw string) string {
	u, err := parseURL(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
