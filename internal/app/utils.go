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
	"net"
	"net/url"
	"strings"

	"github.com/agentberlin/sitegraph"
)

// normalizeStartURL validates user input for a crawl and returns the
// normalized start URL and the site's domain identifier.
// The domain is the lowercased hostname, plus the port when it is not the
// scheme default.
func normalizeStartURL(input string) (string, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", fmt.Errorf("empty URL")
	}
	if strings.ContainsAny(input, " \t\n") {
		return "", "", fmt.Errorf("invalid URL: contains whitespace")
	}

	// Add https:// if no protocol is present
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", "", fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	if hostname == "" {
		return "", "", fmt.Errorf("no hostname in URL")
	}
	if !validHostname(hostname) {
		return "", "", fmt.Errorf("invalid hostname: %s", hostname)
	}

	domain := hostname
	if port := parsedURL.Port(); port != "" {
		if !(parsedURL.Scheme == "https" && port == "443") && !(parsedURL.Scheme == "http" && port == "80") {
			domain = hostname + ":" + port
		}
	}

	return sitegraph.NormalizeURL(parsedURL.String()), domain, nil
}

// validHostname accepts localhost, IP addresses and dotted names. Numeric
// hosts must be valid IPs.
func validHostname(host string) bool {
	if host == "localhost" || net.ParseIP(host) != nil {
		return true
	}
	if !strings.Contains(host, ".") {
		return false
	}
	numeric := true
	for _, r := range host {
		if r != '.' && (r < '0' || r > '9') {
			numeric = false
			break
		}
	}
	return !numeric
}
