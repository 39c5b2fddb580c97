// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package access decides whether a request path requires proof of
// authentication.
//
// The decision is a pure function over the path and an ordered exclusion
// list, fail-closed on missing input. Two pattern forms are supported:
// exact entries, compared against the path with a trailing slash
// normalized on, and wildcard entries ("<prefix>*"), compared as a raw
// prefix of the original path. The asymmetry between the two comparisons
// is load-bearing: "/api/v1/status/" excludes "/api/v1/status", while
// "/api/v1/users/*" excludes "/api/v1/users/55" but not
// "/api/v1/users" + "/"-normalization artifacts. Do not unify them.
package access

import "strings"

// RequiresAuth reports whether the given request path requires
// authentication under the exclusion list.
//
// An empty path or an empty exclusion list always requires auth. Entries
// are evaluated in list order and the first match wins. Empty entries are
// skipped.
func RequiresAuth(path string, exclusions []string) bool {
	if path == "" || len(exclusions) == 0 {
		return true
	}

	// Normalized form, used only for exact-match comparison.
	normalized := path
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	for _, pattern := range exclusions {
		if pattern == "" {
			continue
		}

		if prefix, isWildcard := strings.CutSuffix(pattern, "*"); isWildcard {
			if strings.HasPrefix(path, prefix) {
				return false
			}
			continue
		}

		if normalized == pattern {
			return false
		}
	}

	return true
}
