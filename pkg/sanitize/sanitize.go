// Package sanitize provides templates.OutputFilter implementations backed by
// bluemonday HTML policies.
package sanitize

import (
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-templateset/pkg/templates"
)

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy

	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// UGC keeps common formatting markup and links while removing scripts,
// styles and event handlers.
func UGC() templates.OutputFilter {
	return Policy(ugcSanitizer())
}

// Strict removes all markup, leaving text content only.
func Strict() templates.OutputFilter {
	return Policy(strictSanitizer())
}

// Policy wraps an arbitrary bluemonday policy as an output filter.
func Policy(policy *bluemonday.Policy) templates.OutputFilter {
	return func(rendered string) (string, error) {
		if policy == nil {
			return "", fmt.Errorf("sanitize: policy is nil")
		}
		return policy.Sanitize(rendered), nil
	}
}

// ByName resolves the filter names accepted on the command line. "none" and
// "" return a nil filter.
func ByName(name string) (templates.OutputFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "ugc":
		return UGC(), nil
	case "strict":
		return Strict(), nil
	default:
		return nil, fmt.Errorf("sanitize: unknown policy %q", name)
	}
}

func ugcSanitizer() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").OnElements("p", "span", "div", "table", "td", "th")
		policy.RequireNoFollowOnLinks(true)
		ugcPolicy = policy
	})
	return ugcPolicy
}

func strictSanitizer() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}
