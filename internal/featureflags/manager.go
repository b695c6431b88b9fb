// Package featureflags evaluates runtime toggles configured through FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// PushBroadcast gates the push fan-out that follows a new tweet.
const PushBroadcast = "push_broadcast"

type rule struct {
	on      bool
	percent int // used when on is false; 0 means off
}

// Manager evaluates flags defined as a comma-separated key=value list,
// for example "push_broadcast=on,new_feed=25%".
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Malformed pairs are ignored.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			rules[key] = r
		}
	}

	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{on: true}, true
	case "off", "false", "0":
		return rule{}, true
	}

	pctRaw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{}, false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return rule{}, false
	}
	switch {
	case pct >= 100:
		return rule{on: true}, true
	case pct <= 0:
		return rule{}, true
	default:
		return rule{percent: pct}, true
	}
}

// Enabled reports whether name is on for userID. Percentage rollouts bucket users
// deterministically; anonymous callers (userID 0) are only included at 100%.
// Unknown flags are off.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	r, ok := m.rules[normalize(name)]
	switch {
	case !ok:
		return false
	case r.on:
		return true
	case r.percent == 0 || userID == 0:
		return false
	default:
		return rolloutBucket(name, userID) < r.percent
	}
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
