// Package featureflags evaluates rollout flags configured through FEATURE_FLAGS.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// rule is one parsed flag value. percent is 0..100; on and off parse to 100 and 0.
type rule struct {
	raw     string
	percent int
	rollout bool
}

func parseRule(value string) rule {
	r := rule{raw: value}
	switch value {
	case "on", "true", "1":
		r.percent = 100
	case "off", "false", "0":
	default:
		if n, err := strconv.Atoi(strings.TrimSuffix(value, "%")); err == nil && strings.HasSuffix(value, "%") {
			r.percent = min(max(n, 0), 100)
			r.rollout = r.percent > 0 && r.percent < 100
		}
	}
	return r
}

// Manager evaluates flags from a comma-separated key=value list, for example
// "weapon_analysis=on,mod_import=25%,legacy_ticker=off". Percentages roll a
// flag out to a stable slice of users. Unparseable values count as off.
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	m := &Manager{rules: make(map[string]rule)}
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" || value == "" {
			continue
		}
		m.rules[key] = parseRule(value)
	}
	return m
}

// Defined reports whether a flag appears in the configuration at all.
func (m *Manager) Defined(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.rules[normalize(name)]
	return ok
}

// Allows is Enabled for configured flags and true for flags nobody configured,
// so gated features stay available until an operator sets up a rollout.
func (m *Manager) Allows(name string, userID uuid.UUID) bool {
	if !m.Defined(name) {
		return true
	}
	return m.Enabled(name, userID)
}

// Enabled reports whether name is on for userID. Partial rollouts never
// include the anonymous (nil) user.
func (m *Manager) Enabled(name string, userID uuid.UUID) bool {
	if m == nil {
		return false
	}
	key := normalize(name)
	r, ok := m.rules[key]
	if !ok {
		return false
	}
	if !r.rollout {
		return r.percent == 100
	}
	return userID != uuid.Nil && bucket(key, userID) < r.percent
}

// Raw returns the configured values as written.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Snapshot evaluates every configured flag for one user.
func (m *Manager) Snapshot(userID uuid.UUID) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket maps (flag, user) to 0..99 so each flag rolls out to a different slice.
func bucket(flag string, userID uuid.UUID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(flag))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write(userID[:])
	return int(h.Sum32() % 100)
}
