// File: internal/diff/rulekey.go
package diff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRuleKey reports a rule identifier that does not follow the
// <letter><digits> naming scheme. Rule keys come from a controlled naming
// scheme, so hitting this is a programming error, never skipped.
var ErrMalformedRuleKey = errors.New("malformed rule key")

// RuleKey is a detection rule identifier stripped of its repository
// namespace, e.g. "java:S1234" becomes "S1234". Always one letter followed
// by one or more digits.
type RuleKey string

// ParseRuleKey strips the namespace prefix from a rule identifier and
// validates the remaining key shape.
func ParseRuleKey(rule string) (RuleKey, error) {
	key := rule
	if i := strings.LastIndexByte(rule, ':'); i >= 0 {
		key = rule[i+1:]
	}
	if !validRuleKey(key) {
		return "", fmt.Errorf("%w: %q", ErrMalformedRuleKey, rule)
	}
	return RuleKey(key), nil
}

func validRuleKey(s string) bool {
	if len(s) < 2 {
		return false
	}
	c := s[0]
	if !('A' <= c && c <= 'Z') && !('a' <= c && c <= 'z') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CompareRuleKeys imposes a total order over rule keys: by leading letter,
// then by the numeric value of the digit run, so "S128" sorts before
// "S1028". Both keys must have been produced by ParseRuleKey; anything else
// is a programming error and panics.
func CompareRuleKeys(a, b RuleKey) int {
	if a[0] != b[0] {
		if a[0] < b[0] {
			return -1
		}
		return 1
	}
	na := numericSuffix(a)
	nb := numericSuffix(b)
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

func numericSuffix(k RuleKey) int {
	n, err := strconv.Atoi(string(k[1:]))
	if err != nil {
		panic(fmt.Sprintf("rule key %q escaped validation: %v", k, err))
	}
	return n
}
