package intent

import (
	"regexp"
	"strings"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// missingParamPenalty is subtracted from a rule's static confidence when a
// required parameter could not be extracted and its default was used.
const missingParamPenalty = 0.15

// Rule maps a family of phrasings to one intent. Recognizers are tried
// case-insensitively against the utterance; extractors pull named
// parameters out of the same text. Confidence is a static property of the
// rule.
type Rule struct {
	Intent               command.Intent
	Recognizers          []*regexp.Regexp
	Extractors           map[string]*regexp.Regexp
	Defaults             map[string]string
	Required             []string
	Confidence           float64
	RequiresConfirmation bool
}

// Matcher holds the ordered rule table. Rule order is a deliberate
// priority list: the first rule whose recognizer matches wins, and the
// table is never re-ranked at runtime.
type Matcher struct {
	rules []Rule
}

func NewMatcher() *Matcher {
	return &Matcher{rules: defaultRules()}
}

// NewMatcherWithRules builds a matcher over a caller-supplied priority list.
func NewMatcherWithRules(rules []Rule) *Matcher {
	return &Matcher{rules: rules}
}

// Match tries the rules in order against the utterance. It returns nil when
// no rule matches; it never fails for unmatched input. The matcher is
// read-only over its rule table.
func (m *Matcher) Match(text string) *command.ParsedCommand {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	for _, rule := range m.rules {
		if !recognize(rule, trimmed) {
			continue
		}

		params := map[string]string{}
		confidence := rule.Confidence

		for name, re := range rule.Extractors {
			if sub := re.FindStringSubmatch(trimmed); sub != nil {
				params[name] = strings.TrimSpace(sub[1])
			}
		}

		for name, def := range rule.Defaults {
			if params[name] == "" {
				params[name] = def
				if isRequired(rule, name) {
					confidence -= missingParamPenalty
				}
			}
		}
		if confidence < 0 {
			confidence = 0
		}

		return &command.ParsedCommand{
			Intent:               rule.Intent,
			Params:               params,
			Confidence:           confidence,
			Tier:                 command.TierPattern,
			RawInput:             text,
			RequiresConfirmation: rule.RequiresConfirmation,
		}
	}

	return nil
}

func recognize(rule Rule, text string) bool {
	for _, re := range rule.Recognizers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func isRequired(rule Rule, name string) bool {
	for _, r := range rule.Required {
		if r == name {
			return true
		}
	}
	return false
}
