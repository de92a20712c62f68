package intent

import (
	"regexp"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// Rules match case-insensitively but extract from the original text, so a
// folder named "Projects" keeps its capitalization.
func res(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

func ext(pairs map[string]string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(pairs))
	for name, p := range pairs {
		out[name] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// defaultRules is the built-in priority list. Order matters: more specific
// phrasings sit above the catch-all verbs ("open", "find") that would
// otherwise swallow them.
func defaultRules() []Rule {
	return []Rule{
		{
			Intent: command.IntentCapabilityQuery,
			Recognizers: res(
				`what (else )?can you do`,
				`what are your capabilities`,
				`how can you help`,
				`who are you`,
				`tell me about yourself`,
			),
			Confidence: 0.95,
		},
		{
			Intent: command.IntentCreateFolder,
			Recognizers: res(
				`create (a )?folder`,
				`make (a )?(new )?(directory|folder)`,
				`new folder`,
			),
			Extractors: ext(map[string]string{
				"name":     `(?:called|named)\s+['"]?([^'"]+?)['"]?(?:\s+(?:on|in|at)\s+(?:my\s+)?\w+)?$`,
				"location": `(?:on|in|at)\s+(?:my\s+)?(\w+)\s*$`,
			}),
			Defaults:   map[string]string{"location": "desktop", "name": "New Folder"},
			Required:   []string{"name"},
			Confidence: 0.95,
		},
		{
			Intent: command.IntentMoveItem,
			Recognizers: res(
				`move (it|that|the)`,
				`\brelocate\b`,
				`\btransfer\b`,
			),
			Extractors: ext(map[string]string{
				"destination": `to\s+(?:my\s+)?(\w+)`,
			}),
			Defaults:             map[string]string{"destination": "documents"},
			Confidence:           0.9,
			RequiresConfirmation: true,
		},
		{
			Intent: command.IntentDeleteItem,
			Recognizers: res(
				`\bdelete\b`,
				`\bremove\b`,
				`\btrash\b`,
			),
			Confidence:           0.9,
			RequiresConfirmation: true,
		},
		{
			Intent: command.IntentGetSystemInfo,
			Recognizers: res(
				`(what'?s|show|check)\s+(my\s+)?(disk|cpu|memory|ram)`,
				`system (info|status)`,
				`how much (space|memory)`,
			),
			Extractors: ext(map[string]string{
				"kind": `\b(disk|cpu|memory|ram)\b`,
			}),
			Defaults:   map[string]string{"kind": "all"},
			Confidence: 0.9,
		},
		{
			Intent: command.IntentBrowserNavigate,
			Recognizers: res(
				`\bgo to\b`,
				`\bnavigate to\b`,
				`open (website|site|url)`,
			),
			Extractors: ext(map[string]string{
				"url": `(?:go to|navigate to|open)\s+(?:website\s+|site\s+|url\s+)?(\S+)`,
			}),
			Required:   []string{"url"},
			Confidence: 0.9,
		},
		{
			Intent: command.IntentBrowserSearch,
			Recognizers: res(
				`search (for|google)`,
				`\bgoogle\b`,
				`\blook up\b`,
			),
			Extractors: ext(map[string]string{
				"query": `(?:search for|search google for|google|look up)\s+(.+)`,
			}),
			Required:   []string{"query"},
			Confidence: 0.85,
		},
		{
			Intent: command.IntentSearchFiles,
			Recognizers: res(
				`find (all )?(my )?`,
				`\blocate\b`,
				`\blook for\b`,
			),
			Extractors: ext(map[string]string{
				"file_type":  `(screenshots?|images?|pdfs?|documents?|videos?)`,
				"time_range": `from\s+(last\s+\w+|this\s+\w+|yesterday)`,
				"location":   `(?:in|on)\s+(?:my\s+)?(desktop|downloads|documents|home)`,
			}),
			Defaults:   map[string]string{"location": "home"},
			Confidence: 0.85,
		},
		{
			Intent: command.IntentOpenApp,
			Recognizers: res(
				`\bopen\b`,
				`\blaunch\b`,
				`\bstart\b`,
			),
			Extractors: ext(map[string]string{
				"app_name": `(?:open|launch|start)\s+(\w+)`,
			}),
			Required:   []string{"app_name"},
			Defaults:   map[string]string{"app_name": ""},
			Confidence: 0.85,
		},
		{
			Intent: command.IntentCloseApp,
			Recognizers: res(
				`\bclose\b`,
				`\bquit\b`,
			),
			Extractors: ext(map[string]string{
				"app_name": `(?:close|quit)\s+(\w+)`,
			}),
			Required:   []string{"app_name"},
			Defaults:   map[string]string{"app_name": ""},
			Confidence: 0.85,
		},
		{
			Intent: command.IntentUnknown,
			Recognizers: res(
				`^(hi|hello|hey|greetings|sup|yo)$`,
				`^(how are you|what'?s up|wassup)$`,
				`^(thanks|thank you|thx)$`,
				`^(ok|okay|cool|nice|great)$`,
			),
			Confidence: 0.3,
		},
	}
}
