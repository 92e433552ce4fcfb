package chat

import "strings"

// KeywordRule answers when any of its keywords occurs in the query
type KeywordRule struct {
	Keywords []string
	Response string
}

// defaultKeywordRules is evaluated top to bottom; the first hit wins, so order is significant
var defaultKeywordRules = []KeywordRule{
	{
		Keywords: []string{"ipc", "section"},
		Response: "The Indian Penal Code (IPC) is the main criminal code of India. Please specify which section you'd like to know about.",
	},
	{
		Keywords: []string{"lawyer", "attorney"},
		Response: "For specific legal advice, please consult a qualified lawyer or attorney in your area.",
	},
	{
		Keywords: []string{"court"},
		Response: "Indian courts include District Courts, High Courts, and the Supreme Court. Each handles different types of cases.",
	},
	{
		Keywords: []string{"rights"},
		Response: "Indian citizens have fundamental rights under the Constitution including right to equality, freedom, and justice.",
	},
	{
		Keywords: []string{"robbery", "theft", "dacoity", "roberry"},
		Response: "Theft, Robbery, and Dacoity are offenses under the Indian Penal Code (Sections 378-402). Punishment varies based on severity. Report such incidents to the police immediately.",
	},
}

// KeywordClassifier is the last-resort boilerplate matcher. It holds no state.
type KeywordClassifier struct {
	rules []KeywordRule
}

// NewKeywordClassifier returns a classifier over the built-in rule list
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: defaultKeywordRules}
}

// Classify returns the response of the first rule with a keyword in the normalized query
func (c *KeywordClassifier) Classify(normalizedQuery string) (string, bool) {
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalizedQuery, keyword) {
				return rule.Response, true
			}
		}
	}
	return "", false
}

// Rules returns a copy of the rules in evaluation order
func (c *KeywordClassifier) Rules() []KeywordRule {
	rules := make([]KeywordRule, len(c.rules))
	copy(rules, c.rules)
	return rules
}
