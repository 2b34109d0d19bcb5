package scoring

import "fmt"

// Predicate decides whether a rule applies to an input.
type Predicate[T any] func(T) bool

// Rule maps a predicate over T to a label L.
type Rule[T, L any] struct {
	Label     L
	Predicate Predicate[T]
	terminal  bool
}

// When creates a conditional rule.
func When[T, L any](label L, pred func(T) bool) Rule[T, L] {
	return Rule[T, L]{Label: label, Predicate: pred}
}

// Otherwise creates the unconditional default rule that must close every table.
func Otherwise[T, L any](label L) Rule[T, L] {
	return Rule[T, L]{Label: label, terminal: true}
}

// IsDefault reports whether the rule always matches.
func (r Rule[T, L]) IsDefault() bool {
	return r.terminal
}

func (r Rule[T, L]) matches(input T) bool {
	return r.terminal || r.Predicate(input)
}

// Match describes which rule produced a label.
type Match[L any] struct {
	Label   L    `json:"label"`
	Rule    int  `json:"rule"`
	Default bool `json:"default"`
}

// Classifier evaluates an ordered tier table; the first matching rule wins.
type Classifier[T, L any] struct {
	rules []Rule[T, L]
}

// NewClassifier validates the rule table once and returns a classifier.
// The last rule must be Otherwise; every earlier rule needs a predicate.
func NewClassifier[T, L any](rules ...Rule[T, L]) (*Classifier[T, L], error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrTableIncomplete)
	}
	if !rules[len(rules)-1].terminal {
		return nil, ErrTableIncomplete
	}
	for i, r := range rules[:len(rules)-1] {
		if !r.terminal && r.Predicate == nil {
			return nil, fmt.Errorf("%w: rule %d has no predicate", ErrInvalidConfiguration, i)
		}
	}

	cp := make([]Rule[T, L], len(rules))
	copy(cp, rules)
	return &Classifier[T, L]{rules: cp}, nil
}

// MustClassifier is NewClassifier for package-level tables that are known valid.
func MustClassifier[T, L any](rules ...Rule[T, L]) *Classifier[T, L] {
	c, err := NewClassifier(rules...)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the label of the first rule matching input.
func (c *Classifier[T, L]) Classify(input T) L {
	return c.Explain(input).Label
}

// Explain returns the label together with the index of the matching rule.
func (c *Classifier[T, L]) Explain(input T) Match[L] {
	for i, r := range c.rules {
		if r.matches(input) {
			return Match[L]{Label: r.Label, Rule: i, Default: r.terminal}
		}
	}
	// Unreachable: NewClassifier guarantees a terminal rule.
	last := len(c.rules) - 1
	return Match[L]{Label: c.rules[last].Label, Rule: last, Default: true}
}

// Labels returns the labels in rule order.
func (c *Classifier[T, L]) Labels() []L {
	labels := make([]L, len(c.rules))
	for i, r := range c.rules {
		labels[i] = r.Label
	}
	return labels
}
