package formx

import "github.com/Nawaf-TBE/Pillbot/pkg/logx"

// RunSimpleRules processes rules strictly in declaration order: a single
// forward pass with no fixpoint iteration. A rule's actions may affect a
// field read by a later rule's condition; earlier rules are never
// re-evaluated.
func RunSimpleRules(rules []ConditionalRule, form FormData, counters *Counters, notes *[]string) {
	for _, rule := range rules {
		counters.RulesEvaluated++

		if !EvaluateCondition(rule.Condition, form) {
			continue
		}

		counters.RulesTriggered++
		logx.WithField("rule", rule.Name).Debug("Simple rule triggered")

		for _, action := range rule.Actions {
			ApplyAction(action, form, counters, notes)
		}
	}
}
