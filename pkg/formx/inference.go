package formx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm"
	"github.com/Nawaf-TBE/Pillbot/pkg/asyncx"
	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
)

// InferenceAdapter resolves inference rules through a chat model. The model
// call is the only non-deterministic boundary of the package; the client is
// injectable so tests can substitute scripted responses.
type InferenceAdapter struct {
	client      llm.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	concurrency int
}

// AdapterOption configures the InferenceAdapter
type AdapterOption func(*InferenceAdapter)

// WithModel sets the model used for inference calls
func WithModel(model string) AdapterOption {
	return func(a *InferenceAdapter) {
		a.model = model
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float32) AdapterOption {
	return func(a *InferenceAdapter) {
		a.temperature = temperature
	}
}

// WithMaxTokens sets the maximum output tokens per call
func WithMaxTokens(maxTokens int) AdapterOption {
	return func(a *InferenceAdapter) {
		a.maxTokens = maxTokens
	}
}

// WithTimeout bounds each model call
func WithTimeout(timeout time.Duration) AdapterOption {
	return func(a *InferenceAdapter) {
		a.timeout = timeout
	}
}

// WithConcurrency allows up to n inference calls in flight at once. Results
// are still applied in rule declaration order so last-applied-wins semantics
// hold.
func WithConcurrency(n int) AdapterOption {
	return func(a *InferenceAdapter) {
		a.concurrency = n
	}
}

// NewInferenceAdapter creates an adapter backed by the given chat client
func NewInferenceAdapter(client llm.Client, opts ...AdapterOption) *InferenceAdapter {
	a := &InferenceAdapter{
		client:      client,
		temperature: 0.1,
		maxTokens:   2048,
		timeout:     60 * time.Second,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// ContextResolvable reports whether every context field of the rule has a
// usable value in the form state
func ContextResolvable(rule InferenceRule, form FormData) bool {
	for _, field := range rule.LLMInference.ContextFields {
		record, ok := form[field]
		if !ok || record.Value.IsEmpty() {
			return false
		}
	}
	return true
}

// BuildPrompt substitutes context-field values into the rule's prompt
// template. "{field_name}" placeholders are replaced with the field's value;
// "{context}" expands to all context fields as "name: value" lines.
func BuildPrompt(rule InferenceRule, form FormData) string {
	prompt := rule.LLMInference.PromptTemplate

	var contextLines []string
	for _, field := range rule.LLMInference.ContextFields {
		record, ok := form[field]
		if !ok || record.Value.IsEmpty() {
			continue
		}
		text := record.Value.Text()
		prompt = strings.ReplaceAll(prompt, "{"+field+"}", text)
		contextLines = append(contextLines, fmt.Sprintf("%s: %s", field, text))
	}

	return strings.ReplaceAll(prompt, "{context}", strings.Join(contextLines, "\n"))
}

// Infer resolves one rule: build the prompt, call the model, and match the
// answer against the rule's expected result (case-insensitive substring).
func (a *InferenceAdapter) Infer(ctx context.Context, rule InferenceRule, form FormData) (bool, error) {
	prompt := BuildPrompt(rule, form)

	opts := []llm.Option{
		llm.WithTemperature(a.temperature),
		llm.WithMaxTokens(a.maxTokens),
	}
	if a.model != "" {
		opts = append(opts, llm.WithModel(a.model))
	}

	response, err := asyncx.WithTimeout(ctx, a.timeout,
		func(ctx context.Context) (llm.Response, error) {
			return a.client.Chat(ctx, []llm.Message{llm.NewUserMessage(prompt)}, opts...)
		})
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(response.Message.Content)
	expected := strings.ToLower(rule.LLMInference.ExpectedResult)

	return expected != "" && strings.Contains(answer, expected), nil
}

// RunInferenceRules resolves inference rules and applies the actions of
// matched rules. Rules with unresolvable context fields are skipped without
// counting; model failures mark the rule not-matched and processing
// continues. Actions are always applied in rule declaration order.
func (a *InferenceAdapter) RunInferenceRules(
	ctx context.Context,
	rules []InferenceRule,
	form FormData,
	counters *Counters,
	notes *[]string,
) {
	attempted := make([]InferenceRule, 0, len(rules))
	for _, rule := range rules {
		if !ContextResolvable(rule, form) {
			logx.WithField("rule", rule.Name).Info("Skipping inference rule, context fields unresolved")
			continue
		}
		attempted = append(attempted, rule)
	}

	if len(attempted) == 0 {
		return
	}

	matched := make([]bool, len(attempted))

	if a.concurrency > 1 {
		// bounded fan-out, then apply deltas in declaration order
		results, _ := asyncx.Pool(ctx, a.concurrency, attempted,
			func(ctx context.Context, rule InferenceRule) (bool, error) {
				ok, err := a.Infer(ctx, rule, form)
				if err != nil {
					logx.WithField("rule", rule.Name).
						WithError(err).Warn("Inference call failed")
					return false, nil
				}
				return ok, nil
			})
		copy(matched, results)
	} else {
		for i, rule := range attempted {
			ok, err := a.Infer(ctx, rule, form)
			if err != nil {
				logx.WithField("rule", rule.Name).
					WithError(err).Warn("Inference call failed")
				continue
			}
			matched[i] = ok
		}
	}

	for i, rule := range attempted {
		// an attempted inference counts as an evaluated rule; rules skipped
		// for unresolvable context never reach this loop
		counters.RulesEvaluated++
		counters.LLMInferences++
		if !matched[i] {
			continue
		}

		counters.RulesTriggered++
		logx.WithField("rule", rule.Name).Debug("Inference rule matched")

		for _, action := range rule.Actions {
			ApplyAction(action, form, counters, notes)
		}
	}
}
