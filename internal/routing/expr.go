package routing

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tapwake/tapwake/internal/deeplink"
	"github.com/tapwake/tapwake/internal/jsonval"
)

// Rule is one configured routing rule: when the expression evaluates to
// true, navigate to the target path.
//
// Expressions see the environment:
//
//	url              string  raw deep link URL ("" for notifications)
//	route            string  parsed canonical path ("" for notifications)
//	params           map     deep link query parameters
//	fromNotification bool
//	payload          map     notification payload
type Rule struct {
	When string `json:"when" yaml:"when"`
	Goto string `json:"goto" yaml:"goto"`
}

// ExprPolicy implements both policy interfaces from a rule list.
// Rules are evaluated in declaration order; the first truthy match wins
// and no match means "use the default route".
type ExprPolicy struct {
	rules []compiledRule
	log   *slog.Logger
}

type compiledRule struct {
	program *vm.Program
	target  string
}

// CompileRules compiles a rule list into an ExprPolicy.
// A rule with an empty expression or an empty target is rejected, as is
// any expression that does not compile.
func CompileRules(rules []Rule, log *slog.Logger) (*ExprPolicy, error) {
	if log == nil {
		log = slog.Default()
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		if rule.When == "" {
			return nil, fmt.Errorf("rule %d: empty expression", i)
		}
		if rule.Goto == "" {
			return nil, fmt.Errorf("rule %d: empty target route", i)
		}
		program, err := expr.Compile(rule.When, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("rule %d: compile %q: %w", i, rule.When, err)
		}
		compiled = append(compiled, compiledRule{
			program: program,
			target:  deeplink.NormalizeRoute(rule.Goto),
		})
	}

	return &ExprPolicy{rules: compiled, log: log}, nil
}

// OnDeepLink implements DeepLinkPolicy.
func (p *ExprPolicy) OnDeepLink(url string, route deeplink.Route) *Decision {
	env := map[string]any{
		"url":              url,
		"route":            route.Path,
		"params":           route.QueryParams,
		"fromNotification": false,
		"payload":          map[string]any{},
	}
	if target, ok := p.match(env); ok {
		return &Decision{Path: target, Params: route.QueryParams}
	}
	return nil
}

// OnNotificationLaunch implements NotificationPolicy.
func (p *ExprPolicy) OnNotificationLaunch(fromNotification bool, payload jsonval.Object) *Decision {
	env := map[string]any{
		"url":              "",
		"route":            "",
		"params":           map[string]string{},
		"fromNotification": fromNotification,
		"payload":          jsonval.ToAny(payload),
	}
	if target, ok := p.match(env); ok {
		return &Decision{Path: target}
	}
	return nil
}

// match evaluates the rules in order against env.
// A rule whose evaluation errors is skipped, not fatal: one bad rule
// must not take routing down with it.
func (p *ExprPolicy) match(env map[string]any) (string, bool) {
	for _, rule := range p.rules {
		out, err := expr.Run(rule.program, env)
		if err != nil {
			p.log.Warn("routing rule evaluation failed", "error", err)
			continue
		}
		if matched, ok := out.(bool); ok && matched {
			return rule.target, true
		}
	}
	return "", false
}
