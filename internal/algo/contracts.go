package algo

import (
	"context"
	"fmt"
	"strings"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
)

var invocationKinds = map[string]bool{
	"AT_MOST_ONCE":  true,
	"AT_LEAST_ONCE": true,
	"EXACTLY_ONCE":  true,
	"UNKNOWN":       true,
}

func resolveContracts(_ context.Context, env *Env, d decl.Decl) error {
	var c *decl.Contract
	switch d := d.(type) {
	case *decl.Function:
		c = d.Contract
	case *decl.Constructor:
		c = d.Contract
	case *decl.Property:
		for _, acc := range []*decl.Accessor{d.Getter, d.Setter} {
			if acc != nil && acc.Contract != nil && !acc.Contract.Resolved {
				resolveContract(env, acc, acc.Contract)
			}
		}
		return nil
	}
	if c == nil || c.Resolved {
		return nil
	}
	resolveContract(env, d, c)
	return nil
}

func resolveContract(env *Env, owner decl.Decl, c *decl.Contract) {
	params := map[string]bool{}
	for _, p := range paramsOf(owner) {
		params[p.Name] = true
	}
	c.Effects = c.Effects[:0]
	for _, src := range c.Source {
		eff := parseEffect(src, params)
		if eff.Kind == decl.EffectInvalid {
			env.report(diag.SemaInvalidContract, owner.Head().Span, fmt.Sprintf("%s: %s", src, eff.Err))
		}
		c.Effects = append(c.Effects, eff)
	}
	c.Resolved = true
}

// parseEffect parses one clause of a contract block:
//
//	returns() | returns(true|false|null) [implies (cond)]
//	returnsNotNull() [implies (cond)]
//	callsInPlace(param[, KIND])
func parseEffect(src string, params map[string]bool) decl.Effect {
	invalid := func(format string, args ...any) decl.Effect {
		return decl.Effect{Kind: decl.EffectInvalid, Err: fmt.Sprintf(format, args...)}
	}
	s := strings.TrimSpace(src)
	head, cond, hasCond := strings.Cut(s, " implies ")
	head = strings.TrimSpace(head)
	if hasCond {
		cond = strings.TrimSpace(cond)
		if !strings.HasPrefix(cond, "(") || !strings.HasSuffix(cond, ")") || len(cond) < 3 {
			return invalid("condition must be parenthesized")
		}
		cond = strings.TrimSpace(cond[1 : len(cond)-1])
		if id := leadingIdent(cond); id != "" && id != "this" && !params[id] && !isKeywordLiteral(id) {
			return invalid("condition references unknown parameter %s", id)
		}
	}
	name, args, ok := splitCall(head)
	if !ok {
		return invalid("expected an effect call")
	}
	switch name {
	case "returns":
		if len(args) > 1 {
			return invalid("returns takes at most one argument")
		}
		eff := decl.Effect{Kind: decl.EffectReturns, Condition: cond}
		if len(args) == 1 {
			if !isKeywordLiteral(args[0]) {
				return invalid("returns accepts only true, false or null")
			}
			eff.Value = args[0]
		}
		return eff
	case "returnsNotNull":
		if len(args) != 0 {
			return invalid("returnsNotNull takes no arguments")
		}
		return decl.Effect{Kind: decl.EffectReturnsNotNull, Condition: cond}
	case "callsInPlace":
		if hasCond {
			return invalid("callsInPlace cannot have a condition")
		}
		if len(args) == 0 || len(args) > 2 {
			return invalid("callsInPlace takes a parameter and an optional kind")
		}
		if !params[args[0]] {
			return invalid("unknown parameter %s", args[0])
		}
		eff := decl.Effect{Kind: decl.EffectCallsInPlace, Target: args[0], Invocation: "UNKNOWN"}
		if len(args) == 2 {
			kind := strings.TrimPrefix(args[1], "InvocationKind.")
			if !invocationKinds[kind] {
				return invalid("unknown invocation kind %s", args[1])
			}
			eff.Invocation = kind
		}
		return eff
	}
	return invalid("unknown effect %s", name)
}

func splitCall(s string) (string, []string, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, false
	}
	name := strings.TrimSpace(s[:open])
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if inner == "" {
		return name, nil, true
	}
	var args []string
	for _, a := range strings.Split(inner, ",") {
		args = append(args, strings.TrimSpace(a))
	}
	return name, args, true
}

func leadingIdent(s string) string {
	s = strings.TrimLeft(s, "!( ")
	end := 0
	for end < len(s) {
		c := s[end]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (end > 0 && c >= '0' && c <= '9') {
			end++
			continue
		}
		break
	}
	return s[:end]
}

func isKeywordLiteral(s string) bool {
	return s == "true" || s == "false" || s == "null"
}
