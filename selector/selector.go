// Copyright 2018 Heptio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package selector evaluates Kubernetes label selectors against label sets.
package selector

// Requirement is a single matchExpressions term.
type Requirement struct {
	Key      string
	Operator string
	Values   []string
}

// Selector is a structured label selector: equality terms plus expression
// terms, combined as a conjunction.
type Selector struct {
	MatchLabels      map[string]string
	MatchExpressions []Requirement
}

// Empty reports whether the selector carries no terms at all. An empty
// selector selects nothing.
func (s Selector) Empty() bool {
	return len(s.MatchLabels) == 0 && len(s.MatchExpressions) == 0
}

// FromLabels wraps a plain service style selector map as an equality only
// Selector.
func FromLabels(labels map[string]string) Selector {
	return Selector{MatchLabels: labels}
}

// Parse builds a Selector from the raw selector mapping of a manifest.
// Fields of the wrong type contribute no terms rather than failing, so a
// malformed selector degrades to one that matches nothing.
func Parse(raw map[string]interface{}) Selector {
	sel := Selector{}
	if ml, ok := raw["matchLabels"].(map[string]interface{}); ok {
		sel.MatchLabels = make(map[string]string, len(ml))
		for k, v := range ml {
			if s, ok := v.(string); ok {
				sel.MatchLabels[k] = s
				continue
			}
			// a non-string value can never equal a label value; keep the
			// term as unsatisfiable so it still narrows the match
			sel.MatchExpressions = append(sel.MatchExpressions, Requirement{Key: k, Operator: "In"})
		}
	}
	exprs, ok := raw["matchExpressions"].([]interface{})
	if !ok {
		return sel
	}
	for _, e := range exprs {
		expr, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		req := Requirement{}
		req.Key, _ = expr["key"].(string)
		req.Operator, _ = expr["operator"].(string)
		if vals, ok := expr["values"].([]interface{}); ok {
			for _, v := range vals {
				if s, ok := v.(string); ok {
					req.Values = append(req.Values, s)
				}
			}
		}
		sel.MatchExpressions = append(sel.MatchExpressions, req)
	}
	return sel
}

// Matches reports whether the label set satisfies the selector. All equality
// terms and all expression terms must pass. Supported operators are In,
// NotIn, Exists and DoesNotExist; ordering operators like Gt and Lt are
// ignored rather than erred on. An empty selector never matches.
func Matches(labels map[string]string, sel Selector) bool {
	if sel.Empty() {
		return false
	}
	for k, v := range sel.MatchLabels {
		// an absent key is not the same as an empty value
		if val, ok := labels[k]; !ok || val != v {
			return false
		}
	}
	for _, req := range sel.MatchExpressions {
		value, present := labels[req.Key]
		switch req.Operator {
		case "In":
			if !present || !contains(req.Values, value) {
				return false
			}
		case "NotIn":
			if present && contains(req.Values, value) {
				return false
			}
		case "Exists":
			if !present {
				return false
			}
		case "DoesNotExist":
			if present {
				return false
			}
		}
	}
	return true
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
