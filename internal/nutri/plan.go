package nutri

import (
	"encoding/json"
	"strings"

	"nutri-go/internal/model"
)

// planRule extracts a candidate plan value from a status response. Rules are
// total: they report ok=false instead of failing.
type planRule struct {
	name    string
	extract func(data any) (value any, ok bool)
}

// planRules are tried in order; the first one producing a value wins.
var planRules = []planRule{
	{name: "plan", extract: field("plan")},
	{name: "userPlan", extract: field("userPlan")},
	{name: "bare string", extract: bareString},
}

func field(key string) func(any) (any, bool) {
	return func(data any) (any, bool) {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, false
		}
		v := obj[key]
		return v, truthy(v)
	}
}

func bareString(data any) (any, bool) {
	s, ok := data.(string)
	return s, ok && s != ""
}

// truthy mirrors how loosely-typed webhook backends treat empty values:
// null, false, 0 and "" count as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// ExtractPlan applies the extraction rules to a decoded status response and
// returns the first value found together with the name of the rule that
// matched.
func ExtractPlan(data any) (value any, rule string, ok bool) {
	for _, r := range planRules {
		if v, ok := r.extract(data); ok {
			return v, r.name, true
		}
	}
	return nil, "", false
}

// NormalizePlan maps a decoded status response to a Plan. Only a string equal
// to "PRO" after trimming and case folding yields PlanPro; anything else,
// including a missing or non-string value, yields PlanFree.
func NormalizePlan(data any) model.Plan {
	v, _, ok := ExtractPlan(data)
	if !ok {
		return model.PlanFree
	}
	s, isString := v.(string)
	if !isString {
		return model.PlanFree
	}
	if strings.ToUpper(strings.TrimSpace(s)) == string(model.PlanPro) {
		return model.PlanPro
	}
	return model.PlanFree
}

// NormalizePlanBody decodes a raw JSON body and normalizes it. Malformed JSON
// yields PlanFree.
func NormalizePlanBody(body []byte) model.Plan {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return model.PlanFree
	}
	return NormalizePlan(data)
}
