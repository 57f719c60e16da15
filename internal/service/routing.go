package service

// defaultGroupKey is the catch-all routing target.
const defaultGroupKey = "geral"

// systemGroupKeys maps a ticket's related system category to the key of the
// assignment group that handles it. Unmatched or missing categories fall
// back to the catch-all group.
var systemGroupKeys = map[string]string{
	"erp":       "suporte-ti",
	"crm":       "suporte-ti",
	"email":     "suporte-ti",
	"network":   "infraestrutura",
	"hardware":  "infraestrutura",
	"software":  "suporte-ti",
	"access":    "suporte-ti",
	"rh":        "rh",
	"financial": "financeiro",
	"portal":    "suporte-ti",
	"printer":   "infraestrutura",
	"other":     defaultGroupKey,
}

// RouteGroupKey resolves the assignment group key for a related system
// category.
func RouteGroupKey(relatedSystem *string) string {
	if relatedSystem == nil {
		return defaultGroupKey
	}
	if key, ok := systemGroupKeys[*relatedSystem]; ok {
		return key
	}
	return defaultGroupKey
}
