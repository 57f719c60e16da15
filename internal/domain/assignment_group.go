package domain

import (
	"regexp"
	"time"
)

// groupKeyPattern constrains keys to lowercase kebab form.
var groupKeyPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidGroupKey reports whether key is an acceptable assignment group key.
func ValidGroupKey(key string) bool {
	return key != "" && groupKeyPattern.MatchString(key)
}

// AssignmentGroup is a routing target for tickets, e.g. "suporte-ti".
type AssignmentGroup struct {
	ID          string
	Key         string
	Name        string
	Color       string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
