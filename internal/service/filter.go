package service

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/noah-isme/school-admin-console/internal/models"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

const notAvailable = "N/A"

// Predicate narrows an in-memory list. Every non-empty field constraint must
// hold; the free-text search must match at least one of SearchFields.
type Predicate struct {
	Search       string
	SearchFields []string
	Fields       map[string]string
}

// Empty reports whether the predicate constrains nothing.
func (p Predicate) Empty() bool {
	if strings.TrimSpace(p.Search) != "" && len(p.SearchFields) > 0 {
		return false
	}
	for _, expected := range p.Fields {
		if strings.TrimSpace(expected) != "" {
			return false
		}
	}
	return true
}

// NewPredicate builds a predicate for a resource, rejecting filters on fields
// the resource does not expose.
func NewPredicate(spec ResourceSpec, search string, fields map[string]string) (Predicate, error) {
	allowed := make(map[string]struct{}, len(spec.FilterFields))
	for _, field := range spec.FilterFields {
		allowed[field] = struct{}{}
	}
	invalid := map[string]string{}
	for field := range fields {
		if _, ok := allowed[field]; !ok {
			invalid[field] = "unknown filter field"
		}
	}
	if len(invalid) > 0 {
		return Predicate{}, appErrors.WithFields(appErrors.ErrValidation, "malformed filter", invalid)
	}
	return Predicate{Search: search, SearchFields: spec.SearchFields, Fields: fields}, nil
}

// ApplyFilter returns the items satisfying p, in their original order. It does
// not mutate items and, for an empty predicate, returns them unchanged.
func ApplyFilter[T any](items []T, p Predicate) []T {
	if p.Empty() {
		return items
	}
	search := strings.TrimSpace(p.Search)
	constraints := activeConstraints(p.Fields)

	result := make([]T, 0, len(items))
	for _, item := range items {
		record := toRecord(item)
		if !matchesAll(record, constraints) {
			continue
		}
		if search != "" && len(p.SearchFields) > 0 && !matchesAny(record, p.SearchFields, search) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// ResolveName returns the name of the reference with the given id, or "N/A".
func ResolveName(id models.ID, refs []models.Reference) string {
	if id.IsZero() {
		return notAvailable
	}
	for _, ref := range refs {
		if ref.ID == id {
			if ref.Name == "" {
				return notAvailable
			}
			return ref.Name
		}
	}
	return notAvailable
}

type constraint struct {
	field    string
	expected string
}

func activeConstraints(fields map[string]string) []constraint {
	constraints := make([]constraint, 0, len(fields))
	for field, expected := range fields {
		expected = strings.TrimSpace(expected)
		if expected == "" {
			continue
		}
		constraints = append(constraints, constraint{field: field, expected: expected})
	}
	sort.Slice(constraints, func(i, j int) bool { return constraints[i].field < constraints[j].field })
	return constraints
}

func matchesAll(record map[string]interface{}, constraints []constraint) bool {
	for _, c := range constraints {
		if !matchField(record, c.field, c.expected) {
			return false
		}
	}
	return true
}

// matchesAny is the free-text search: every field, identifiers included,
// matches by case-insensitive containment of its text.
func matchesAny(record map[string]interface{}, fields []string, expected string) bool {
	needle := strings.ToLower(expected)
	for _, field := range fields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		if strings.Contains(strings.ToLower(cast.ToString(value)), needle) {
			return true
		}
	}
	return false
}

// matchField compares identifiers and non-string values exactly after
// coercion to text; other strings match by case-insensitive containment.
func matchField(record map[string]interface{}, field, expected string) bool {
	value, ok := record[field]
	if !ok || value == nil {
		return false
	}
	text, isString := value.(string)
	if !isString || isIdentifier(field) {
		return cast.ToString(value) == expected
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(expected))
}

func isIdentifier(field string) bool {
	return field == "id" || strings.HasSuffix(field, "_id")
}

// toRecord flattens an item into its JSON field map.
func toRecord(item interface{}) map[string]interface{} {
	if record, ok := item.(map[string]interface{}); ok {
		return record
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return nil
	}
	var record map[string]interface{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil
	}
	return record
}
