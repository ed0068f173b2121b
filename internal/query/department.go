package query

import (
	"slices"
	"strings"
	"unicode"

	"github.com/rezkam/gtf/internal/domain"
)

// DefaultDepartmentLabel names the default department when the label map
// has no entry for it.
const DefaultDepartmentLabel = "Quick"

// DepartmentLabel returns the display name for key. Keys missing from labels
// render as the raw key; the default department renders as
// DefaultDepartmentLabel.
func DepartmentLabel(labels map[string]string, key string) string {
	if key == "" {
		key = domain.DefaultDepartment
	}
	if label, ok := labels[key]; ok && label != "" {
		return label
	}
	if key == domain.DefaultDepartment {
		return DefaultDepartmentLabel
	}
	return key
}

// BadgeLabel shortens a label for compact display by dropping a leading
// emoji or symbol word: "📝 Content" becomes "Content".
func BadgeLabel(label string) string {
	first, rest, ok := strings.Cut(strings.TrimSpace(label), " ")
	if !ok || strings.TrimSpace(rest) == "" {
		return label
	}
	if strings.IndexFunc(first, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0 {
		return label
	}
	return strings.TrimSpace(rest)
}

// DepartmentGroup is one department section of the grouped view.
type DepartmentGroup struct {
	Key   string        `json:"key"`
	Label string        `json:"label"`
	Color string        `json:"color"`
	Tasks []domain.Task `json:"tasks"`
}

// GroupByDepartment groups open tasks by department. Groups follow the
// document's departments list, then the remaining label keys sorted, then
// keys that appear only on tasks, sorted. Departments with no open task are
// kept, with an empty task list, when they are named in the document.
func GroupByDepartment(doc *domain.Document, palette *Palette) []DepartmentGroup {
	open := Open(doc.Tasks)

	byKey := make(map[string][]domain.Task)
	for _, t := range open {
		byKey[t.DepartmentKey()] = append(byKey[t.DepartmentKey()], t)
	}

	seen := make(map[string]struct{})
	var keys []string
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for _, k := range doc.Departments {
		add(k)
	}
	for _, k := range sortedKeys(doc.DepartmentLabels) {
		add(k)
	}
	for _, k := range sortedKeys(byKey) {
		add(k)
	}

	groups := make([]DepartmentGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, DepartmentGroup{
			Key:   k,
			Label: DepartmentLabel(doc.DepartmentLabels, k),
			Color: palette.Color(k),
			Tasks: sortWithinDepartment(byKey[k]),
		})
	}
	return groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
