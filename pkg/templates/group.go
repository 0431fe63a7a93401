package templates

import "sort"

// Group maps member keys (slots such as "subject" or "body") to template
// keys. Several members may point at the same template.
type Group map[string]string

// Members returns the member keys in sorted order.
func (g Group) Members() []string {
	out := make([]string, 0, len(g))
	for member := range g {
		out = append(out, member)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (g Group) Clone() Group {
	if g == nil {
		return Group{}
	}
	out := make(Group, len(g))
	for member, template := range g {
		out[member] = template
	}
	return out
}

// GroupBuilder assembles a Group one member at a time.
type GroupBuilder struct {
	group Group
}

// NewGroupBuilder returns an empty group builder.
func NewGroupBuilder() *GroupBuilder {
	return &GroupBuilder{group: Group{}}
}

// AddMember maps member to templateKey, replacing any previous mapping.
func (b *GroupBuilder) AddMember(member, templateKey string) *GroupBuilder {
	b.group[member] = templateKey
	return b
}

// Build returns a copy of the assembled group.
func (b *GroupBuilder) Build() Group {
	return b.group.Clone()
}
