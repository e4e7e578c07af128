package domain

import "strings"

// TagType classifies a Tag.
type TagType string

// The two tag types. A tag either describes where the job is done or how
// long the engagement lasts.
const (
	TagTypeLocation TagType = "location"
	TagTypeLength   TagType = "length"
)

// TagTypes lists every valid TagType.
var TagTypes = []TagType{TagTypeLocation, TagTypeLength}

// ParseTagType accepts a tag type in any letter case.
func ParseTagType(s string) (TagType, error) {
	tt := TagType(strings.ToLower(strings.TrimSpace(s)))
	if !tt.Valid() {
		return "", invalid("tag", "tag_type", "%q must be one of %v", s, TagTypes)
	}
	return tt, nil
}

// Valid reports whether tt is one of TagTypes.
func (tt TagType) Valid() bool {
	for _, v := range TagTypes {
		if tt == v {
			return true
		}
	}
	return false
}

// Tag is a classification label that can be attached to job applications.
type Tag struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	TagType TagType `json:"tag_type"`
}

// NewTag builds a validated Tag with no id assigned.
// Name uniqueness is a storage concern and is checked by the tag store.
func NewTag(name, tagType string) (Tag, error) {
	tt, err := ParseTagType(tagType)
	if err != nil {
		return Tag{}, err
	}
	t := Tag{Name: name, TagType: tt}.Normalize()
	if err := t.Validate(); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Normalize returns a copy of t with its name cleaned and its type lowercased.
func (t Tag) Normalize() Tag {
	t.Name = CleanText(t.Name)
	t.TagType = TagType(strings.ToLower(strings.TrimSpace(string(t.TagType))))
	return t
}

// Validate checks the Tag invariants.
func (t Tag) Validate() error {
	if CleanText(t.Name) == "" {
		return invalid("tag", "name", "must not be empty")
	}
	if !t.TagType.Valid() {
		return invalid("tag", "tag_type", "%q must be one of %v", string(t.TagType), TagTypes)
	}
	return nil
}
