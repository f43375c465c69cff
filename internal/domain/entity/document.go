// Package entity contains the core business objects of the project.
package entity

import (
	"bytes"
	"encoding/json"

	"plume/internal/errors"
)

// Document is a microformats2 JSON object, the content payload of an entry.
//
// See http://microformats.org/wiki/microformats2-json.
type Document struct {
	Type       []string   `json:"type"`
	Value      string     `json:"value,omitempty"`
	Properties Properties `json:"properties"`
	Children   []Document `json:"children,omitempty"`
}

// Properties is a tagged union over the property sets this server
// interprets. Anything it does not recognize is kept verbatim in Unknown so
// that an edit never drops data it does not understand.
type Properties struct {
	Name      []string
	Summary   []string
	Content   []Content
	Category  []string
	InReplyTo []string

	PostStatus []string
	Visibility []string
	Sensitive  []string

	URL       []string
	UID       []string
	Published []string
	Updated   []string

	Unknown map[string]json.RawMessage
}

// Content is an e-* style value: plain text with an optional HTML rendering.
// The wire format accepts either a bare string or a {"value", "html"} object.
type Content struct {
	Value string `json:"value"`
	HTML  string `json:"html,omitempty"`
}

// IsEntry reports whether the document is an h-entry.
func (d *Document) IsEntry() bool {
	for _, t := range d.Type {
		if t == "h-entry" {
			return true
		}
	}

	return false
}

// PostStatus returns the first post-status property, defaulting to "published".
func (d *Document) PostStatus() string {
	if len(d.Properties.PostStatus) > 0 {
		return d.Properties.PostStatus[0]
	}

	return "published"
}

// Visibility returns the first visibility property, defaulting to "public".
func (d *Document) Visibility() string {
	if len(d.Properties.Visibility) > 0 {
		return d.Properties.Visibility[0]
	}

	return "public"
}

func (c *Content) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.WithStack(err)
		}
		c.Value = s

		return nil
	}

	type alias Content
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return errors.WithStack(err)
	}
	*c = Content(a)

	return nil
}

// knownProperties maps the wire keys this server interprets.
var knownProperties = []string{
	"name", "summary", "content", "category", "in-reply-to",
	"post-status", "visibility", "sensitive",
	"url", "uid", "published", "updated",
}

func (p Properties) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Unknown)+12)
	for key, raw := range p.Unknown {
		out[key] = raw
	}

	put := func(key string, value any, empty bool) error {
		if empty {
			return nil
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(err, "marshal property %q", key)
		}
		out[key] = raw

		return nil
	}

	for _, step := range []struct {
		key   string
		value any
		empty bool
	}{
		{"name", p.Name, len(p.Name) == 0},
		{"summary", p.Summary, len(p.Summary) == 0},
		{"content", p.Content, len(p.Content) == 0},
		{"category", p.Category, len(p.Category) == 0},
		{"in-reply-to", p.InReplyTo, len(p.InReplyTo) == 0},
		{"post-status", p.PostStatus, len(p.PostStatus) == 0},
		{"visibility", p.Visibility, len(p.Visibility) == 0},
		{"sensitive", p.Sensitive, len(p.Sensitive) == 0},
		{"url", p.URL, len(p.URL) == 0},
		{"uid", p.UID, len(p.UID) == 0},
		{"published", p.Published, len(p.Published) == 0},
		{"updated", p.Updated, len(p.Updated) == 0},
	} {
		if err := put(step.key, step.value, step.empty); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WithStack(err)
	}

	take := func(key string, dst any) error {
		value, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)

		return errors.Wrapf(json.Unmarshal(value, dst), "unmarshal property %q", key)
	}

	if err := errors.Join(
		take("name", &p.Name),
		take("summary", &p.Summary),
		take("content", &p.Content),
		take("category", &p.Category),
		take("in-reply-to", &p.InReplyTo),
		take("post-status", &p.PostStatus),
		take("visibility", &p.Visibility),
		take("sensitive", &p.Sensitive),
		take("url", &p.URL),
		take("uid", &p.UID),
		take("published", &p.Published),
		take("updated", &p.Updated),
	); err != nil {
		return err
	}

	if len(raw) > 0 {
		p.Unknown = raw
	}

	return nil
}

// Merge overlays the non-empty recognized properties and all unknown
// properties of other onto p, preserving what other leaves unspecified.
func (p *Properties) Merge(other Properties) {
	if len(other.Name) > 0 {
		p.Name = other.Name
	}
	if len(other.Summary) > 0 {
		p.Summary = other.Summary
	}
	if len(other.Content) > 0 {
		p.Content = other.Content
	}
	if len(other.Category) > 0 {
		p.Category = other.Category
	}
	if len(other.InReplyTo) > 0 {
		p.InReplyTo = other.InReplyTo
	}
	if len(other.PostStatus) > 0 {
		p.PostStatus = other.PostStatus
	}
	if len(other.Visibility) > 0 {
		p.Visibility = other.Visibility
	}
	if len(other.Sensitive) > 0 {
		p.Sensitive = other.Sensitive
	}
	if len(other.URL) > 0 {
		p.URL = other.URL
	}
	if len(other.UID) > 0 {
		p.UID = other.UID
	}
	if len(other.Published) > 0 {
		p.Published = other.Published
	}
	if len(other.Updated) > 0 {
		p.Updated = other.Updated
	}
	for key, value := range other.Unknown {
		if p.Unknown == nil {
			p.Unknown = make(map[string]json.RawMessage)
		}
		p.Unknown[key] = value
	}
}

// Equal compares two documents by their canonical JSON encoding.
func (d *Document) Equal(other *Document) bool {
	a, err := json.Marshal(d)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}

	return bytes.Equal(a, b)
}
