package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Object is a JSON object that keeps its members in document order with
// their values as raw bytes. Re-encoding it only changes members that were
// Set.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]json.RawMessage)}
}

// UnmarshalJSON decodes a JSON object, keeping member order. A repeated key
// keeps its first position and its last value.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, found %s", describeToken(tok))
	}

	o.keys = nil
	o.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, found %s", describeToken(tok))
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if _, seen := o.values[key]; !seen {
			o.keys = append(o.keys, key)
		}
		o.values[key] = value
	}
	// closing brace
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the members in order with their raw values.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := encodePlain(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(o.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns the member names in order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Get returns the raw value of key.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set encodes value and stores it under key. A new key is appended after
// the existing members; an existing key keeps its position.
func (o *Object) Set(key string, value any) error {
	raw, err := encodePlain(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = raw
	return nil
}

// Clone returns a copy that can be changed without affecting o.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]json.RawMessage, len(o.values)),
	}
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// Collection is a dataset file held as raw JSON: the top-level object and
// the entity objects of its array member Key. Writing a Collection back
// reproduces every member that was not Set.
type Collection struct {
	Key   string
	Root  *Object
	Items []*Object
}

// LoadCollection reads the dataset at path and splits out the entity array
// stored under key. A missing file yields an error matching os.ErrNotExist.
func LoadCollection(path, key string) (*Collection, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Cause: err}
	}
	c, err := DecodeCollection(content, key)
	if err != nil {
		return nil, &IOError{Op: "parse", Path: path, Cause: err}
	}
	return c, nil
}

// DecodeCollection parses content as an object whose member key is an array
// of objects.
func DecodeCollection(content []byte, key string) (*Collection, error) {
	root := NewObject()
	if err := json.Unmarshal(content, root); err != nil {
		return nil, err
	}
	raw, ok := root.Get(key)
	if !ok {
		return nil, fmt.Errorf("missing %q array", key)
	}
	var items []*Object
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%s[%d]: expected a JSON object, found null", key, i)
		}
	}
	return &Collection{Key: key, Root: root, Items: items}, nil
}

// Clone returns a deep copy of c.
func (c *Collection) Clone() *Collection {
	out := &Collection{Key: c.Key, Root: c.Root.Clone(), Items: make([]*Object, len(c.Items))}
	for i, item := range c.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

// MarshalJSON encodes the root object with Items in place of its Key member.
func (c *Collection) MarshalJSON() ([]byte, error) {
	root := c.Root.Clone()
	items := c.Items
	if items == nil {
		items = []*Object{}
	}
	if err := root.Set(c.Key, items); err != nil {
		return nil, err
	}
	return root.MarshalJSON()
}

// LoadItems reads the dataset at path and returns the elements of its array
// member key undecoded, so a malformed entity does not hide the others.
func LoadItems(path, key string) ([]json.RawMessage, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Cause: err}
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, &IOError{Op: "parse", Path: path, Cause: err}
	}
	raw, ok := root[key]
	if !ok {
		return nil, &IOError{Op: "parse", Path: path, Cause: fmt.Errorf("missing %q array", key)}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &IOError{Op: "parse", Path: path, Cause: fmt.Errorf("%s: %w", key, err)}
	}
	return items, nil
}

func encodePlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return "null"
	case json.Delim:
		return string(v)
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
