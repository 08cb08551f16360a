// Package models defines the domain types shared by the fetch and render layers.
package models

import (
	"iter"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PropertyKind tags the populated variant of a PropertyValue.
type PropertyKind int

// Property kinds. The zero kind is invalid so that an unset PropertyValue
// is never mistaken for an empty string.
const (
	KindInvalid PropertyKind = iota
	KindText
	KindNumber
	KindBoolean
	KindStringList
	KindTimestamp
)

// String returns the kind name used in logs and error messages.
func (k PropertyKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindStringList:
		return "string_list"
	case KindTimestamp:
		return "timestamp"
	default:
		return "invalid"
	}
}

// PropertyValue is a tagged union of the property shapes the store exposes.
// Use the constructors; exactly one variant is populated.
type PropertyValue struct {
	kind    PropertyKind
	text    string
	number  float64
	boolean bool
	list    []string
	time    time.Time
}

// Text builds a text property value.
func Text(s string) PropertyValue { return PropertyValue{kind: KindText, text: s} }

// Number builds a numeric property value.
func Number(n float64) PropertyValue { return PropertyValue{kind: KindNumber, number: n} }

// Boolean builds a boolean property value.
func Boolean(b bool) PropertyValue { return PropertyValue{kind: KindBoolean, boolean: b} }

// StringList builds a list property value. The slice is copied.
func StringList(items ...string) PropertyValue {
	return PropertyValue{kind: KindStringList, list: append([]string{}, items...)}
}

// Timestamp builds a timestamp property value normalised to UTC.
func Timestamp(t time.Time) PropertyValue { return PropertyValue{kind: KindTimestamp, time: t.UTC()} }

// Kind reports which variant is populated.
func (v PropertyValue) Kind() PropertyKind { return v.kind }

// AsText returns the text variant.
func (v PropertyValue) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsNumber returns the number variant.
func (v PropertyValue) AsNumber() (float64, bool) { return v.number, v.kind == KindNumber }

// AsBoolean returns the boolean variant.
func (v PropertyValue) AsBoolean() (bool, bool) { return v.boolean, v.kind == KindBoolean }

// AsStringList returns a copy of the list variant.
func (v PropertyValue) AsStringList() ([]string, bool) {
	if v.kind != KindStringList {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

// AsTimestamp returns the timestamp variant.
func (v PropertyValue) AsTimestamp() (time.Time, bool) { return v.time, v.kind == KindTimestamp }

// PropertyMap is an insertion-ordered map of property name to value.
type PropertyMap struct {
	m *orderedmap.OrderedMap[string, PropertyValue]
}

// NewPropertyMap returns an empty PropertyMap.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{m: orderedmap.New[string, PropertyValue]()}
}

// Set stores value under name. Overwriting keeps the original position.
func (p *PropertyMap) Set(name string, value PropertyValue) {
	p.m.Set(name, value)
}

// Get returns the value stored under name.
func (p *PropertyMap) Get(name string) (PropertyValue, bool) {
	if p == nil {
		return PropertyValue{}, false
	}
	return p.m.Get(name)
}

// Len returns the number of properties.
func (p *PropertyMap) Len() int {
	if p == nil {
		return 0
	}
	return p.m.Len()
}

// Keys returns property names in order.
func (p *PropertyMap) Keys() []string {
	keys := make([]string, 0, p.Len())
	for k := range p.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over the properties in order.
func (p *PropertyMap) All() iter.Seq2[string, PropertyValue] {
	return func(yield func(string, PropertyValue) bool) {
		if p == nil {
			return
		}
		for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}
