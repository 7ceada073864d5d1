// Package guesser infers list columns from the shape of schema-less records.
//
// Columns are the union of record keys in first-seen order. Each column kind
// is inferred from every non-null value observed for that key, falling back to
// text when the values disagree.
package guesser

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/louisbranch/restpanel/internal/record"
)

// Kind identifies how a column renders its values.
type Kind string

const (
	KindID        Kind = "id"
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindBoolean   Kind = "boolean"
	KindDate      Kind = "date"
	KindEmail     Kind = "email"
	KindURL       Kind = "url"
	KindReference Kind = "reference"
	KindArray     Kind = "array"
	KindObject    Kind = "object"
)

// Column is a guessed list column.
type Column struct {
	// Source is the record field name.
	Source string
	// Label is the humanized header text.
	Label string
	// Kind selects the cell renderer.
	Kind Kind
	// Reference names the referenced resource for KindReference columns.
	Reference string
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// InferColumns guesses columns for records.
func InferColumns(records []record.Record) []Column {
	var order []string
	values := make(map[string][]record.Value)
	for _, r := range records {
		for _, f := range r.Fields() {
			if _, seen := values[f.Name]; !seen {
				order = append(order, f.Name)
				values[f.Name] = nil
			}
			if !f.Value.IsNull() {
				values[f.Name] = append(values[f.Name], f.Value)
			}
		}
	}

	columns := make([]Column, 0, len(order))
	for _, name := range order {
		columns = append(columns, InferColumn(name, values[name]))
	}
	return columns
}

// InferColumn guesses a single column from its name and non-null values.
func InferColumn(name string, values []record.Value) Column {
	col := Column{Source: name, Label: Humanize(name), Kind: KindText}
	if name == "id" {
		col.Kind = KindID
		return col
	}
	if len(values) == 0 {
		return col
	}

	typ, uniform := commonType(values)
	if !uniform {
		return col
	}

	if target, ok := referenceTarget(name); ok && (typ == record.String || typ == record.Number) {
		col.Kind = KindReference
		col.Reference = target
		return col
	}

	switch typ {
	case record.Bool:
		col.Kind = KindBoolean
	case record.Number:
		col.Kind = KindNumber
	case record.Array:
		col.Kind = KindArray
	case record.Object:
		col.Kind = KindObject
	case record.String:
		col.Kind = inferStringKind(values)
	}
	return col
}

func commonType(values []record.Value) (record.Type, bool) {
	typ := values[0].Type()
	for _, v := range values[1:] {
		if v.Type() != typ {
			return record.Null, false
		}
	}
	return typ, true
}

func inferStringKind(values []record.Value) Kind {
	switch {
	case all(values, isEmail):
		return KindEmail
	case all(values, isURL):
		return KindURL
	case all(values, isDate):
		return KindDate
	default:
		return KindText
	}
}

func all(values []record.Value, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v.Str()) {
			return false
		}
	}
	return true
}

func isEmail(s string) bool {
	if strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// ParseDate parses the date formats recognized by the guesser.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func referenceTarget(name string) (string, bool) {
	var base string
	switch {
	case strings.HasSuffix(name, "_id") && len(name) > len("_id"):
		base = strings.TrimSuffix(name, "_id")
	case strings.HasSuffix(name, "Id") && len(name) > len("Id"):
		base = strings.TrimSuffix(name, "Id")
	default:
		return "", false
	}
	if base == "_" {
		return "", false
	}
	return Pluralize(strings.ToLower(base)), true
}

// Pluralize returns a naive English plural of a resource name.
func Pluralize(name string) string {
	switch {
	case name == "":
		return ""
	case strings.HasSuffix(name, "s"), strings.HasSuffix(name, "x"),
		strings.HasSuffix(name, "ch"), strings.HasSuffix(name, "sh"):
		return name + "es"
	case strings.HasSuffix(name, "y") && len(name) > 1 && !strings.ContainsRune("aeiou", rune(name[len(name)-2])):
		return name[:len(name)-1] + "ies"
	default:
		return name + "s"
	}
}

// Humanize turns snake_case and camelCase field names into header labels.
func Humanize(name string) string {
	name = strings.Trim(name, "_")
	if name == "" {
		return ""
	}
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	if len(words) == 0 {
		return ""
	}
	label := strings.Join(words, " ")
	first := []rune(label)
	first[0] = unicode.ToUpper(first[0])
	return string(first)
}

// Definition describes guessed columns the way an operator would copy them
// into a hand-written list definition.
func Definition(resource string, columns []Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Guessed List for %q:", resource)
	for _, col := range columns {
		if col.Kind == KindReference {
			fmt.Fprintf(&b, " %s(%s->%s)", col.Source, col.Kind, col.Reference)
			continue
		}
		fmt.Fprintf(&b, " %s(%s)", col.Source, col.Kind)
	}
	return b.String()
}
