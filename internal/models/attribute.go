package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// DatatypeTag is the persisted discriminator of a Datatype.
type DatatypeTag string

const (
	TagText    DatatypeTag = "text"
	TagNumber  DatatypeTag = "number"
	TagBoolean DatatypeTag = "boolean"
	TagEnum    DatatypeTag = "enum"
)

// ErrValueMismatch is returned by Datatype.Coerce when a raw value does not
// fit the declared datatype.
var ErrValueMismatch = errors.New("value does not match datatype")

// Datatype is the closed set of attribute datatypes: TextType, NumberType,
// BooleanType and EnumType. Coerce validates a raw value and returns its
// canonical stored form.
type Datatype interface {
	Tag() DatatypeTag
	Coerce(raw string) (string, error)
	sealed()
}

// TextType accepts any value.
type TextType struct{}

// NumberType accepts decimal numbers, stored in canonical decimal form.
type NumberType struct{}

// BooleanType accepts true or false (case-insensitive), stored lower case.
type BooleanType struct{}

// EnumType accepts one of Values, compared exactly.
type EnumType struct {
	Values []string
}

func (TextType) Tag() DatatypeTag    { return TagText }
func (NumberType) Tag() DatatypeTag  { return TagNumber }
func (BooleanType) Tag() DatatypeTag { return TagBoolean }
func (EnumType) Tag() DatatypeTag    { return TagEnum }

func (TextType) sealed()    {}
func (NumberType) sealed()  {}
func (BooleanType) sealed() {}
func (EnumType) sealed()    {}

func (TextType) Coerce(raw string) (string, error) { return raw, nil }

func (NumberType) Coerce(raw string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a number", ErrValueMismatch, raw)
	}
	return d.String(), nil
}

func (BooleanType) Coerce(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return "true", nil
	case "false":
		return "false", nil
	}
	return "", fmt.Errorf("%w: %q is not true or false", ErrValueMismatch, raw)
}

func (e EnumType) Coerce(raw string) (string, error) {
	if slices.Contains(e.Values, raw) {
		return raw, nil
	}
	return "", fmt.Errorf("%w: %q is not one of %v", ErrValueMismatch, raw, e.Values)
}

// ParseDatatype rebuilds a Datatype from its tag and, for enums, the allowed
// values. An enum must declare at least one value and no duplicates.
func ParseDatatype(tag DatatypeTag, enumValues []string) (Datatype, error) {
	switch tag {
	case TagText:
		return TextType{}, nil
	case TagNumber:
		return NumberType{}, nil
	case TagBoolean:
		return BooleanType{}, nil
	case TagEnum:
		if len(enumValues) == 0 {
			return nil, errors.New("enum datatype needs at least one value")
		}
		seen := make(map[string]bool, len(enumValues))
		for _, v := range enumValues {
			if strings.TrimSpace(v) == "" {
				return nil, errors.New("enum values must not be blank")
			}
			if seen[v] {
				return nil, fmt.Errorf("duplicate enum value %q", v)
			}
			seen[v] = true
		}
		return EnumType{Values: slices.Clone(enumValues)}, nil
	}
	return nil, fmt.Errorf("unknown datatype %q", tag)
}

// CategoryAttribute declares a custom field for listings of a category.
type CategoryAttribute struct {
	ID         string   `db:"id" json:"id"`
	Title      string   `db:"title" json:"title"`
	CategoryID string   `db:"category_id" json:"categoryId"`
	Datatype   Datatype `db:"-" json:"-"`
	CreatedAt  int64    `db:"created_at" json:"-"`
}

// MarshalJSON renders the datatype as {"datatype": tag, "values": [...]}.
func (a CategoryAttribute) MarshalJSON() ([]byte, error) {
	out := struct {
		ID         string      `json:"id"`
		Title      string      `json:"title"`
		CategoryID string      `json:"categoryId"`
		Datatype   DatatypeTag `json:"datatype"`
		Values     []string    `json:"values,omitempty"`
	}{ID: a.ID, Title: a.Title, CategoryID: a.CategoryID}
	if a.Datatype != nil {
		out.Datatype = a.Datatype.Tag()
		if e, ok := a.Datatype.(EnumType); ok {
			out.Values = e.Values
		}
	}
	return json.Marshal(out)
}

// CategoryAttributeRow is the storage shape of a CategoryAttribute.
type CategoryAttributeRow struct {
	ID         string      `db:"id"`
	Title      string      `db:"title"`
	CategoryID string      `db:"category_id"`
	Datatype   DatatypeTag `db:"datatype"`
	EnumValues string      `db:"enum_values"`
	CreatedAt  int64       `db:"created_at"`
}

// ToAttribute decodes the stored datatype.
func (r CategoryAttributeRow) ToAttribute() (CategoryAttribute, error) {
	var values []string
	if r.EnumValues != "" {
		if err := json.Unmarshal([]byte(r.EnumValues), &values); err != nil {
			return CategoryAttribute{}, fmt.Errorf("decode enum values of attribute %s: %w", r.ID, err)
		}
	}
	dt, err := ParseDatatype(r.Datatype, values)
	if err != nil {
		return CategoryAttribute{}, fmt.Errorf("attribute %s: %w", r.ID, err)
	}
	return CategoryAttribute{
		ID:         r.ID,
		Title:      r.Title,
		CategoryID: r.CategoryID,
		Datatype:   dt,
		CreatedAt:  r.CreatedAt,
	}, nil
}

// AttributeRowFrom encodes a CategoryAttribute for storage.
func AttributeRowFrom(a CategoryAttribute) (CategoryAttributeRow, error) {
	values := []string{}
	if e, ok := a.Datatype.(EnumType); ok {
		values = e.Values
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return CategoryAttributeRow{}, err
	}
	return CategoryAttributeRow{
		ID:         a.ID,
		Title:      a.Title,
		CategoryID: a.CategoryID,
		Datatype:   a.Datatype.Tag(),
		EnumValues: string(raw),
		CreatedAt:  a.CreatedAt,
	}, nil
}

// ListingAttributeValue binds a value to a category attribute for one listing.
type ListingAttributeValue struct {
	ID          string `db:"id" json:"id"`
	Value       string `db:"value" json:"value"`
	AttributeID string `db:"attribute_id" json:"attributeId"`
	ListingID   string `db:"listing_id" json:"listingId"`
	UpdatedAt   int64  `db:"updated_at" json:"updatedAt"`
}
