package schema

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/teranos/footprint/errors"
)

// InputType tags which seed attribute triggered a request
type InputType string

const (
	InputUsername InputType = "username"
	InputEmail    InputType = "email"
	InputPhone    InputType = "phone"
	InputName     InputType = "name"
)

// AllInputTypes lists input types in their canonical order
var AllInputTypes = []InputType{InputUsername, InputEmail, InputPhone, InputName}

// LookupInputs holds the normalized seed attributes of one lookup.
// Empty string means absent. Values are normalized once by NewLookupInputs
// and never re-normalized downstream.
type LookupInputs struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Name     string `json:"name,omitempty"`
}

// NewLookupInputs normalizes raw CLI values.
// Username and email are trimmed and lower-cased, name has whitespace collapsed,
// phone is parsed to E.164. Values empty after trimming are treated as absent.
func NewLookupInputs(username, email, phone, name string) (LookupInputs, error) {
	normalizedPhone, err := NormalizePhone(phone)
	if err != nil {
		return LookupInputs{}, err
	}
	return LookupInputs{
		Username: NormalizeUsername(username),
		Email:    NormalizeEmail(email),
		Phone:    normalizedPhone,
		Name:     NormalizeName(name),
	}, nil
}

// NormalizeUsername trims and lower-cases a username
func NormalizeUsername(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeName collapses runs of whitespace to single spaces
func NormalizeName(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// NormalizePhone parses value as an international number and formats it as E.164.
// The number must carry its country code (+CC...).
func NormalizePhone(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	parsed, err := phonenumbers.Parse(value, "")
	if err != nil {
		return "", errors.WithHint(
			errors.Wrapf(errors.ErrInvalidInput, "phone %q: %v", value, err),
			"use international format with a country code, e.g. +14155550100")
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", errors.NewInvalidInputError("phone %q is not a valid number", value)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// Get returns the value for one input type
func (in LookupInputs) Get(t InputType) string {
	switch t {
	case InputUsername:
		return in.Username
	case InputEmail:
		return in.Email
	case InputPhone:
		return in.Phone
	case InputName:
		return in.Name
	}
	return ""
}

// Present returns the set of input types that carry a value
func (in LookupInputs) Present() map[InputType]bool {
	present := make(map[InputType]bool, len(AllInputTypes))
	for _, t := range AllInputTypes {
		if in.Get(t) != "" {
			present[t] = true
		}
	}
	return present
}

// IsEmpty reports whether no input is set
func (in LookupInputs) IsEmpty() bool {
	return len(in.Present()) == 0
}

// Fields returns every input keyed by type, absent values as nil, for manifests
func (in LookupInputs) Fields() map[string]*string {
	fields := make(map[string]*string, len(AllInputTypes))
	for _, t := range AllInputTypes {
		if v := in.Get(t); v != "" {
			v := v
			fields[string(t)] = &v
		} else {
			fields[string(t)] = nil
		}
	}
	return fields
}
