// Package security holds the validation applied to anything that has to be
// spliced into SQL text or the filesystem rather than bound as a value.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxIdentifierLength matches the MySQL limit on account user names.
const MaxIdentifierLength = 32

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// IdentifierError describes an identifier that failed the allow-list.
type IdentifierError struct {
	Kind   string
	Value  string
	Reason string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Value, e.Reason)
}

// ValidateIdentifier accepts only ASCII letters, digits and underscore, up to
// MaxIdentifierLength characters. kind names the value in the error.
func ValidateIdentifier(kind, value string) error {
	switch {
	case value == "":
		return &IdentifierError{Kind: kind, Value: value, Reason: "must not be empty"}
	case len(value) > MaxIdentifierLength:
		return &IdentifierError{Kind: kind, Value: value, Reason: fmt.Sprintf("longer than %d characters", MaxIdentifierLength)}
	case !identifierPattern.MatchString(value):
		return &IdentifierError{Kind: kind, Value: value, Reason: "only letters, digits and underscore are allowed"}
	}
	return nil
}

// Privilege is a grantable database privilege.
type Privilege string

const (
	PrivilegeSelect Privilege = "SELECT"
	PrivilegeInsert Privilege = "INSERT"
	PrivilegeUpdate Privilege = "UPDATE"
	PrivilegeDelete Privilege = "DELETE"
	PrivilegeAll    Privilege = "ALL"
)

// Privileges lists the grantable privileges in display order.
var Privileges = []Privilege{PrivilegeSelect, PrivilegeInsert, PrivilegeUpdate, PrivilegeDelete, PrivilegeAll}

// ParsePrivilege maps user input onto the allow-list. Matching ignores case
// and surrounding space; anything else is rejected.
func ParsePrivilege(s string) (Privilege, error) {
	want := Privilege(strings.ToUpper(strings.TrimSpace(s)))
	for _, p := range Privileges {
		if p == want {
			return p, nil
		}
	}
	return "", &IdentifierError{Kind: "privilege", Value: s, Reason: "must be one of SELECT, INSERT, UPDATE, DELETE, ALL"}
}

// QuoteIdentifier back-quotes an identifier that has already passed
// ValidateIdentifier.
func QuoteIdentifier(value string) string {
	return "`" + value + "`"
}

var hostPattern = regexp.MustCompile(`^[A-Za-z0-9.%_-]{1,255}$`)

// ValidateHost checks the host part of a database account, which may carry
// the % and _ wildcards MySQL accepts there.
func ValidateHost(value string) error {
	if !hostPattern.MatchString(value) {
		return &IdentifierError{Kind: "host", Value: value, Reason: "only letters, digits, '.', '-', '_' and '%' are allowed"}
	}
	return nil
}
