package ldap

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// EscapeDNValue escapes special characters in a DN attribute value according to RFC 4514.
//
//   - "Doe, John" → "Doe\, John"
//   - " John " → "\ John\ "
//   - "#123" → "\#123"
func EscapeDNValue(value string) string {
	if !NeedsDNEscaping(value) {
		return value
	}

	var result strings.Builder
	result.Grow(len(value) + 8)

	for i, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';':
			result.WriteRune('\\')
			result.WriteRune(r)
		case '#':
			if i == 0 {
				result.WriteRune('\\')
			}
			result.WriteRune(r)
		case ' ':
			if i == 0 || i == len(value)-1 {
				result.WriteRune('\\')
			}
			result.WriteRune(r)
		case 0:
			result.WriteString("\\00")
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// NeedsDNEscaping checks if a value contains characters that need DN escaping.
func NeedsDNEscaping(value string) bool {
	if value == "" {
		return false
	}

	if value[0] == ' ' || value[len(value)-1] == ' ' || value[0] == '#' {
		return true
	}

	for _, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';', 0:
			return true
		}
	}

	return false
}

// NormalizeDN parses dn and rebuilds it with lowercase attribute types and
// values, so equal DNs compare equal as strings.
//
// Input:  "UID=Alice,OU=People,DC=Example,DC=com"
// Output: "uid=alice,ou=people,dc=example,dc=com"
func NormalizeDN(dn string) (string, error) {
	dn = strings.TrimSpace(dn)
	if dn == "" {
		return "", nil
	}

	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDN, err)
	}

	return formatDN(parsed.RDNs), nil
}

// ValidateDNSyntax validates that a string is a properly formatted Distinguished Name.
func ValidateDNSyntax(dn string) error {
	if dn == "" {
		return fmt.Errorf("%w: DN cannot be empty", ErrInvalidDN)
	}

	if _, err := ldap.ParseDN(dn); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDN, err)
	}

	return nil
}

// IsDNChild checks if childDN is a direct or indirect child of parentDN.
// Comparison is case-insensitive.
func IsDNChild(childDN, parentDN string) (bool, error) {
	parsedChild, err := ldap.ParseDN(childDN)
	if err != nil {
		return false, fmt.Errorf("invalid child DN syntax: %w", err)
	}

	parsedParent, err := ldap.ParseDN(parentDN)
	if err != nil {
		return false, fmt.Errorf("invalid parent DN syntax: %w", err)
	}

	if len(parsedChild.RDNs) <= len(parsedParent.RDNs) {
		return false, nil
	}

	tail := parsedChild.RDNs[len(parsedChild.RDNs)-len(parsedParent.RDNs):]
	return formatDN(tail) == formatDN(parsedParent.RDNs), nil
}

// splitLeafDN parses dn as a single-valued leaf RDN directly below parentDN
// and returns the leaf's attribute type (lowercased) and unescaped value.
func splitLeafDN(dn, parentDN string) (string, string, error) {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidDN, err)
	}
	parent, err := ldap.ParseDN(parentDN)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidDN, err)
	}

	if len(parsed.RDNs) != len(parent.RDNs)+1 || formatDN(parsed.RDNs[1:]) != formatDN(parent.RDNs) {
		return "", "", fmt.Errorf("%w: %q is not directly below %q", ErrWrongBranch, dn, parentDN)
	}

	leaf := parsed.RDNs[0]
	if len(leaf.Attributes) != 1 {
		return "", "", fmt.Errorf("%w: multi-valued RDN in %q", ErrInvalidDN, dn)
	}

	return strings.ToLower(leaf.Attributes[0].Type), leaf.Attributes[0].Value, nil
}

func formatDN(rdns []*ldap.RelativeDN) string {
	parts := make([]string, len(rdns))

	for i, rdn := range rdns {
		attrs := make([]string, len(rdn.Attributes))
		for j, attr := range rdn.Attributes {
			attrs[j] = strings.ToLower(attr.Type) + "=" + EscapeDNValue(strings.ToLower(attr.Value))
		}
		parts[i] = strings.Join(attrs, "+")
	}

	return strings.Join(parts, ",")
}
