package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// QuoteIdent backtick-quotes a table or column name. Qualified names
// ("Books.title") are quoted part by part and a trailing "*" is left bare.
func QuoteIdent(name string) (string, error) {
	if name == "*" {
		return name, nil
	}

	parts := strings.Split(name, ".")
	quoted := make([]string, len(parts))
	for i, part := range parts {
		if part == "*" && i == len(parts)-1 && i > 0 {
			quoted[i] = part
			continue
		}
		if !identRegex.MatchString(part) {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
		quoted[i] = "`" + part + "`"
	}
	return strings.Join(quoted, "."), nil
}

// QuoteIdents quotes each name and joins them with ", ".
func QuoteIdents(names []string) (string, error) {
	quoted := make([]string, len(names))
	for i, name := range names {
		q, err := QuoteIdent(name)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, ", "), nil
}
