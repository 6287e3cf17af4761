package meta

import (
	"fmt"
	"strings"
	"unicode"
)

// Case is the letter case of a naming style.
type Case uint8

const (
	Lower  Case = iota // mycase
	Upper              // MYCASE
	Pascal             // MyCase
	Camel              // myCase
)

var caseNames = [...]string{"lower", "upper", "pascal", "camel"}

func (c Case) String() string {
	if int(c) < len(caseNames) {
		return caseNames[c]
	}
	return fmt.Sprintf("case(%d)", c)
}

// ParseCase parses the String form of a Case.
func ParseCase(s string) (Case, error) {
	for i, n := range caseNames {
		if strings.EqualFold(s, n) {
			return Case(i), nil
		}
	}
	return 0, fmt.Errorf("unknown case %q", s)
}

// Naming describes how identifiers are spelled: an optional prefix and
// suffix around words joined by Sep in the given Case.
type Naming struct {
	Prefix string
	Suffix string
	Sep    string
	Case   Case
}

var (
	SnakeCase  = Naming{Sep: "_", Case: Lower}
	ConstCase  = Naming{Sep: "_", Case: Upper}
	KebabCase  = Naming{Sep: "-", Case: Lower}
	CamelCase  = Naming{Case: Camel}
	PascalCase = Naming{Case: Pascal}
)

// Apply respells name in this naming, whatever style it was written in.
func (n Naming) Apply(name string) string {
	return n.Join(SplitWords(name))
}

// Join spells words in this naming.
func (n Naming) Join(words []string) string {
	var b strings.Builder
	b.WriteString(n.Prefix)
	for i, w := range words {
		if w == "" {
			continue
		}
		switch n.Case {
		case Lower:
			if i > 0 {
				b.WriteString(n.Sep)
			}
			b.WriteString(strings.ToLower(w))
		case Upper:
			if i > 0 {
				b.WriteString(n.Sep)
			}
			b.WriteString(strings.ToUpper(w))
		case Pascal:
			if i > 0 {
				b.WriteString(n.Sep)
			}
			b.WriteString(title(w))
		case Camel:
			if i > 0 {
				b.WriteString(n.Sep)
				b.WriteString(title(w))
			} else {
				b.WriteString(strings.ToLower(w))
			}
		}
	}
	b.WriteString(n.Suffix)
	return b.String()
}

// Convert respells name from naming from into n. It fails if name lacks
// from's prefix or suffix.
func (n Naming) Convert(name string, from Naming) (string, error) {
	stripped, ok := strings.CutPrefix(name, from.Prefix)
	if !ok {
		return "", fmt.Errorf("name %q lacks prefix %q", name, from.Prefix)
	}
	stripped, ok = strings.CutSuffix(stripped, from.Suffix)
	if !ok {
		return "", fmt.Errorf("name %q lacks suffix %q", name, from.Suffix)
	}
	return n.Apply(stripped), nil
}

// SplitWords splits an identifier into words on separators and case
// boundaries. Acronyms stay together: GetHTTPURL -> get, http, url.
func SplitWords(s string) []string {
	var words []string
	runes := []rune(s)
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r):
			flush()
			end := i + 1
			for end < len(runes) && unicode.IsUpper(runes[end]) {
				end++
			}
			// last capital before a lowercase run starts the next word
			if end > i+1 && end < len(runes) && unicode.IsLower(runes[end]) {
				end--
			}
			for j := i; j < end; j++ {
				cur = append(cur, unicode.ToLower(runes[j]))
			}
			if end > i+1 {
				flush()
			}
			i = end - 1
		case unicode.IsDigit(r):
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

func title(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Conventions is the naming descriptor of a package: how each category of
// identifier is spelled. It is used only by text emission.
type Conventions struct {
	Type      Naming
	Method    Naming
	Property  Naming
	Variant   Naming
	Parameter Naming
}

// GoConventions spells exported identifiers the way Go does.
var GoConventions = Conventions{
	Type:      PascalCase,
	Method:    PascalCase,
	Property:  PascalCase,
	Variant:   PascalCase,
	Parameter: CamelCase,
}

// SnakeConventions spells members in snake_case and types in PascalCase.
var SnakeConventions = Conventions{
	Type:      PascalCase,
	Method:    SnakeCase,
	Property:  SnakeCase,
	Variant:   PascalCase,
	Parameter: SnakeCase,
}
