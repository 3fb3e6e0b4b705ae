package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	keyRe = regexp.MustCompile("(?i)^(UNIQUE\\s+|FULLTEXT\\s+|SPATIAL\\s+)?(?:KEY|INDEX)\\s+(?:`([^`]+)`|(\\w+))?\\s*\\((.*)\\)")

	keyLengthRe  = regexp.MustCompile("(`[^`]+`)\\(\\d+\\)")
	indexTypeRe  = regexp.MustCompile(`(?i)\s+USING\s+(BTREE|HASH)`)
	commentRe    = regexp.MustCompile(`(?i)\s+COMMENT\s+'(?:[^'\\]|\\.|'')*'`)
	charsetRe    = regexp.MustCompile(`(?i)\s+(?:CHARACTER\s+SET|CHARSET)\s+\w+`)
	collateRe    = regexp.MustCompile(`(?i)\s+COLLATE\s+\w+`)
	onUpdateRe   = regexp.MustCompile(`(?i)\s+ON\s+UPDATE\s+CURRENT_TIMESTAMP(?:\(\d*\))?`)
	autoIncRe    = regexp.MustCompile(`(?i)\s+AUTO_INCREMENT\b`)
	unsignedRe   = regexp.MustCompile(`(?i)\s+(?:UNSIGNED|ZEROFILL)\b`)
	enumRe       = regexp.MustCompile(`(?i)\b(?:enum|set)\((?:'(?:[^'\\]|\\.|'')*'\s*,?\s*)*\)`)
	currentTsRe  = regexp.MustCompile(`(?i)CURRENT_TIMESTAMP\(\d*\)`)
	bitDefaultRe = regexp.MustCompile(`(?i)DEFAULT\s+b'([01]+)'`)
	generatedRe  = regexp.MustCompile(`(?i)\s+GENERATED\s+ALWAYS\s+AS\s+\(.*\)\s*(?:VIRTUAL|STORED)\b`)
)

// QuoteIdent quotes an identifier for SQLite.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// TranslateSchema turns a CREATE TABLE statement into the statements SQLite
// needs to create the same table. MySQL SHOW CREATE TABLE output (one
// definition per line, table options after the closing paren) is rewritten;
// anything else is returned unchanged.
func TranslateSchema(table, schema string) []string {
	lines := strings.Split(strings.ReplaceAll(schema, "\r\n", "\n"), "\n")
	if len(lines) < 3 || !strings.HasSuffix(strings.TrimSpace(lines[0]), "(") {
		return []string{schema}
	}

	end := -1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), ")") {
			end = i
			break
		}
	}
	if end < 0 {
		return []string{schema}
	}

	var defs, indexes []string
	for _, line := range lines[1:end] {
		l := strings.TrimSuffix(strings.TrimSpace(line), ",")
		if l == "" {
			continue
		}
		upper := strings.ToUpper(l)

		switch {
		case strings.HasPrefix(upper, "PRIMARY KEY"):
			defs = append(defs, stripKeyLengths(indexTypeRe.ReplaceAllString(l, "")))
		case keyRe.MatchString(l):
			m := keyRe.FindStringSubmatch(l)
			kind := strings.ToUpper(strings.TrimSpace(m[1]))
			cols := stripKeyLengths(m[4])
			switch kind {
			case "UNIQUE":
				defs = append(defs, "UNIQUE ("+cols+")")
			case "":
				name := m[2]
				if name == "" {
					name = m[3]
				}
				indexes = append(indexes, fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
					QuoteIdent(table+"_"+name), QuoteIdent(table), cols))
			}
			// FULLTEXT and SPATIAL have no SQLite equivalent.
		case strings.HasPrefix(upper, "CONSTRAINT"),
			strings.HasPrefix(upper, "FOREIGN KEY"),
			strings.HasPrefix(upper, "CHECK"):
			defs = append(defs, l)
		default:
			defs = append(defs, cleanColumn(l))
		}
	}

	create := strings.TrimSpace(lines[0]) + "\n  " + strings.Join(defs, ",\n  ") + "\n)"
	return append([]string{create}, indexes...)
}

func stripKeyLengths(s string) string {
	return keyLengthRe.ReplaceAllString(s, "$1")
}

// cleanColumn strips what SQLite cannot parse. Generated columns become plain
// columns: their computed values arrive with the rows like any other.
func cleanColumn(l string) string {
	l = generatedRe.ReplaceAllString(l, "")
	l = commentRe.ReplaceAllString(l, "")
	l = charsetRe.ReplaceAllString(l, "")
	l = collateRe.ReplaceAllString(l, "")
	l = onUpdateRe.ReplaceAllString(l, "")
	l = autoIncRe.ReplaceAllString(l, "")
	l = unsignedRe.ReplaceAllString(l, "")
	l = enumRe.ReplaceAllString(l, "text")
	l = currentTsRe.ReplaceAllString(l, "CURRENT_TIMESTAMP")
	l = bitDefaultRe.ReplaceAllStringFunc(l, func(s string) string {
		bits := bitDefaultRe.FindStringSubmatch(s)[1]
		n, err := strconv.ParseInt(bits, 2, 64)
		if err != nil {
			return s
		}
		return "DEFAULT " + strconv.FormatInt(n, 10)
	})
	return l
}
