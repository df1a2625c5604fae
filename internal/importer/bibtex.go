package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/bibnow/internal/reference"
)

// ParseError describes a malformed block in a BibTeX input.
// Parsing continues with the next block after one fails.
type ParseError struct {
	// Index is the zero-based position of the block among all @-blocks.
	Index int
	// Key is the citation key, when it could be read.
	Key string
	// Line is the 1-based line of the block's '@'.
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("bibtex block %d (%s) at line %d: %s", e.Index+1, e.Key, e.Line, e.Msg)
	}
	return fmt.Sprintf("bibtex block %d at line %d: %s", e.Index+1, e.Line, e.Msg)
}

var errUnbalanced = errors.New("unbalanced braces")

// standardMacros are the month abbreviations every BibTeX style predefines.
var standardMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

type bibParser struct {
	src    string
	pos    int
	macros map[string]string
}

// ParseBibTeX parses every @type{key, field = value, ...} block in text.
// Malformed blocks are reported as *ParseError and skipped.
func ParseBibTeX(text string) ([]reference.SourceRecord, []error) {
	p := &bibParser{src: text, macros: make(map[string]string, len(standardMacros))}
	for k, v := range standardMacros {
		p.macros[k] = v
	}

	var records []reference.SourceRecord
	var errs []error
	index := 0

	for p.pos < len(p.src) {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			break
		}
		start := p.pos + at
		p.pos = start + 1

		kind := strings.ToLower(p.readIdent())
		if kind == "" {
			continue
		}
		p.skipSpace()
		open := p.peek()
		if open != '{' && open != '(' {
			// Free text such as an e-mail address, not a block.
			continue
		}
		p.pos++
		closer := byte('}')
		if open == '(' {
			closer = ')'
		}

		var err error
		var key string
		switch kind {
		case "comment", "preamble":
			err = p.skipBlock(open, closer)
		case "string":
			err = p.parseMacro(closer)
		default:
			var rec reference.SourceRecord
			rec, err = p.parseEntry(kind, closer)
			key = rec.Key
			if err == nil {
				records = append(records, rec)
			}
		}

		if err != nil {
			errs = append(errs, &ParseError{
				Index: index,
				Key:   key,
				Line:  strings.Count(p.src[:start], "\n") + 1,
				Msg:   err.Error(),
			})
			p.recover(start)
		}
		index++
	}

	return records, errs
}

func (p *bibParser) parseEntry(kind string, closer byte) (reference.SourceRecord, error) {
	rec := reference.NewSourceRecord(kind, "")

	key, err := p.readKey(closer)
	if err != nil {
		return rec, err
	}
	rec.Key = key

	for {
		p.skipSpace()
		if p.eof() {
			return rec, errUnbalanced
		}
		c := p.peek()
		switch {
		case c == closer:
			p.pos++
			return rec, nil
		case c == ',':
			p.pos++
			continue
		case c == '@':
			return rec, fmt.Errorf("%w: entry not closed", errUnbalanced)
		}

		name := p.readFieldName()
		if name == "" {
			return rec, fmt.Errorf("unexpected %q", c)
		}
		p.skipSpace()
		if p.peek() != '=' {
			return rec, fmt.Errorf("missing '=' after field %q", name)
		}
		p.pos++

		value, err := p.readValue(closer)
		if err != nil {
			return rec, fmt.Errorf("field %q: %w", name, err)
		}

		name = strings.ToLower(name)
		if _, dup := rec.Fields[name]; !dup {
			rec.Set(name, value)
		}
	}
}

func (p *bibParser) parseMacro(closer byte) error {
	p.skipSpace()
	name := p.readFieldName()
	if name == "" {
		return errors.New("missing @string name")
	}
	p.skipSpace()
	if p.peek() != '=' {
		return fmt.Errorf("missing '=' after @string %q", name)
	}
	p.pos++
	value, err := p.readValue(closer)
	if err != nil {
		return fmt.Errorf("@string %q: %w", name, err)
	}
	p.skipSpace()
	if p.peek() != closer {
		return fmt.Errorf("@string %q: %w", name, errUnbalanced)
	}
	p.pos++
	p.macros[strings.ToLower(name)] = value
	return nil
}

// readKey reads the citation key up to the first comma. A block that closes
// right after the key has no fields.
func (p *bibParser) readKey(closer byte) (string, error) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		switch c {
		case ',':
			key := strings.TrimSpace(p.src[start:p.pos])
			if key == "" {
				return "", errors.New("missing citation key")
			}
			p.pos++
			return key, nil
		case closer:
			key := strings.TrimSpace(p.src[start:p.pos])
			if key == "" {
				return "", errors.New("missing citation key")
			}
			return key, nil
		case '=', '{', '}', '"', '@':
			return "", errors.New("missing citation key")
		}
		p.pos++
	}
	return "", errUnbalanced
}

// readValue reads one field value: braced, quoted or bare parts joined by '#'.
func (p *bibParser) readValue(closer byte) (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.eof() {
			return "", errUnbalanced
		}
		switch p.peek() {
		case '{':
			p.pos++
			s, err := p.readBraced()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case '"':
			p.pos++
			s, err := p.readQuoted()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			tok := p.readBare(closer)
			if tok == "" {
				return "", errors.New("missing value")
			}
			if m, ok := p.macros[strings.ToLower(tok)]; ok && !isDigits(tok) {
				b.WriteString(m)
			} else {
				b.WriteString(tok)
			}
		}

		p.skipSpace()
		if p.peek() == '#' {
			p.pos++
			continue
		}
		return collapseSpace(b.String()), nil
	}
}

// readBraced reads up to the brace matching an already consumed '{'.
// Inner braces are kept.
func (p *bibParser) readBraced() (string, error) {
	start := p.pos
	depth := 1
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		}
	}
	return "", errUnbalanced
}

// readQuoted reads up to the closing '"' at brace depth zero.
func (p *bibParser) readQuoted() (string, error) {
	start := p.pos
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return "", errUnbalanced
			}
		case '"':
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		}
	}
	return "", errors.New("unterminated quoted value")
}

func (p *bibParser) readBare(closer byte) string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if isSpace(c) || c == ',' || c == '#' || c == '}' || c == closer {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *bibParser) readIdent() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *bibParser) readFieldName() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if isSpace(c) || strings.IndexByte("=,{}()\"#@", c) >= 0 {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// skipBlock skips a balanced @comment or @preamble body.
func (p *bibParser) skipBlock(open, closer byte) error {
	depth := 1
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
	}
	return errUnbalanced
}

// recover moves to the next '@' that starts a line after a failed block.
func (p *bibParser) recover(from int) {
	for i := from + 1; i < len(p.src); i++ {
		if p.src[i] == '@' && atLineStart(p.src, i) {
			p.pos = i
			return
		}
	}
	p.pos = len(p.src)
}

func (p *bibParser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *bibParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *bibParser) eof() bool {
	return p.pos >= len(p.src)
}

func atLineStart(s string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch s[j] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			continue
		default:
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
