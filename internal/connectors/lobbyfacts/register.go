package lobbyfacts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	xpp "github.com/mmcdole/goxpp"
)

const representativeTag = "interestRepresentative"

// Representative is one interest representative from the register dump.
type Representative struct {
	ID      string `xml:"identificationCode"`
	Name    string `xml:"name>originalName"`
	Acronym string `xml:"acronym"`
}

// Matches reports whether the lowercase term appears in the name or acronym.
func (r Representative) Matches(term string) bool {
	return strings.Contains(strings.ToLower(r.Name), term) ||
		(r.Acronym != "" && strings.Contains(strings.ToLower(r.Acronym), term))
}

// MatchRegister streams the register dump and returns, in document order,
// up to limit representatives matching the term. A non-positive limit
// returns every match.
func MatchRegister(data []byte, term string, limit int) ([]Representative, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	p := xpp.NewXMLPullParser(bytes.NewReader(data), false, passthroughCharset)
	var matches []Representative
	for {
		event, err := p.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return matches, fmt.Errorf("read register: %w", err)
		}
		if event == xpp.EndDocument {
			break
		}
		if event != xpp.StartTag || p.Name != representativeTag {
			continue
		}

		var rep Representative
		if err := p.DecodeElement(&rep); err != nil {
			return matches, fmt.Errorf("decode representative: %w", err)
		}
		rep.Name = strings.TrimSpace(rep.Name)
		rep.ID = strings.TrimSpace(rep.ID)
		rep.Acronym = strings.TrimSpace(rep.Acronym)
		if rep.ID == "" || !rep.Matches(term) {
			continue
		}

		matches = append(matches, rep)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// passthroughCharset accepts any declared charset; the dump is UTF-8.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
