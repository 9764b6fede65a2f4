package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// maxHeaderScan bounds how many leading lines may precede the header row.
const maxHeaderScan = 10

// Decode converts a downloaded document to UTF-8. A byte-order mark selects
// the encoding and is removed. Without one, valid UTF-8 is kept and anything
// else is read as Windows-1252, so malformed bytes never fail a document.
func Decode(data []byte) []byte {
	var fallback encoding.Encoding = unicode.UTF8
	if !utf8.Valid(data) && !hasUnicodeBOM(data) {
		fallback = charmap.Windows1252
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback.NewDecoder()), data)
	if err != nil {
		return bytes.ToValidUTF8(data, []byte("\uFFFD"))
	}
	return out
}

func hasUnicodeBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// ReadCSV decodes a CSV document into rows keyed by header.
// The delimiter (comma, semicolon or tab) is sniffed from the first line.
// Title lines before the header are skipped. A malformed line ends the read
// and the rows decoded so far are returned.
func ReadCSV(data []byte) ([]domain.RawRow, error) {
	text := Decode(data)

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var header []string
	for i := 0; i < maxHeaderScan && header == nil; i++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		if nonEmpty(rec) >= 2 {
			header = rec
		}
	}
	if header == nil {
		return nil, fmt.Errorf("read header: %w", domain.ErrInvalidInput)
	}

	var rows []domain.RawRow
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Debug("csv: stopping after %d rows: %v", len(rows), err)
			break
		}
		if nonEmpty(rec) == 0 {
			continue
		}

		row := make(domain.RawRow, len(header))
		for i, h := range header {
			h = strings.TrimSpace(h)
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if c := bytes.Count(line, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func nonEmpty(rec []string) int {
	n := 0
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}
