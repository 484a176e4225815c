package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	sniffSize  = 4096
	sniffLines = 5
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// однобайтовые кодировки, которые встречаются в выгрузках PMS
var legacyCharsets = map[string]*charmap.Charmap{
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
}

// readCSV: сырые записи CSV в UTF-8. Кодировку и разделитель угадывает по началу файла.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	head, _ := br.Peek(sniffSize)
	head = bytes.Clone(head)

	var src io.Reader = br
	if bytes.HasPrefix(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		head = head[len(utf8BOM):]
	} else if cm := pickCharmap(head, len(head) == sniffSize, detectCharset(head)); cm != nil {
		src = transform.NewReader(br, cm.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = sniffComma(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return rows, nil
}

func detectCharset(head []byte) string {
	if len(head) == 0 {
		return ""
	}
	det, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil || det == nil {
		return ""
	}
	return strings.ToLower(det.Charset)
}

// pickCharmap: nil = читать как UTF-8. Не-UTF-8 с неизвестной кодировкой считаем cp1251.
// truncated: head обрезан по размеру буфера и может кончаться половиной символа.
func pickCharmap(head []byte, truncated bool, detected string) *charmap.Charmap {
	if validUTF8Head(head, truncated) {
		return nil
	}
	if cm, ok := legacyCharsets[detected]; ok {
		return cm
	}
	return charmap.Windows1251
}

func validUTF8Head(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if tail := b[len(b)-i:]; !utf8.FullRune(tail) && utf8.Valid(b[:len(b)-i]) {
			return true
		}
	}
	return false
}

// sniffComma: самый частый из , ; \t в первых строках. Excel с русской локалью пишет ";".
func sniffComma(head []byte) rune {
	lines := bytes.SplitN(head, []byte{'\n'}, sniffLines+1)
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}
	counts := map[rune]int{}
	for _, l := range lines {
		for _, c := range []rune{',', ';', '\t'} {
			counts[c] += bytes.Count(l, []byte{byte(c)})
		}
	}
	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
