package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadXLSX reads the first worksheet of an .xlsx workbook into a Table. Some
// instrument PCs export results through Excel instead of the plain CSV
// export; the cleaning rules are the same as for ReadTable.
func ReadXLSX(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheet := zipEntry(zr, firstSheetPath(zr))
	if sheet == nil {
		return nil, fmt.Errorf("workbook %s has no readable worksheet", path)
	}
	shared := sharedStrings(zipEntry(zr, "xl/sharedStrings.xml"))

	rows := sheetRows(sheet, shared)
	if len(rows) == 0 {
		return &Table{Columns: map[string][]string{}}, nil
	}

	t := &Table{Columns: make(map[string][]string, len(rows[0]))}
	for _, h := range rows[0] {
		clean := headerJunk.ReplaceAllString(h, "")
		t.Headers = append(t.Headers, clean)
		t.Columns[clean] = nil
	}
	for _, rec := range rows[1:] {
		for i, h := range t.Headers {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(badTokens.Replace(rec[i]))
			}
			t.Columns[h] = append(t.Columns[h], v)
		}
		t.rows++
	}
	return t, nil
}

// firstSheetPath resolves the workbook's first sheet through its relationship
// table, falling back to the conventional sheet1 path.
func firstSheetPath(zr *zip.Reader) string {
	rels := map[string]string{}
	if data := zipEntry(zr, "xl/_rels/workbook.xml.rels"); data != nil {
		dec := xml.NewDecoder(bytes.NewReader(data))
		for {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != "Relationship" {
				continue
			}
			var id, target string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "Id":
					id = a.Value
				case "Target":
					target = a.Value
				}
			}
			rels[id] = target
		}
	}

	if data := zipEntry(zr, "xl/workbook.xml"); data != nil {
		dec := xml.NewDecoder(bytes.NewReader(data))
		for {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != "sheet" {
				continue
			}
			for _, a := range se.Attr {
				if a.Name.Local != "id" {
					continue
				}
				if target, ok := rels[a.Value]; ok {
					target = strings.TrimPrefix(target, "/")
					if !strings.HasPrefix(target, "xl/") {
						target = "xl/" + target
					}
					return target
				}
			}
			break
		}
	}
	return "xl/worksheets/sheet1.xml"
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// sharedStrings decodes the workbook's shared-string pool, which string cells
// reference by index.
func sharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inText = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inText {
				buf.Write([]byte(se))
			}
		}
	}
	return out
}

// sheetRows walks a worksheet's XML and returns its rows as strings, with
// shared-string cells resolved and sparse cells filled in by column reference.
func sheetRows(data []byte, shared []string) [][]string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var rows [][]string
	var cur []string
	width := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "row":
				cur = nil
				width = 0
			case "c":
				var ref, kind string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						kind = a.Value
					}
				}
				col := columnIndex(ref)
				if col >= len(cur) {
					grown := make([]string, col+1)
					copy(grown, cur)
					cur = grown
				}
				if col+1 > width {
					width = col + 1
				}
				cur[col] = cellValue(dec, kind, shared)
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				row := make([]string, width)
				copy(row, cur)
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// cellValue consumes tokens up to the cell's closing tag and returns its
// text, resolving shared-string references.
func cellValue(dec *xml.Decoder, kind string, shared []string) string {
	var val string
	capture := false
	var buf strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				capture = true
				buf.Reset()
			}
		case xml.CharData:
			if capture {
				buf.Write([]byte(se))
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "v", "t":
				capture = false
				val = buf.String()
			case "c":
				if kind == "s" {
					if i, err := strconv.Atoi(val); err == nil && i >= 0 && i < len(shared) {
						return shared[i]
					}
					return ""
				}
				return val
			}
		}
	}
}

// columnIndex maps a cell reference like "C12" to its 0-based column.
func columnIndex(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			if idx == 0 {
				return 0
			}
			return idx - 1
		}
	}
	if idx == 0 {
		return 0
	}
	return idx - 1
}
