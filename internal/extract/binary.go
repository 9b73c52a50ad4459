package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfText extracts the plain text of every page. The PDF reader panics
// on some malformed files, so the recovery also lands in the marker.
func pdfText(path string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("[PDF extraction error: %v]", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Sprintf("[PDF extraction error: %v]", err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return fmt.Sprintf("[PDF extraction error: %v]", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, content); err != nil {
		return fmt.Sprintf("[PDF extraction error: %v]", err)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "[PDF is empty]"
	}
	return sb.String()
}

// docxText pulls the run text out of the word/document.xml member of the
// DOCX container, one line per paragraph.
func docxText(path string) string {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Sprintf("[DOCX extraction error: %v]", err)
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "[DOCX extraction error: no word/document.xml in archive]"
	}

	rc, err := doc.Open()
	if err != nil {
		return fmt.Sprintf("[DOCX extraction error: %v]", err)
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inRun := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			sb.WriteString(fmt.Sprintf("[DOCX parse error: %v]", err))
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				sb.Write(t)
			}
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "[DOCX is empty]"
	}
	return sb.String()
}

// rtfText strips RTF control words and groups down to the document text.
// Destination groups whose content is not body text (font and color
// tables, stylesheets, embedded pictures) are dropped whole.
func rtfText(data []byte) string {
	if !strings.HasPrefix(string(data), `{\rtf`) {
		return "[RTF extraction error: not an RTF document]"
	}

	var sb strings.Builder
	depth := 0
	skipDepth := 0 // group depth whose subtree is being dropped, 0 when none

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '{':
			depth++
			i++
		case c == '}':
			if skipDepth > 0 && depth == skipDepth {
				skipDepth = 0
			}
			depth--
			i++
		case c == '\r' || c == '\n':
			i++
		case c == '\\':
			i++
			if i >= len(data) {
				break
			}
			switch next := data[i]; {
			case next == '\'' && i+2 < len(data):
				if b, err := strconv.ParseUint(string(data[i+1:i+3]), 16, 8); err == nil && skipDepth == 0 {
					sb.WriteRune(rune(b))
				}
				i += 3
			case next == '\\' || next == '{' || next == '}':
				if skipDepth == 0 {
					sb.WriteByte(next)
				}
				i++
			case next == '*':
				if skipDepth == 0 {
					skipDepth = depth
				}
				i++
			case isRTFAlpha(next):
				start := i
				for i < len(data) && isRTFAlpha(data[i]) {
					i++
				}
				word := string(data[start:i])
				for i < len(data) && (data[i] == '-' || (data[i] >= '0' && data[i] <= '9')) {
					i++
				}
				// One space after a control word is part of the word.
				if i < len(data) && data[i] == ' ' {
					i++
				}
				if skipDepth == 0 {
					switch word {
					case "par", "line":
						sb.WriteByte('\n')
					case "tab":
						sb.WriteByte('\t')
					case "fonttbl", "colortbl", "stylesheet", "info", "pict":
						skipDepth = depth
					}
				}
			default:
				i++
			}
		default:
			if skipDepth == 0 {
				sb.WriteByte(c)
			}
			i++
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "[RTF is empty]"
	}
	return text
}

func isRTFAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
