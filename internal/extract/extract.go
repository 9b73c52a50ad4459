// Package extract turns files into plain text for the document organ.
// Each format has its own extractor; a partially failing extraction
// yields a bracketed error marker inside the text rather than an error,
// so the caller can still cache and reason about what was recovered.
package extract

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// DefaultMaxChars is the truncation ceiling applied to extracted text.
const DefaultMaxChars = 100_000

// Result is the outcome of extracting one file.
type Result struct {
	// FileType is the normalized format name, e.g. "PDF", "MARKDOWN", "TXT".
	FileType string
	// Text is the extracted content, truncated to the ceiling.
	Text string
	// Truncated is set when the ceiling was hit.
	Truncated bool
}

// File extracts text from the file at path. maxChars <= 0 uses
// DefaultMaxChars. The returned error is reserved for unreadable files;
// format-level trouble is reported inline in the text.
func File(path string, maxChars int) (Result, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read file: %w", err)
	}

	fileType := TypeOf(path)
	var text string

	switch fileType {
	case "MARKDOWN":
		text = markdownText(data)
	case "HTML":
		text = htmlText(data)
	case "JSON":
		text = jsonText(data)
	case "CSV":
		text = csvText(data)
	case "YAML":
		text = yamlText(data)
	case "ZIP":
		text = zipText(path)
	case "PDF":
		text = pdfText(path)
	case "DOCX":
		text = docxText(path)
	case "RTF":
		text = rtfText(data)
	case "TXT":
		text = textBytes(data)
	default:
		// Unknown extensions pass through only when they hold text.
		// Raw binary never enters the pipeline.
		if utf8.Valid(data) {
			text = string(data)
		} else {
			text = fmt.Sprintf("[%s extraction not supported: binary content]", fileType)
		}
	}

	truncated := false
	if len(text) > maxChars {
		text = Head(text, maxChars)
		truncated = true
	}

	return Result{FileType: fileType, Text: text, Truncated: truncated}, nil
}

// TypeOf normalizes a path's extension into a format name.
func TypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "MARKDOWN"
	case ".html", ".htm":
		return "HTML"
	case ".json":
		return "JSON"
	case ".csv":
		return "CSV"
	case ".yaml", ".yml":
		return "YAML"
	case ".zip":
		return "ZIP"
	case ".pdf":
		return "PDF"
	case ".docx":
		return "DOCX"
	case ".rtf":
		return "RTF"
	case ".txt", ".log", "":
		return "TXT"
	default:
		return strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	}
}

// Head returns at most n bytes of s, trimmed back so a multi-byte rune
// is never split.
func Head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// textBytes decodes a plain text file, falling back to Latin-1 for
// files that are not valid UTF-8.
func textBytes(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// Summary builds the short derived summary stored alongside extracted
// text, and used verbatim as the understanding in extraction-only mode.
func Summary(fileType, text string) string {
	words := len(strings.Fields(text))
	return fmt.Sprintf("%s document with %d words.", fileType, words)
}

// jsonText pretty-prints JSON so structure survives into the prompt.
func jsonText(data []byte) string {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Sprintf("[JSON parse error: %v]\n%s", err, string(data))
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(pretty)
}

// csvText renders rows as pipe-separated lines.
func csvText(data []byte) string {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1

	var sb strings.Builder
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			sb.WriteString(fmt.Sprintf("[CSV parse error: %v]\n", err))
			break
		}
		sb.WriteString(strings.Join(record, " | "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// yamlText normalizes YAML through a parse/serialize round trip.
func yamlText(data []byte) string {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return fmt.Sprintf("[YAML parse error: %v]\n%s", err, string(data))
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// zipText lists archive entries and inlines small plain-text members.
func zipText(path string) string {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Sprintf("[ZIP open error: %v]", err)
	}
	defer zr.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Archive with %d entries:\n", len(zr.File)))

	for _, f := range zr.File {
		sb.WriteString(fmt.Sprintf("- %s (%d bytes)\n", f.Name, f.UncompressedSize64))

		if TypeOf(f.Name) != "TXT" || f.UncompressedSize64 > 64*1024 {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			sb.WriteString(fmt.Sprintf("  [entry open error: %v]\n", err))
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			sb.WriteString(fmt.Sprintf("  [entry read error: %v]\n", err))
			continue
		}
		sb.WriteString(indent(string(content)))
	}
	return sb.String()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n") + "\n"
}
