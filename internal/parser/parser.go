package parser

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

// ErrUnsupportedFormat marks a file whose extension has no extractor. Ingestion
// records it as a per-file result and moves on; it never aborts the batch.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var xmlTags = regexp.MustCompile(`<[^>]+>`)

// Extract returns the plain text of a document file.
func Extract(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return extractPDF(filePath)
	case ".txt":
		return extractText(filePath)
	case ".md":
		return extractMarkdown(filePath)
	case ".docx":
		return extractDOCX(filePath)
	case ".pptx":
		return extractPPTX(filePath)
	case ".xlsx":
		return extractXLSX(filePath)
	case ".ods":
		return extractODS(filePath)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func extractPDF(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return text.String(), nil
}

func extractText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractMarkdown walks the goldmark AST and collects the text nodes, so
// markup characters never end up in the index.
func extractMarkdown(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gmtext.NewReader(data))

	var text strings.Builder
	writeLines := func(lines *gmtext.Segments) {
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			text.Write(seg.Value(data))
		}
	}
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				text.Write(node.Segment.Value(data))
				if node.SoftLineBreak() || node.HardLineBreak() {
					text.WriteByte('\n')
				}
			}
		case *ast.FencedCodeBlock:
			if entering {
				writeLines(node.Lines())
			}
		case *ast.CodeBlock:
			if entering {
				writeLines(node.Lines())
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				text.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return text.String(), nil
}

func extractDOCX(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	// GetContent returns the raw document XML; strip the markup down to runs.
	content := r.Editable().GetContent()
	return xmlTags.ReplaceAllString(content, " "), nil
}

func extractPPTX(filePath string) (string, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		text.WriteString(slideText(string(data)))
		text.WriteString("\n")
	}
	return text.String(), nil
}

// slideText pulls the contents of <a:t> runs out of a slide's XML.
func slideText(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

func extractXLSX(filePath string) (string, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, sheet := range f.Sheets {
		text.WriteString(sheet.Name + "\n")
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}

func extractODS(filePath string) (string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(sheetName + "\n")
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}
