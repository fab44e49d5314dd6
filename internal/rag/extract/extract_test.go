package extract

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDocx(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// writePDF builds an uncompressed PDF with one page per entry of pages. An
// empty entry yields a page without a content stream.
func writePDF(t *testing.T, dir, name string, pages []string) string {
	t.Helper()
	var objects []string
	kids := make([]string, 0, len(pages))
	// 1 catalog, 2 page tree, 3 font, then a page object and an optional
	// content stream per page.
	next := 4
	var pageObjects []string
	for _, text := range pages {
		pageID := next
		next++
		kids = append(kids, fmt.Sprintf("%d 0 R", pageID))
		page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 300 300] /Resources << /Font << /F1 3 0 R >> >>"
		if text == "" {
			pageObjects = append(pageObjects, page+" >>")
			continue
		}
		contentID := next
		next++
		stream := "BT /F1 12 Tf 20 150 Td (" + text + ") Tj ET"
		pageObjects = append(pageObjects,
			page+fmt.Sprintf(" /Contents %d 0 R >>", contentID),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	objects = append(objects, pageObjects...)

	var sb strings.Builder
	sb.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = sb.Len()
		fmt.Fprintf(&sb, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := sb.Len()
	fmt.Fprintf(&sb, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&sb, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&sb, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return writeFile(t, dir, name, sb.String())
}

func TestExtractor_DefaultFormats(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	require.True(t, e.Accepts("a/b/notes.TXT"))
	require.True(t, e.Accepts("report.pdf"))
	require.True(t, e.Accepts("memo.docx"))
	require.False(t, e.Accepts("sheet.xlsx"))
	require.False(t, e.Accepts("README"))
}

func TestExtractor_UnknownFormat(t *testing.T) {
	_, err := New([]string{".txt", ".exe"})
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)
}

func TestExtractor_UnsupportedExtensionIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a,b,c")
	e, err := New(nil)
	require.NoError(t, err)
	text, err := e.Extract(path)
	require.NoError(t, err)
	require.Empty(t, text)
}

func TestExtractor_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "ligne un\nligne deux")
	e, err := New(nil)
	require.NoError(t, err)
	text, err := e.Extract(path)
	require.NoError(t, err)
	require.Equal(t, "ligne un\nligne deux", text)
}

func TestExtractor_PlainTextRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "latin1.txt", "m\xe9dicament \xe0 jeun")
	e, err := New(nil)
	require.NoError(t, err)
	_, err = e.Extract(path)
	require.Error(t, err)
}

func TestExtractor_PDFBlankPageIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "notice.pdf", []string{"Posologie adulte", ""})
	e, err := New(nil)
	require.NoError(t, err)
	text, err := e.Extract(path)
	require.NoError(t, err)
	// BT opens the text object on a new line, the blank page adds an empty entry.
	require.Equal(t, "\nPosologie adulte\n", text)
}

func TestExtractor_CorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "this is not a pdf at all")
	e, err := New(nil)
	require.NoError(t, err)
	_, err = e.Extract(path)
	require.Error(t, err)
}

func TestExtractor_Docx(t *testing.T) {
	dir := t.TempDir()
	path := writeDocx(t, dir, "memo.docx",
		`<w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
			`<w:p></w:p>`+
			`<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p>`)
	e, err := New(nil)
	require.NoError(t, err)
	text, err := e.Extract(path)
	require.NoError(t, err)
	require.Equal(t, "First paragraph\n\nSecond\ttabbed", text)
}

func TestExtractor_DocxTextBoxKeepsParagraph(t *testing.T) {
	dir := t.TempDir()
	path := writeDocx(t, dir, "boxed.docx",
		`<w:p><w:r><w:t xml:space="preserve">Avant </w:t></w:r>`+
			`<w:r><w:drawing><w:txbxContent><w:p><w:r><w:t>encadre</w:t></w:r></w:p></w:txbxContent></w:drawing></w:r>`+
			`<w:r><w:t>apres</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Suite</w:t></w:r></w:p>`)
	e, err := New(nil)
	require.NoError(t, err)
	text, err := e.Extract(path)
	require.NoError(t, err)
	require.Equal(t, "Avant apres\nSuite", text)
}

func TestExtractor_CorruptDocx(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "memo.docx", "PK garbage")
	e, err := New(nil)
	require.NoError(t, err)
	_, err = e.Extract(path)
	require.Error(t, err)
}

func TestExtractor_OptionalFormats(t *testing.T) {
	dir := t.TempDir()
	e, err := New([]string{"xlsx", ".html", ".md"})
	require.NoError(t, err)

	xf := excelize.NewFile()
	require.NoError(t, xf.SetCellValue("Sheet1", "A1", "code"))
	require.NoError(t, xf.SetCellValue("Sheet1", "B1", "stock"))
	require.NoError(t, xf.SetCellValue("Sheet1", "A2", "P01"))
	require.NoError(t, xf.SetCellValue("Sheet1", "B2", 12))
	xlsxPath := filepath.Join(dir, "stock.xlsx")
	require.NoError(t, xf.SaveAs(xlsxPath))
	require.NoError(t, xf.Close())

	text, err := e.Extract(xlsxPath)
	require.NoError(t, err)
	require.Equal(t, "Sheet1\ncode | stock\nP01 | 12", text)

	htmlPath := writeFile(t, dir, "page.html",
		`<html><head><title>t</title></head><body><nav>menu</nav><main><h1>Titre</h1><p>Corps du texte</p></main></body></html>`)
	text, err = e.Extract(htmlPath)
	require.NoError(t, err)
	require.Equal(t, "Titre\nCorps du texte", text)

	mdPath := writeFile(t, dir, "guide.md", "# Heading\n\nSome *bold* text\n\n```\ncode line\n```\n")
	text, err = e.Extract(mdPath)
	require.NoError(t, err)
	require.Equal(t, "Heading\nSome bold text\ncode line", text)
}

func TestSupported(t *testing.T) {
	require.Subset(t, Supported(), []string{".docx", ".htm", ".html", ".md", ".pdf", ".txt", ".xlsx"})
}
