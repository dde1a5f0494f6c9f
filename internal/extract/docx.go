package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// docx files are OPC zip containers; the document body lives in
// word/document.xml as WordprocessingML.
const docxDocumentPath = "word/document.xml"

var errNoDocumentPart = errors.New("docx container has no document part")

// extractDOCX pulls the plain text out of a DOCX file. Text runs (<w:t>)
// are concatenated; paragraph ends (<w:p>) become newlines so sentence
// boundaries survive for the summarizer.
func extractDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}
	defer func() { _ = archive.Close() }()

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == docxDocumentPath {
			document = file
			break
		}
	}
	if document == nil {
		return "", errNoDocumentPart
	}

	part, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open document part: %w", err)
	}
	defer func() { _ = part.Close() }()

	return decodeWordprocessingText(part)
}

// decodeWordprocessingText streams through the document XML collecting the
// character data inside w:t elements.
func decodeWordprocessingText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		sb     strings.Builder
		inText bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}

	return sb.String(), nil
}
