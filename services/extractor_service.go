package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// TextExtractor turns invoice files into plain text. PDFs go through UniPDF
// when a Unidoc license key is configured and through ledongthuc/pdf otherwise.
type TextExtractor struct {
	useUnipdf bool
	log       logrus.FieldLogger
}

func NewTextExtractor(unidocLicenseKey string, log logrus.FieldLogger) *TextExtractor {
	log = log.WithField("component", "extractor")
	te := &TextExtractor{log: log}
	if unidocLicenseKey == "" {
		log.Info("No Unidoc license key set, using the built-in PDF reader.")
		return te
	}
	if err := license.SetMeteredKey(unidocLicenseKey); err != nil {
		log.WithError(err).Warn("Failed to set Unidoc license key, falling back to the built-in PDF reader.")
		return te
	}
	te.useUnipdf = true
	return te
}

// SupportedFile reports whether ExtractTextFromFile can read path.
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

// ExtractTextFromFile reads a file and returns its text content.
func (te *TextExtractor) ExtractTextFromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case ".pdf":
		if te.useUnipdf {
			return extractTextWithUnipdf(path)
		}
		return extractTextWithPDFReader(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func extractTextWithUnipdf(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return "", err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}

func extractTextWithPDFReader(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("no extractable text found in %s", path)
	}
	return sb.String(), nil
}
