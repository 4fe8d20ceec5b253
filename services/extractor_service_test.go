package services

import (
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromFile(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	te := NewTextExtractor("", logger)
	dir := t.TempDir()

	txt := filepath.Join(dir, "invoice.TXT")
	require.NoError(t, os.WriteFile(txt, []byte("Amount in words: One Thousand"), 0644))
	text, err := te.ExtractTextFromFile(txt)
	require.NoError(t, err)
	assert.Equal(t, "Amount in words: One Thousand", text)

	_, err = te.ExtractTextFromFile(filepath.Join(dir, "scan.docx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = te.ExtractTextFromFile(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestSupportedFile(t *testing.T) {
	assert.True(t, SupportedFile("a.pdf"))
	assert.True(t, SupportedFile("a.PDF"))
	assert.True(t, SupportedFile("notes.md"))
	assert.False(t, SupportedFile("logo.png"))
	assert.False(t, SupportedFile("README"))
}
