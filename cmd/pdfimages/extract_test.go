package main

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/pdf_vision/internal/pdf"
	"github.com/Vovarama1992/pdf_vision/internal/pdf/pdftest"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtractFile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := writeFile(t, in, "report.pdf", pdftest.Build(
		pdftest.Page{Images: []pdftest.Image{pdftest.RGBImage("Im1", 3, 2, pdftest.Gradient(3, 2))}},
		pdftest.Page{Images: []pdftest.Image{pdftest.RGBImage("Im1", 2, 2, pdftest.Solid(2, 2, 1, 1, 1)[:5])}},
	))

	svc := pdf.NewPDFService(pdf.NewPdfcpuExtractor(nil), 0)
	rep := extractFile(context.Background(), svc, path, out)
	require.NoError(t, rep.Err)

	assert.Equal(t, pdf.Summary{Extracted: 1, Skipped: 1}, rep.Summary)
	require.Len(t, rep.Written, 1)
	assert.Equal(t, filepath.Join(out, "report-page-1-Im1.png"), rep.Written[0])

	f, err := os.Open(rep.Written[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	st, err := os.Stat(rep.Written[0])
	require.NoError(t, err)
	assert.Equal(t, st.Size(), rep.Bytes)
}

func TestExtractFileMalformed(t *testing.T) {
	in := t.TempDir()
	path := writeFile(t, in, "notes.pdf", []byte("just some text"))

	svc := pdf.NewPDFService(pdf.NewPdfcpuExtractor(nil), 0)
	rep := extractFile(context.Background(), svc, path, t.TempDir())

	var malformed *pdf.MalformedInputError
	assert.True(t, errors.As(rep.Err, &malformed))
	assert.Empty(t, rep.Written)
}

func TestExtractFileMissing(t *testing.T) {
	svc := pdf.NewPDFService(pdf.NewPdfcpuExtractor(nil), 0)
	rep := extractFile(context.Background(), svc, filepath.Join(t.TempDir(), "nope.pdf"), t.TempDir())
	assert.ErrorIs(t, rep.Err, os.ErrNotExist)
}

func TestOutputName(t *testing.T) {
	img := pdf.Image{Page: 4, Name: "Im#1/a"}
	assert.Equal(t, "scan-page-4-Im_1_a.png", outputName("scan", img))
}
