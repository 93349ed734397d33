package pdf

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/pdf_vision/internal/pdf/pdftest"
)

type stubExtractor struct {
	calls int
	got   []byte
	res   *Result
	err   error
}

func (s *stubExtractor) Extract(data []byte) (*Result, error) {
	s.calls++
	s.got = data
	return s.res, s.err
}

func TestPDFServicePassesBytesThrough(t *testing.T) {
	stub := &stubExtractor{res: &Result{}}
	svc := NewPDFService(stub, 0)

	res, err := svc.Extract(context.Background(), bytes.NewReader([]byte("%PDF-1.4 body")))
	require.NoError(t, err)
	assert.Same(t, stub.res, res)
	assert.Equal(t, []byte("%PDF-1.4 body"), stub.got)
}

func TestPDFServiceRejectsOversizedUpload(t *testing.T) {
	stub := &stubExtractor{res: &Result{}}
	svc := NewPDFService(stub, 8)

	_, err := svc.Extract(context.Background(), bytes.NewReader(make([]byte, 9)))
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "8 B")
	assert.Zero(t, stub.calls)

	_, err = svc.Extract(context.Background(), bytes.NewReader(make([]byte, 8)))
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
}

func TestPDFServiceCancelledContext(t *testing.T) {
	stub := &stubExtractor{res: &Result{}}
	svc := NewPDFService(stub, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ExtractBytes(ctx, []byte("%PDF-"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stub.calls)
}

func TestPDFServiceExtractorError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewPDFService(&stubExtractor{err: boom}, 0)

	_, err := svc.ExtractBytes(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestPDFServiceWithPdfcpu(t *testing.T) {
	svc := NewPDFService(NewPdfcpuExtractor(nil), 1<<20)

	doc := pdftest.Build(pdftest.Page{Images: []pdftest.Image{
		pdftest.RGBImage("Im1", 2, 2, pdftest.Solid(2, 2, 7, 8, 9)),
	}})

	res, err := svc.Extract(context.Background(), bytes.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Equal(t, Summary{Extracted: 1}, res.Summary())
}
