package delivery

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"

	"github.com/Vovarama1992/pdf_vision/internal/domain"
	"github.com/Vovarama1992/pdf_vision/internal/pdf"
)

// multipartOverhead is allowed on top of the file size for the form
// envelope and the prompt field.
const multipartOverhead = 1 << 20

type PDFDescriber interface {
	Describe(ctx context.Context, req domain.DescribeRequest) (*domain.DescribeResult, error)
}

type PDFHandler struct {
	svc       PDFDescriber
	maxUpload int64
	log       *logger.ZapLogger
}

func NewPDFHandler(svc PDFDescriber, maxUpload int64, log *logger.ZapLogger) *PDFHandler {
	return &PDFHandler{svc: svc, maxUpload: maxUpload, log: log}
}

type processResponse struct {
	Response  string   `json:"response"`
	RequestID string   `json:"request_id"`
	Images    int      `json:"images"`
	Skipped   int      `json:"skipped"`
	Warnings  []string `json:"warnings"`
	Archived  []string `json:"archived"`
}

func (h *PDFHandler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(w)
			return
		}
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing file", Error: err})
		writeError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload pdf")
		return
	}

	res, err := h.svc.Describe(r.Context(), domain.DescribeRequest{
		Source:   domain.SourceHTTP,
		FileName: header.Filename,
		Prompt:   r.FormValue("prompt"),
		PDF:      file,
	})

	var malformed *pdf.MalformedInputError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoImages):
		writeError(w, http.StatusBadRequest, "No images found in pdf")
		return
	case errors.As(err, &malformed):
		writeError(w, http.StatusBadRequest, "Invalid pdf file: "+malformed.Err.Error())
		return
	case errors.Is(err, pdf.ErrTooLarge):
		h.tooLarge(w)
		return
	default:
		h.log.Log(logger.LogEntry{Level: "error", Message: "error processing pdf", Error: err, Service: "pdf_vision"})
		writeError(w, http.StatusInternalServerError, "An error occured while processing: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Response:  res.Response,
		RequestID: res.RequestID,
		Images:    res.Images,
		Skipped:   res.Skipped,
		Warnings:  res.Warnings,
		Archived:  res.ArchivedURLs,
	})
}

func (h *PDFHandler) tooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge,
		"File too large. Limit is "+humanize.IBytes(uint64(h.maxUpload)))
}
