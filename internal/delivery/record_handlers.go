package delivery

import (
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/pdf_vision/internal/ports"
)

type RecordHandler struct {
	recordService ports.RecordService
	log           *logger.ZapLogger
}

func NewRecordHandler(recordService ports.RecordService, log *logger.ZapLogger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		log:           log,
	}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.recordService.List(r.Context(), limit)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, records)
}
