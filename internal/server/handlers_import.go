package server

import "net/http"

// maxImportBytes bounds an uploaded export.
const maxImportBytes = 10 << 20

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := s.alpha.Ingest(r.Context(), body, uid)
	if err != nil {
		s.writeError(w, "importing alpha export", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
