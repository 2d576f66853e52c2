package server

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/edp1096/spiceplot/pkg/library"
	"github.com/edp1096/spiceplot/pkg/simulator"
	"github.com/edp1096/spiceplot/pkg/waveform"
)

type simulateRequest struct {
	Netlist string `json:"netlist"`
}

type fileRequest struct {
	Content string `json:"content"`
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) (*simulator.Response, bool) {
	var req simulateRequest
	if !decodeBody(w, r, &req) {
		return nil, false
	}
	if strings.TrimSpace(req.Netlist) == "" {
		writeError(w, http.StatusBadRequest, "netlist is empty")
		return nil, false
	}

	resp, err := s.sim.Simulate(r.Context(), req.Netlist)
	if err != nil {
		log.Printf("server: simulate: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return resp, true
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.simulate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePlot renders the simulated series as png, svg, pdf or html.
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "png"
	}
	contentType := waveform.ContentType(format)
	if contentType == "" {
		writeError(w, http.StatusBadRequest, "unsupported format "+format)
		return
	}

	resp, ok := s.simulate(w, r)
	if !ok {
		return
	}
	if resp.Len() == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": "simulation produced no data",
			"ok":    resp.OK,
			"logs":  resp.Logs,
		})
		return
	}

	var buf bytes.Buffer
	var err error
	if format == "html" {
		err = waveform.RenderHTML(&buf, &resp.Series)
	} else {
		err = waveform.RenderImage(&buf, &resp.Series, format, waveform.DefaultWidth, waveform.DefaultHeight)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"files": []library.Entry{}, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": entries})
}

func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	content, err := s.store.Read(name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content, "filename": name})
}

func (s *Server) handleWriteFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req fileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.store.Write(name, req.Content); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "filename": name})
}

// handleImport saves the netlist blocks fenced in free text, such as a
// chat reply.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	saved, err := s.store.SaveBlocks(req.Content, s.now())
	if err != nil {
		log.Printf("server: import: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"saved": saved, "error": err.Error()})
		return
	}
	if saved == nil {
		saved = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": saved})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Only .cir files are allowed")
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, "File not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
