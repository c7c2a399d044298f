package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/xmlreport/internal/extract"
	"github.com/dgallion1/xmlreport/internal/parser"
	"github.com/dgallion1/xmlreport/internal/pipeline"
)

// handleConvert converts one uploaded XML file and responds with the document.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := s.formRequest(r.MultipartForm)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	data, code, err := s.readUpload(file)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	conv := s.orchestrator.Converter()
	renderer, err := conv.Renderer(req.Format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	annotate(r, "filename", filename, "format", strings.TrimPrefix(renderer.Extension(), "."), "types", req.Types)

	var out bytes.Buffer
	res, err := conv.Convert(r.Context(), bytes.NewReader(data), filename, req, &out)
	if err != nil {
		s.convertError(w, filename, err)
		return
	}
	annotate(r, "records", res.Records, "pages", res.Pages)

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, outputName(filename, renderer.Extension())))
	w.Header().Set("ETag", `"`+pipeline.ContentHashHex(out.Bytes())+`"`)
	w.Header().Set("X-Record-Count", strconv.Itoa(res.Records))
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	w.Write(out.Bytes())
}

// formRequest reads the conversion parameters shared by all upload endpoints.
// "types" may repeat and each value may hold a comma separated list.
func (s *Server) formRequest(form *multipart.Form) (pipeline.Request, error) {
	var types []string
	for _, v := range form.Value["types"] {
		types = append(types, strings.Split(v, ",")...)
	}
	where, err := pipeline.ParseInstanceFilters(form.Value["where"])
	if err != nil {
		return pipeline.Request{}, err
	}
	req := pipeline.Request{
		Types:  extract.NormalizeTypes(types),
		Title:  firstValue(form, "title"),
		Format: firstValue(form, "format"),
		Where:  where,
	}
	if err := s.orchestrator.Converter().ValidateRequest(req); err != nil {
		return pipeline.Request{}, err
	}
	return req, nil
}

// readUpload reads at most MaxUploadBytes and returns the status code to use on failure.
func (s *Server) readUpload(file io.Reader) ([]byte, int, error) {
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, http.StatusOK, nil
}

// convertError maps conversion failures to status codes: missing record
// types are 422, malformed XML is 400, anything else is 500.
func (s *Server) convertError(w http.ResponseWriter, filename string, err error) {
	var inputErr *extract.InputError
	switch {
	case errors.As(err, &inputErr):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, parser.ErrMalformed):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("conversion failed", "filename", filename, "error", err)
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func outputName(filename, ext string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.ReplaceAll(name, `"`, "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
