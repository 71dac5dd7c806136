// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objbench/internal/config"
	"github.com/Faultbox/objbench/internal/history"
	"github.com/Faultbox/objbench/internal/service"
)

// UploadField is the multipart form field carrying the OBJ file.
const UploadField = "objFile"

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

// Server handles conversion requests.
type Server struct {
	svc          *service.Service
	store        history.Store
	defaultLimit int
	log          *zap.Logger
	http         *http.Server
}

// New creates a Server. Call ListenAndServe to start it.
func New(cfg *config.Config, svc *service.Service, store history.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		svc:          svc,
		store:        store,
		defaultLimit: cfg.History.DefaultLimit,
		log:          log,
	}
	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("GET /api/conversions", s.handleConversions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
	return mux
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// convertData is the payload of a successful conversion.
type convertData struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
	Size     int    `json:"size"`
}

type convertResponse struct {
	Success        bool         `json:"success"`
	Data           *convertData `json:"data,omitempty"`
	ConversionTime string       `json:"conversionTime,omitempty"`
	Message        string       `json:"message,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.svc.MaxBytes()+formOverhead)

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, http.StatusRequestEntityTooLarge, service.Message(service.ErrFileTooLarge), err)
			return
		}
		s.fail(w, http.StatusBadRequest, fmt.Sprintf("Missing %q file field.", UploadField), err)
		return
	}
	defer file.Close()

	if err := s.svc.Validate(header.Filename, header.Size); err != nil {
		s.fail(w, http.StatusBadRequest, service.Message(err), err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "Could not read the uploaded file.", err)
		return
	}

	res, err := s.svc.Convert(service.Upload{FileName: header.Filename, Data: data})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if service.IsInputError(err) {
			status = http.StatusBadRequest
		}
		s.fail(w, status, service.Message(err), err)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Success: true,
		Data: &convertData{
			FileName: res.FileName,
			Content:  string(res.Content),
			Size:     len(res.Content),
		},
		ConversionTime: formatDuration(res.Duration),
	})
}

func (s *Server) handleConversions(w http.ResponseWriter, r *http.Request) {
	limit := s.defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	recs := []history.Record{}
	if s.store != nil {
		recs = s.store.Recent(limit)
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	s.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, convertResponse{Success: false, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
