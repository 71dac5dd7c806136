// Package service runs an uploaded OBJ file through decoding, parsing,
// conversion and serialization, and records the outcome.
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/objbench/internal/config"
	"github.com/Faultbox/objbench/internal/history"
	"github.com/Faultbox/objbench/pkg/bedrock"
	"github.com/Faultbox/objbench/pkg/encoding"
	"github.com/Faultbox/objbench/pkg/obj"
)

// Upload validation errors.
var (
	ErrUnsupportedExtension = errors.New("only .obj files are supported")
	ErrFileTooLarge         = errors.New("file exceeds the upload size limit")
)

// Upload is a file handed to the converter.
type Upload struct {
	FileName  string
	Data      []byte
	ModelName string // Overrides the name derived from FileName
}

// Result is a successful conversion.
type Result struct {
	FileName  string // Output file name, "<base>.json"
	ModelName string // Sanitized model name
	Content   []byte // Serialized document
	Document  *bedrock.Document
	Duration  time.Duration
	Record    history.Record
}

// Service converts uploads. Safe for concurrent use when the store is.
type Service struct {
	parseOpts obj.Options
	maxBytes  int64
	charset   string
	store     history.Store
	log       *zap.Logger
}

// New creates a Service from config. store may be nil to skip history.
func New(cfg *config.Config, store history.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		parseOpts: cfg.ParseOptions(),
		maxBytes:  cfg.Upload.MaxBytes,
		charset:   cfg.Upload.Charset,
		store:     store,
		log:       log,
	}
}

// MaxBytes returns the upload size limit.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Validate checks name and size before the payload is read.
func (s *Service) Validate(fileName string, size int64) error {
	if !strings.HasSuffix(strings.ToLower(fileName), ".obj") {
		return errors.Wrapf(ErrUnsupportedExtension, "file %q", fileName)
	}
	if size > s.maxBytes {
		return errors.Wrapf(ErrFileTooLarge, "%s is %s, limit %s", fileName, FormatSize(size), FormatSize(s.maxBytes))
	}
	return nil
}

// Convert runs the full pipeline for one upload.
func (s *Service) Convert(up Upload) (*Result, error) {
	start := time.Now()

	if err := s.Validate(up.FileName, int64(len(up.Data))); err != nil {
		return nil, err
	}

	text, err := encoding.Decode(up.Data, s.charset)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", up.FileName)
	}

	mesh, err := obj.ParseWithOptions(text, s.parseOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", up.FileName)
	}

	modelName := up.ModelName
	if modelName == "" {
		modelName = encoding.BaseName(up.FileName)
	}

	doc, err := bedrock.Convert(mesh, modelName)
	if err != nil {
		return nil, errors.Wrapf(err, "converting %s", up.FileName)
	}

	content, err := bedrock.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "serializing document")
	}

	res := &Result{
		FileName:  encoding.BaseName(up.FileName) + ".json",
		ModelName: doc.Name,
		Content:   content,
		Document:  doc,
		Duration:  time.Since(start),
	}

	if s.store != nil {
		res.Record = s.store.Create(history.Record{
			FileName:      up.FileName,
			ModelName:     doc.Name,
			OriginalSize:  int64(len(up.Data)),
			ConvertedSize: int64(len(content)),
			Vertices:      mesh.VertexCount(),
			Faces:         mesh.FaceCount(),
			Duration:      res.Duration,
		})
	}

	s.log.Info("converted model",
		zap.String("file", up.FileName),
		zap.String("model", doc.Name),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("faces", mesh.FaceCount()),
		zap.Int("bytes", len(content)),
		zap.Duration("took", res.Duration),
	)

	return res, nil
}

// Message returns a human-readable description of a conversion error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedExtension):
		return "Please select a .obj file."
	case errors.Is(err, ErrFileTooLarge):
		return "The file is too large."
	case errors.Is(err, bedrock.ErrEmptyMesh):
		return "No vertices found in the OBJ file."
	case errors.Is(err, bedrock.ErrNonFiniteBounds):
		return "The OBJ file contains invalid vertex coordinates."
	case errors.Is(err, encoding.ErrUnknownCharset):
		return "The configured text encoding is not supported."
	}

	var perr *obj.ParseError
	if errors.As(err, &perr) {
		return fmt.Sprintf("Invalid OBJ data on line %d.", perr.Line)
	}
	return "The OBJ file is invalid or corrupted."
}

// IsInputError reports whether err was caused by the uploaded file itself
// rather than by the converter.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnsupportedExtension) || errors.Is(err, ErrFileTooLarge)
}

// FormatSize renders a byte count as "12.5 KB".
func FormatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d Bytes", n)
	}
	units := []string{"KB", "MB", "GB"}
	v := float64(n) / 1024
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	return s + " " + units[i]
}
