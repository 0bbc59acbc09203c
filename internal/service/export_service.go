package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/models"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/export"
)

// Supported export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders registration rows into downloadable files.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs the exporter with the default renderers.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		now:    time.Now,
	}
}

// BuildDataset keeps the visible columns and renders each cell through the column renderer.
func BuildDataset(columns []models.Column, rows []models.RegistrationRequest) export.Dataset {
	visible := models.VisibleColumns(columns)
	data := export.Dataset{
		Headers: make([]string, len(visible)),
		Widths:  make([]int, len(visible)),
		Rows:    make([][]string, 0, len(rows)),
	}
	for i, col := range visible {
		data.Headers[i] = col.Label
		data.Widths[i] = col.Width
	}
	for _, row := range rows {
		cells := make([]string, len(visible))
		for i, col := range visible {
			cells[i] = col.Display(row.Field(col.Key))
		}
		data.Rows = append(data.Rows, cells)
	}
	return data
}

// Export renders rows in the requested format.
func (s *ExportService) Export(columns []models.Column, rows []models.RegistrationRequest, format, title string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	data := BuildDataset(columns, rows)
	if len(data.Headers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no visible columns to export")
	}

	stamp := s.now().Format("20060102-150405")
	var (
		file ExportFile
		err  error
	)
	switch format {
	case ExportFormatCSV:
		file.Payload, err = s.csv.Render(data)
		file.ContentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		file.Payload, err = s.pdf.Render(data, title)
		file.ContentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("export rendering failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	file.Filename = fmt.Sprintf("registrations-%s.%s", stamp, format)

	s.logger.Info("registration export rendered",
		zap.String("format", format),
		zap.Int("rows", len(data.Rows)),
		zap.Int("columns", len(data.Headers)),
	)
	return &file, nil
}
