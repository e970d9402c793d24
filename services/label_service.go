package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/utils"
	"go.uber.org/zap"
)

// ErrArchiveDisabled is returned when no object store is configured for labels
var ErrArchiveDisabled = errors.New("label archive is not configured")

const (
	labelContentType = "application/pdf"
	labelNotesWidth  = 85 // mm
	labelEmptyNotes  = "Sem observações."
)

// LabelService renders the A6 production label that travels with each order
type LabelService struct {
	labName string
	store   ObjectStore
	logger  *zap.Logger
}

// NewLabelService creates a label renderer. store may be nil, which disables archiving.
func NewLabelService(labName string, store ObjectStore, logger *zap.Logger) *LabelService {
	return &LabelService{labName: labName, store: store, logger: logger}
}

// FileName is the download name of an order's label
func (s *LabelService) FileName(o models.Order) string {
	return fmt.Sprintf("Ficha_%s.pdf", o.PatientName)
}

// Render draws the label for one order and returns the PDF bytes
func (s *LabelService) Render(o models.Order) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A6", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Courier", "B", 10)
	pdf.Text(10, 10, tr(s.labName))
	pdf.Line(10, 12, 95, 12)

	pdf.SetFontSize(8)
	pdf.Text(10, 20, "PACIENTE:")
	pdf.SetFontSize(14)
	pdf.Text(10, 26, tr(strings.ToUpper(o.PatientName)))

	pdf.SetFontSize(8)
	pdf.Text(10, 35, "DENTISTA:")
	pdf.SetFontSize(11)
	pdf.Text(10, 40, tr(o.DentistName))

	pdf.SetFontSize(8)
	pdf.Text(10, 50, tr("SERVIÇO:"))
	pdf.SetFontSize(11)
	pdf.Text(10, 55, tr(o.ServiceType))

	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(60, 15, 35, 15, "D")
	pdf.SetFontSize(7)
	pdf.Text(62, 19, "ENTREGA:")
	pdf.SetFontSize(10)
	pdf.Text(62, 26, utils.FormatDate(o.DeliveryDate))

	pdf.SetFontSize(12)
	value := "Valor: " + utils.FormatMoney(o.Value)
	if o.Paid {
		value += " (PAGO)"
	}
	pdf.Text(60, 55, tr(value))

	pdf.SetFontSize(8)
	pdf.Text(10, 70, tr("OBSERVAÇÕES:"))
	pdf.SetFont("Courier", "", 8)
	notes := o.Notes
	if strings.TrimSpace(notes) == "" {
		notes = labelEmptyNotes
	}
	y := 75.0
	for _, line := range pdf.SplitLines([]byte(tr(notes)), labelNotesWidth) {
		pdf.Text(10, y, string(line))
		y += 4
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render label: %w", err)
	}
	return buf.Bytes(), nil
}

// Archive renders the label, stores it and returns its key and a temporary download URL
func (s *LabelService) Archive(ctx context.Context, o models.Order) (string, string, error) {
	if s.store == nil {
		return "", "", ErrArchiveDisabled
	}

	body, err := s.Render(o)
	if err != nil {
		return "", "", err
	}

	key := fmt.Sprintf("labels/%d/%s", o.ID, keySegment(s.FileName(o)))
	if err := s.store.UploadObject(ctx, key, labelContentType, body); err != nil {
		return "", "", err
	}

	url, err := s.store.GetPresignedURL(ctx, key)
	if err != nil {
		return key, "", err
	}
	s.logger.Info("Archived order label", zap.Uint("order_id", o.ID), zap.String("key", key))
	return key, url, nil
}

// keySegment keeps a file name inside a single object key segment
func keySegment(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return '-'
		}
		if r < ' ' {
			return -1
		}
		return r
	}, name)
	return strings.Trim(name, ". ")
}
