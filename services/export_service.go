package services

import (
	"fmt"
	"io"

	"github.com/labmanager/labmanager-api/board"
	"github.com/labmanager/labmanager-api/models"
	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ordersSheet     = "Pedidos"
)

var orderHeaders = []interface{}{
	"Entrega", "Paciente", "Dentista", "Serviço", "Valor", "Pago", "Status", "Atrasado", "Observações", "Criado em",
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

func statusLabel(s models.OrderStatus) string {
	if s == models.StatusReady {
		return "Pronto"
	}
	return "Em produção"
}

// WriteOrdersXLSX writes a board view as a spreadsheet: one row per order
// followed by the totals of the whole order set.
func WriteOrdersXLSX(w io.Writer, view board.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	_ = f.SetCellStyle(ordersSheet, "A1", "J1", bold)

	for i, row := range view.Orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.DeliveryDateDisplay,
			row.PatientName,
			row.DentistName,
			row.ServiceType,
			row.Value.InexactFloat64(),
			yesNo(row.Paid),
			statusLabel(row.Status),
			yesNo(row.Late),
			row.Notes,
			row.CreatedAt.Format("02/01/2006 15:04"),
		}
		if err := f.SetSheetRow(ordersSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	totalsRow := len(view.Orders) + 3
	totals := [][]interface{}{
		{"Recebido", view.Summary.Received.InexactFloat64()},
		{"A receber", view.Summary.Outstanding.InexactFloat64()},
		{"Atrasados", view.Summary.Late},
	}
	for i, values := range totals {
		cell, _ := excelize.CoordinatesToCellName(1, totalsRow+i)
		if err := f.SetSheetRow(ordersSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write totals: %w", err)
		}
	}

	_ = f.SetColWidth(ordersSheet, "B", "D", 25)
	_ = f.SetColWidth(ordersSheet, "I", "I", 40)

	return f.Write(w)
}
