package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
	FormatCSV  = "csv"
)

var contentTypes = map[string]string{
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
	FormatCSV:  "text/csv; charset=utf-8",
}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Export is a rendered report file
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

// table is the format-neutral shape every report is flattened to
type table struct {
	title   string
	summary [][2]string
	header  []string
	rows    [][]string
}

type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ParseFormat normalizes the format query parameter, defaulting to xlsx
func ParseFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return FormatXLSX, nil
	}
	if _, ok := contentTypes[format]; !ok {
		return "", Invalid("formato de exportación inválido: %s (use xlsx, pdf o csv)", format)
	}
	return format, nil
}

// ExportAnnual renders the annual income report
func (s *ExportService) ExportAnnual(ctx context.Context, report *finance.AnnualIncome, format string) (*Export, error) {
	t := table{
		title: fmt.Sprintf("Reporte de Ingresos %d", report.Year),
		summary: [][2]string{
			{"Total Esperado", money(report.TotalEsperado)},
			{"Total Pagado", money(report.TotalPagado)},
			{"Total Pendiente", money(report.TotalPendiente)},
			{"Porcentaje Pagado", percent(report.PorcentajePagado)},
			{"Pagos Esperados", fmt.Sprintf("%d", report.NumeroPagosEsperados)},
			{"Pagos Completados", fmt.Sprintf("%d", report.NumeroPagosCompletados)},
		},
		header: []string{"Mes", "Esperado", "Pagado", "Pendiente", "% Pagado", "Pagos", "Completados"},
	}
	for _, m := range report.ReporteMensual {
		t.rows = append(t.rows, []string{
			monthNames[m.Month-1],
			money(m.TotalEsperado),
			money(m.TotalPagado),
			money(m.TotalPendiente),
			percent(m.PorcentajePagado),
			fmt.Sprintf("%d", m.NumeroPagosEsperados),
			fmt.Sprintf("%d", m.NumeroPagosCompletados),
		})
	}
	return s.render(t, fmt.Sprintf("reporte_anual_%d", report.Year), format)
}

// ExportComparison renders the comparison report
func (s *ExportService) ExportComparison(ctx context.Context, report *finance.Comparison, format string) (*Export, error) {
	t := table{
		title: fmt.Sprintf("Comparativo de Ingresos %s a %s", report.FechaInicio, report.FechaFin),
		summary: [][2]string{
			{"Total Esperado", money(report.TotalEsperado)},
			{"Total Pagado", money(report.TotalPagado)},
			{"Total Parcial", money(report.TotalParcial)},
			{"Total Pendiente", money(report.TotalPendiente)},
			{"Total Vencido", money(report.TotalVencido)},
			{"Pagado vs Esperado", percent(report.PorcentajePagadoVsEsperado)},
			{"Desempeño", report.Desempeno},
		},
		header: []string{"Estado", "Cantidad", "Monto", "Porcentaje"},
	}
	d := report.DistribucionPorEstado
	for _, row := range []struct {
		label string
		dist  finance.EstadoDistribution
	}{
		{"Pagado", d.Pagado},
		{"Parcial", d.Parcial},
		{"Pendiente", d.Pendiente},
		{"Vencido", d.Vencido},
	} {
		t.rows = append(t.rows, []string{row.label, fmt.Sprintf("%d", row.dist.Cantidad), money(row.dist.Monto), percent(row.dist.Porcentaje)})
	}
	name := fmt.Sprintf("reporte_comparativo_%s_%s", report.FechaInicio, report.FechaFin)
	return s.render(t, name, format)
}

func (s *ExportService) render(t table, name, format string) (*Export, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case FormatCSV:
		data, err = t.csv()
	case FormatPDF:
		data, err = t.pdf()
	default:
		data, err = t.xlsx()
	}
	if err != nil {
		return nil, fmt.Errorf("generar %s: %w", format, err)
	}

	return &Export{
		Data:        data,
		Filename:    name + "." + format,
		ContentType: contentTypes[format],
	}, nil
}

func (t table) csv() ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{t.title, time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Resumen"})
	for _, kv := range t.summary {
		_ = writer.Write([]string{kv[0], kv[1]})
	}
	_ = writer.Write([]string{""})
	_ = writer.Write(t.header)
	for _, row := range t.rows {
		_ = writer.Write(row)
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func (t table) xlsx() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Reporte"
	_ = f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", t.title)
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	row := 3
	for _, kv := range t.summary {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kv[0])
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1])
		row++
	}

	row++
	for i, h := range t.header {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for _, r := range t.rows {
		row++
		for i, v := range r {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 22)
	_ = f.SetColWidth(sheet, "B", "G", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t table) pdf() ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr(t.title))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Resumen")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, kv := range t.summary {
		pdf.Cell(60, 8, tr(kv[0]+":"))
		pdf.Cell(40, 8, tr(kv[1]))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	width := 190.0 / float64(len(t.header))
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for _, h := range t.header {
		pdf.CellFormat(width, 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range t.rows {
		for i, v := range r {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(width, 6, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
