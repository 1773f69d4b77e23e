package service

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// ReportService renders certificate and form data as Excel workbooks and PDF
// documents for download.
type ReportService struct {
	log zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(log zerolog.Logger) *ReportService {
	return &ReportService{log: log.With().Str("component", "report_service").Logger()}
}

func newSheet(title string) (*excelize.File, string) {
	f := excelize.NewFile()
	const sheet = "Report"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.SetCellValue(sheet, "A1", title)
	return f, sheet
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return style
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		f.SetCellValue(sheet, cell(colName(i), row), v)
	}
}

// CertificatesExcel renders a certificate report workbook.
func (s *ReportService) CertificatesExcel(branch string, certs []model.CertificateWithStudent) (*bytes.Buffer, string, error) {
	f, sheet := newSheet(fmt.Sprintf("%s — Certificate Report", branch))
	defer f.Close()

	headers := []interface{}{"Roll Number", "Student", "Section", "Year", "Event", "Event Type", "Event Date", "Status", "Remarks", "Uploaded At"}
	writeRow(f, sheet, 2, headers)
	f.SetCellStyle(sheet, cell("A", 2), cell(colName(len(headers)-1), 2), headerStyle(f))
	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "E", "F", 25)

	row := 3
	for _, c := range certs {
		writeRow(f, sheet, row, []interface{}{
			c.RollNumber, c.StudentName, c.Section, c.Year,
			c.EventName, c.EventType, c.EventDate.Format("2006-01-02"),
			string(c.Status), c.Remarks, c.UploadedAt.Format("2006-01-02 15:04"),
		})
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf, fmt.Sprintf("certificates_%s_%s.xlsx", branch, time.Now().Format("20060102")), nil
}

// StudentsExcel renders the branch student roster as a workbook.
func (s *ReportService) StudentsExcel(branch string, students []model.Student) (*bytes.Buffer, string, error) {
	f, sheet := newSheet(fmt.Sprintf("%s — Students", branch))
	defer f.Close()

	headers := []interface{}{"Roll Number", "Name", "Email", "Phone", "Gender", "Section", "Year"}
	writeRow(f, sheet, 2, headers)
	f.SetCellStyle(sheet, cell("A", 2), cell(colName(len(headers)-1), 2), headerStyle(f))
	f.SetColWidth(sheet, "A", "C", 22)

	row := 3
	for _, st := range students {
		writeRow(f, sheet, row, []interface{}{
			st.RollNumber, st.Name, st.Email, st.Phone, string(st.Gender), st.Section, st.Year,
		})
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf, fmt.Sprintf("students_%s_%s.xlsx", branch, time.Now().Format("20060102")), nil
}

// ResponsesExcel renders a form's responses with one column per field, in
// field order.
func (s *ReportService) ResponsesExcel(form *model.Form, responses []model.FormResponseWithStudent) (*bytes.Buffer, string, error) {
	f, sheet := newSheet(form.Title + " — Responses")
	defer f.Close()

	headers := []interface{}{"Roll Number", "Student", "Section", "Year", "Submitted At"}
	for _, fld := range form.Fields {
		headers = append(headers, fld.Label)
	}
	writeRow(f, sheet, 2, headers)
	f.SetCellStyle(sheet, cell("A", 2), cell(colName(len(headers)-1), 2), headerStyle(f))
	f.SetColWidth(sheet, "A", "B", 20)

	row := 3
	for _, resp := range responses {
		values := []interface{}{
			resp.RollNumber, resp.StudentName, resp.Section, resp.Year,
			resp.SubmittedAt.Format("2006-01-02 15:04"),
		}
		for _, fld := range form.Fields {
			values = append(values, resp.Answers[fld.ID].String())
		}
		writeRow(f, sheet, row, values)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf, fmt.Sprintf("form_%d_responses.xlsx", form.ID), nil
}

// UnsubmittedExcel renders the students yet to answer a form.
func (s *ReportService) UnsubmittedExcel(form *model.Form, students []model.Student) (*bytes.Buffer, string, error) {
	f, sheet := newSheet(form.Title + " — Unsubmitted Students")
	defer f.Close()

	headers := []interface{}{"Roll Number", "Name", "Email", "Phone", "Section", "Year"}
	writeRow(f, sheet, 2, headers)
	f.SetCellStyle(sheet, cell("A", 2), cell(colName(len(headers)-1), 2), headerStyle(f))
	f.SetColWidth(sheet, "A", "C", 22)

	row := 3
	for _, st := range students {
		writeRow(f, sheet, row, []interface{}{
			st.RollNumber, st.Name, st.Email, st.Phone, st.Section, st.Year,
		})
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf, fmt.Sprintf("form_%d_unsubmitted.xlsx", form.ID), nil
}

// CertificatesPDF renders the certificate report as a landscape PDF with an
// institutional watermark on every page.
func (s *ReportService) CertificatesPDF(branch string, certs []model.CertificateWithStudent) (*bytes.Buffer, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	widths := []float64{30, 45, 18, 12, 55, 35, 25, 22, 35}
	headers := []string{"Roll Number", "Student", "Section", "Year", "Event", "Event Type", "Event Date", "Status", "Remarks"}

	watermark := func() {
		pdf.SetFont("Arial", "B", 72)
		pdf.SetTextColor(235, 235, 235)
		pdf.TransformBegin()
		pdf.TransformRotate(30, 148, 105)
		pdf.Text(95, 115, "SRIT")
		pdf.TransformEnd()
		pdf.SetTextColor(0, 0, 0)
	}

	header := func() {
		watermark()
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s Department — Certificate Report", branch), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, "Generated "+time.Now().Format("2 Jan 2006 15:04"), "", 1, "C", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	header()

	for _, c := range certs {
		if pdf.GetY() > 180 {
			pdf.AddPage()
			header()
		}
		row := []string{
			c.RollNumber, c.StudentName, c.Section, strconv.Itoa(c.Year),
			c.EventName, c.EventType, c.EventDate.Format("2006-01-02"),
			string(c.Status), c.Remarks,
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], 7, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", fmt.Errorf("render pdf: %w", err)
	}
	return buf, fmt.Sprintf("certificates_%s_%s.pdf", branch, time.Now().Format("20060102")), nil
}
