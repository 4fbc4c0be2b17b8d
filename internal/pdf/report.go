package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders report exports (interface so handlers can be tested
// without gofpdf).
type Generator interface {
	GenerateSummary(data SummaryData) ([]byte, error)
}

// SummaryData is the flattened input for the task summary export.
type SummaryData struct {
	ScopeLabel   string
	GeneratedAt  time.Time
	Total        int
	StatusRows   []Row
	PriorityRows []Row
}

type Row struct {
	Label string
	Count int
}

type ReportGenerator struct {
	appName string
}

func NewReportGenerator(appName string) *ReportGenerator {
	return &ReportGenerator{appName: appName}
}

func (g *ReportGenerator) GenerateSummary(data SummaryData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task Summary", false)
	pdf.SetAuthor(g.appName, false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, "TASK SUMMARY", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	sub := fmt.Sprintf("%s - generated %s",
		data.ScopeLabel,
		data.GeneratedAt.Format("2006-01-02 15:04"),
	)
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Totals")
	g.kvLine(pdf, "All tasks in scope", fmt.Sprintf("%d", data.Total))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "By status")
	for _, r := range data.StatusRows {
		g.kvLine(pdf, r.Label, fmt.Sprintf("%d", r.Count))
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "By priority")
	for _, r := range data.PriorityRows {
		g.kvLine(pdf, r.Label, fmt.Sprintf("%d", r.Count))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(80, 6, key, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	x, y := pdf.GetXY()
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(left, y, pageW-right, y)
	pdf.SetXY(x, y+2)
}
