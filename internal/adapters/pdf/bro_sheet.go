// Package pdf renders the Basic Radio Operator results sheet. The layout
// reproduces the official paper form, so every coordinate below is fixed in
// points from the top-left corner of an A4 landscape page.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"sqnportal/internal/domain/assessment"
	"sqnportal/internal/domain/cadet"
)

// Fixed form geometry, in points.
const (
	startY          = 228.0 // baseline of the first cadet row
	rowHeight       = 27.8
	checkboxStartX  = 399.5 // first criterion column
	checkboxSpacing = 22.5

	serialX = 39.0
	sqnX    = 84.0
	rankX   = 144.0
	nameX   = 210.0

	instructorNameX = 205.0
	instructorSqnX  = 385.0
	signBlockY1     = 483.0
	assessorNameX   = 205.0
	assessorSqnX    = 385.0
	signBlockY2     = 508.0
)

// MaxPages is the page capacity of the printed form. Passers beyond
// MaxPages * RowsPerPage rows do not appear on the export.
const MaxPages = 3

// checkMark is drawn in each passed criterion checkbox.
const checkMark = "X"

// Row pairs an assessment with the cadet it belongs to.
type Row struct {
	Cadet      cadet.Cadet
	Assessment assessment.RadioAssessment
}

// RenderResultsSheet renders the results sheet PDF for a cohort. Only rows
// whose assessment passed are included; the form certifies passers only.
// PRE: rows are sorted in the desired sheet order
// POST: returns the PDF bytes, or an error from the PDF engine
func RenderResultsSheet(cohort assessment.Cohort, rows []Row) ([]byte, error) {
	var passed []Row
	for _, r := range rows {
		if r.Assessment.PassFail {
			passed = append(passed, r)
		}
	}
	if len(passed) > MaxPages*assessment.RowsPerPage {
		passed = passed[:MaxPages*assessment.RowsPerPage]
	}

	doc := fpdf.New("L", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)

	pages := assessment.SplitPages(assessmentsOf(passed))
	if len(pages) == 0 {
		// An empty cohort still produces a single signed page.
		pages = [][]assessment.RadioAssessment{nil}
	}

	idx := 0
	for range pages {
		doc.AddPage()
		drawHeader(doc, cohort)

		for row := 0; row < assessment.RowsPerPage && idx < len(passed); row++ {
			drawRow(doc, passed[idx], row)
			idx++
		}

		drawSignBlock(doc, cohort)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render results sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// RowPosition maps a 0-indexed passed row to its page and the y baseline on
// that page. Exposed for layout tests.
// PRE: i >= 0
func RowPosition(i int) (page int, y float64) {
	page, row := assessment.PageFor(i)
	return page, startY + float64(row)*rowHeight
}

// CheckboxX returns the x position of the k-th criterion column.
// PRE: 0 <= k < len(assessment.CriterionKeys)
func CheckboxX(k int) float64 {
	return checkboxStartX + float64(k)*checkboxSpacing
}

func drawHeader(doc *fpdf.Fpdf, cohort assessment.Cohort) {
	doc.SetFont("Helvetica", "B", 14)
	doc.Text(serialX, 60, fmt.Sprintf("%s Assessment Results", cohort.Type))
	doc.SetFont("Helvetica", "", 10)
	doc.Text(serialX, 78, cohort.Name)

	// Column headings.
	doc.SetFont("Helvetica", "B", 8)
	doc.Text(serialX, startY-rowHeight/2, "Serial")
	doc.Text(sqnX, startY-rowHeight/2, "Sqn")
	doc.Text(rankX, startY-rowHeight/2, "Rank")
	doc.Text(nameX, startY-rowHeight/2, "Name")
	for k := range assessment.CriterionKeys {
		doc.Text(CheckboxX(k), startY-rowHeight/2, fmt.Sprintf("%d", k+1))
	}
}

func drawRow(doc *fpdf.Fpdf, r Row, row int) {
	y := startY + float64(row)*rowHeight

	doc.SetFont("Helvetica", "", 9)
	doc.Text(serialX, y, r.Cadet.Serial)
	doc.Text(sqnX, y, r.Cadet.Sqn)
	doc.Text(rankX, y, r.Cadet.Rank)
	doc.Text(nameX, y, r.Cadet.FullName)

	for k, key := range assessment.CriterionKeys {
		if r.Assessment.Criteria[key] == assessment.StatusPass {
			doc.Text(CheckboxX(k), y, checkMark)
		}
	}
}

func drawSignBlock(doc *fpdf.Fpdf, cohort assessment.Cohort) {
	doc.SetFont("Helvetica", "", 10)
	doc.Text(instructorNameX, signBlockY1, cohort.InstructorName)
	doc.Text(instructorSqnX, signBlockY1, cohort.InstructorSqn)
	doc.Text(assessorNameX, signBlockY2, cohort.AssessorName)
	doc.Text(assessorSqnX, signBlockY2, cohort.AssessorSqn)
}

func assessmentsOf(rows []Row) []assessment.RadioAssessment {
	out := make([]assessment.RadioAssessment, len(rows))
	for i, r := range rows {
		out[i] = r.Assessment
	}
	return out
}
