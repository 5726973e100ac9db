// Package pdfreport renders the downloadable system report: executive
// summary tiles followed by every analytics chart and its recommendation.
package pdfreport

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"beacon-admin/aggregate"
	"beacon-admin/narrative"
)

const (
	margin      = 15.0
	imageWidth  = 180.0
	imageHeight = 80.0
	// title, image, narrative box and spacing
	blockHeight = 130.0

	warningText = "WARNING: CONFIDENTIAL DATA. AUTHORIZED PERSONNEL ONLY."
)

// Report is everything printed in the PDF.
type Report struct {
	Admin       string
	GeneratedAt time.Time
	Location    *time.Location
	// Total, active and completed tiles, in that order.
	Tiles  []aggregate.Tile
	Charts aggregate.Charts
}

type chartBlock struct {
	title string
	kind  narrative.Kind
	draw  func(aggregate.Charts) ([]byte, error)
}

var blocks = []chartBlock{
	{"2. Outages by Feeder", narrative.FeederCount, func(c aggregate.Charts) ([]byte, error) {
		return barChart(countSeries(c.FeederCounts))
	}},
	{"3. Avg Restoration Time by Feeder", narrative.FeederTime, func(c aggregate.Charts) ([]byte, error) {
		return barChart(meanSeries(c.RestorationByFeeder))
	}},
	{"4. Root Cause Analysis", narrative.RootCause, func(c aggregate.Charts) ([]byte, error) {
		return barChart(countSeries(c.RootCauses))
	}},
	{"5. Most Affected Barangays", narrative.Barangay, func(c aggregate.Charts) ([]byte, error) {
		return barChart(countSeries(c.AffectedAreas))
	}},
	{"6. Peak Outage Times", narrative.Peak, func(c aggregate.Charts) ([]byte, error) {
		return bubbleChart(c.PeakTimes)
	}},
	{"7. Monthly Efficiency Trend", narrative.MTTR, func(c aggregate.Charts) ([]byte, error) {
		return lineChart(meanSeries(c.MonthlyMTTR))
	}},
}

// FileName is the download name, Beacon_Report_<admin>_<YYYY-MM-DD>.pdf.
func FileName(admin string, day time.Time) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '\t':
			return '_'
		case r == '"' || r == '/' || r == '\\' || r < ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(admin))
	if name == "" {
		name = "Admin"
	}
	return fmt.Sprintf("Beacon_Report_%s_%s.pdf", name, day.Format("2006-01-02"))
}

// Render writes the report as a PDF to w.
func Render(w io.Writer, r Report) error {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	admin := strings.TrimSpace(r.Admin)
	if admin == "" {
		admin = "Authorized Account"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	pageW, pageH := pdf.GetPageSize()

	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.Text(margin, pageH-10, "BEACON Internal Document")
		pdf.SetXY(pageW-margin-40, pageH-13)
		pdf.CellFormat(40, 4, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	y := 20.0
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(0, 123, 255)
	pdf.Text(margin, y, "BEACON SYSTEM REPORT")

	y += 8
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	generated := r.GeneratedAt.In(loc).Format("Jan 2, 2006 3:04 PM")
	pdf.Text(margin, y, fmt.Sprintf("Generated by: %s  |  Date: %s", admin, generated))

	y += 10
	pdf.SetFillColor(255, 240, 240)
	pdf.SetDrawColor(200, 0, 0)
	pdf.Rect(margin, y-5, pageW-2*margin, 12, "FD")
	pdf.SetTextColor(200, 0, 0)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(margin, y-5)
	pdf.CellFormat(pageW-2*margin, 12, warningText, "", 0, "C", false, 0, "")

	y += 20
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(margin, y, "1. Executive Summary (vs. Yesterday)")

	y += 10
	drawTiles(pdf, r.Tiles, y, (pageW-2*margin)/3)
	y += 35

	for _, b := range blocks {
		if y+blockHeight > pageH {
			pdf.AddPage()
			y = 20
		}
		png, err := b.draw(r.Charts)
		if err != nil {
			return fmt.Errorf("draw %q: %w", b.title, err)
		}

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(margin, y, b.title)
		y += 6

		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(string(b.kind), opts, bytes.NewReader(png))
		pdf.ImageOptions(string(b.kind), margin, y, imageWidth, imageHeight, false, opts, 0, "")
		y += imageHeight + 5

		pdf.SetFillColor(240, 248, 255)
		pdf.SetDrawColor(200, 200, 200)
		pdf.Rect(margin, y, pageW-2*margin, 20, "DF")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.SetXY(margin+5, y+3)
		pdf.MultiCell(pageW-2*margin-10, 4.5, narrative.For(b.kind, r.Charts), "", "L", false)
		y += 30
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

func drawTiles(pdf *fpdf.Fpdf, tiles []aggregate.Tile, y, boxW float64) {
	for i, t := range tiles {
		if i > 2 {
			break
		}
		x := margin + boxW*float64(i)
		pdf.SetFillColor(245, 247, 250)
		pdf.Rect(x, y, boxW-2, 25, "F")

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(x+5, y+8, t.Label)
		pdf.SetFont("Helvetica", "", 16)
		value := fmt.Sprint(t.Value)
		pdf.Text(x+5, y+18, value)
		trendX := x + 10 + pdf.GetStringWidth(value)

		pdf.SetFont("Helvetica", "", 10)
		if t.Good {
			pdf.SetTextColor(0, 150, 0)
		} else {
			pdf.SetTextColor(200, 0, 0)
		}
		pdf.Text(trendX, y+18, t.Trend)
	}
	pdf.SetTextColor(0, 0, 0)
}
