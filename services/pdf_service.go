package services

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/olusegunak/school_cbt/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

type reportCardData struct {
	Student      models.User
	Rows         []ReportRow
	Overall      float64
	OverallGrade string
	GeneratedAt  string
}

// RenderReportCardHTML fills the printable report-card template.
func RenderReportCardHTML(student models.User, rows []ReportRow) (string, error) {
	tmpl, err := template.ParseFiles("templates/report_card.html")
	if err != nil {
		return "", err
	}

	overall := Overall(rows)
	data := reportCardData{
		Student:      student,
		Rows:         rows,
		Overall:      overall,
		OverallGrade: NigeriaGrade(overall),
		GeneratedAt:  time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

// GeneratePDFFromHTML prints the HTML through headless Chrome.
func GeneratePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}
