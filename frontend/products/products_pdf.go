package products

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

// LabelData is what a shelf label prints.
type LabelData struct {
	Name         string
	Category     string
	SerialNumber string
	Price        string
}

func renderProductLabelPDF(label LabelData, printedAt time.Time) ([]byte, error) {
	return renderProductLabelsPDF([]LabelData{label}, printedAt)
}

func renderProductLabelsPDF(labels []LabelData, printedAt time.Time) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to render")
	}

	pdf := gofpdf.New("L", "mm", "A6", "")
	pdf.SetTitle("Product Labels", false)
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		serial := strings.TrimSpace(label.SerialNumber)
		if serial == "" {
			return nil, fmt.Errorf("label %d: serial number is required", i+1)
		}
		barcodePNG, err := renderCode128PNG(serial, 900, 200)
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(label.Name)
		if name == "" {
			name = "Unnamed Product"
		}
		category := strings.TrimSpace(label.Category)
		if category == "" {
			category = "-"
		}

		pdf.AddPage()
		pageW, _ := pdf.GetPageSize()

		pdf.SetFont("Helvetica", "B", 20)
		pdf.CellFormat(0, 11, pdf.UnicodeTranslatorFromDescriptor("")(name), "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 6, "Category: "+category, "", 1, "C", false, 0, "")
		if label.Price != "" {
			pdf.SetFont("Helvetica", "B", 16)
			pdf.CellFormat(0, 9, label.Price, "", 1, "C", false, 0, "")
		}

		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		imageName := fmt.Sprintf("product-barcode-%d", i)
		pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
		imgW := 110.0
		imgH := 26.0
		x := (pageW - imgW) / 2
		y := 48.0
		pdf.ImageOptions(imageName, x, y, imgW, imgH, false, opt, 0, "")

		pdf.SetY(y + imgH + 2)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 7, serial, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, "Printed: "+printedAt.Format("02/01/2006"), "", 1, "C", false, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	bc, err := code128.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("encode code128: %w", err)
	}
	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}
	rgba := image.NewRGBA(scaled.Bounds())
	draw.Draw(rgba, rgba.Bounds(), scaled, scaled.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
