// Package quote renders the PDF quote document customers download from the
// tracking page: brand header, order references, buyer block, line-item
// table, then VAT and delivery fee on top of the estimated subtotal.
package quote

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"embalini-backend/internal/models"
)

type DocumentParams struct {
	BrandName   string
	BrandLine   string
	Currency    string
	VATRate     float64
	DeliveryFee float64
}

// Totals carries the money lines printed at the bottom of the document.
type Totals struct {
	Subtotal float64
	VAT      float64
	Delivery float64
	Total    float64
}

// ComputeTotals applies the fixed VAT rate and flat delivery fee to an
// order's estimated subtotal.
func ComputeTotals(subtotal float64, params DocumentParams) Totals {
	vat := round2(subtotal * params.VATRate)
	return Totals{
		Subtotal: round2(subtotal),
		VAT:      vat,
		Delivery: round2(params.DeliveryFee),
		Total:    round2(subtotal + vat + params.DeliveryFee),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func money(v float64, currency string) string {
	return fmt.Sprintf("%.2f %s", v, currency)
}

// Render produces the quote PDF for an order.
func Render(order models.Order, params DocumentParams) ([]byte, error) {
	currency := order.Currency
	if strings.TrimSpace(currency) == "" {
		currency = params.Currency
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Devis "+order.OrderID, false)
	// Core fonts are CP1252; translate the UTF-8 strings or accents garble.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Brand header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(params.BrandName), "", 1, "L", false, 0, "")
	if params.BrandLine != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, tr(params.BrandLine), "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	// References
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Devis "+order.OrderID, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr("Code de suivi : ")+order.SecretCode, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date : "+order.CreatedAt.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Statut : "+order.Status), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Buyer block
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Client", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr(strings.TrimSpace(order.Prenom+" "+order.Nom)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr(order.Email), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, order.Telephone, "", 1, "L", false, 0, "")
	if order.Societe != "" {
		pdf.CellFormat(0, 5, tr("Société : "+order.Societe), "", 1, "L", false, 0, "")
	}
	if order.MatriculeFiscale != "" {
		pdf.CellFormat(0, 5, tr("MF : "+order.MatriculeFiscale), "", 1, "L", false, 0, "")
	}
	if order.Personnalisation != "" {
		pdf.CellFormat(0, 5, tr("Personnalisation : "+order.Personnalisation), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Line-item table
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(90, 7, "Article", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, tr("Qté"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Prix unitaire", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.Items {
		pdf.CellFormat(90, 7, tr(item.Titre), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantite), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, money(item.PrixUnitaire, currency), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, money(item.PrixTotal, currency), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals block
	totals := ComputeTotals(order.TotalEstimation, params)
	totalRow := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(150, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, value, "", 1, "R", false, 0, "")
	}
	totalRow("Sous-total", money(totals.Subtotal, currency), false)
	totalRow(fmt.Sprintf("TVA (%.0f%%)", params.VATRate*100), money(totals.VAT, currency), false)
	totalRow("Livraison", money(totals.Delivery, currency), false)
	totalRow("Total TTC", money(totals.Total, currency), true)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Estimation générée le %s, valable 30 jours.", time.Now().Format("02/01/2006"))), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
