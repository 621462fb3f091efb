// Command genstatement writes a sample bank statement in CSV and XLSX form.
// The output is deterministic and matches the column layout the upload
// endpoint accepts, which makes it handy for demos and manual testing.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

type row struct {
	date        string
	description string
	debit       float64
	credit      float64
	reference   string
}

var sampleRows = []row{
	{"2025-01-01", "SALARY CREDIT ACME CORP", 0, 85000, "SAL-2501"},
	{"2025-01-02", "BIGBASKET GROCERIES", 3250.50, 0, "POS-88121"},
	{"2025-01-03", "UBER TRIP", 420, 0, "UPI-55310"},
	{"2025-01-05", "NETFLIX SUBSCRIPTION", 649, 0, "ACH-11923"},
	{"2025-01-07", "ELECTRICITY BILL BESCOM", 2180, 0, "BIL-70034"},
	{"2025-01-09", "SWIGGY ORDER", 780.25, 0, "UPI-55987"},
	{"2025-01-12", "AMAZON PURCHASE", 4599, 0, "POS-90112"},
	{"2025-01-14", "APOLLO PHARMACY", 1260, 0, "POS-90455"},
	{"2025-01-15", "MUTUAL FUND SIP", 10000, 0, "ACH-12044"},
	{"2025-01-18", "IRCTC TRAIN TICKET", 1845, 0, "WEB-33817"},
	{"2025-01-20", "FREELANCE PAYMENT", 0, 12000, "NEFT-20991"},
	{"2025-01-22", "PVR CINEMAS", 960, 0, "POS-91230"},
	{"2025-01-25", "RENT TRANSFER", 22000, 0, "NEFT-21056"},
	{"2025-01-28", "ZOMATO ORDER", 515.75, 0, "UPI-56733"},
	{"2025-01-31", "MOBILE RECHARGE AIRTEL", 299, 0, "UPI-56990"},
}

var header = []string{"Date", "Description", "Debit", "Credit", "Reference"}

func main() {
	outDir := flag.String("out", "testdata", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	csvPath := filepath.Join(*outDir, "sample_statement.csv")
	if err := writeCSV(csvPath); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
	fmt.Println("Wrote", csvPath)

	xlsxPath := filepath.Join(*outDir, "sample_statement.xlsx")
	if err := writeXLSX(xlsxPath); err != nil {
		log.Fatalf("Failed to write XLSX: %v", err)
	}
	fmt.Println("Wrote", xlsxPath)
}

func writeCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range sampleRows {
		if err := w.Write(record(r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range sampleRows {
		cell := fmt.Sprintf("A%d", i+2)
		values := record(r)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func record(r row) []string {
	debit, credit := "", ""
	if r.debit != 0 {
		debit = fmt.Sprintf("%.2f", r.debit)
	}
	if r.credit != 0 {
		credit = fmt.Sprintf("%.2f", r.credit)
	}
	return []string{r.date, r.description, debit, credit, r.reference}
}
