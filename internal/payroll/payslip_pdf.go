package payroll

import (
	"bytes"
	"fmt"
	"strings"
)

func payslipLines(p Payroll) []string {
	lines := []string{
		"Dayflow Payslip",
		"",
		"Employee: " + p.EmployeeID.String(),
		"Period:   " + p.Month.Format("January 2006"),
		"Status:   " + p.Status,
	}
	if p.PaymentDate != nil {
		lines = append(lines, "Paid on:  "+p.PaymentDate.Format(dateLayout))
	}
	return append(lines,
		"",
		"Basic salary      "+money(p.BasicSalary),
		"Allowances        "+money(p.Allowances),
		"Gross salary      "+money(p.GrossSalary),
		"Deductions       -"+money(p.Deductions),
		"Tax              -"+money(p.Tax),
		"",
		"Net salary        "+money(p.NetSalary),
	)
}

// renderPayslip writes a single-page PDF 1.4 document with one Helvetica
// text block.
func renderPayslip(p Payroll) []byte {
	lines := payslipLines(p)

	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n16 TL\n50 800 Td\n")
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(&content, "(%s) Tj\n", pdfEscape(line))
			continue
		}
		fmt.Fprintf(&content, "T* (%s) Tj\n", pdfEscape(line))
	}
	content.WriteString("ET")

	stream := content.String()
	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n",
		"4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>\nendobj\n",
		fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects))
	for _, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(objects)+1, xref)

	return out.Bytes()
}

func pdfEscape(v string) string {
	return strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)").Replace(v)
}
