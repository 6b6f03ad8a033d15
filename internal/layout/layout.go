package layout

import (
	"fmt"
	"path"
	"strconv"
	"time"
)

// Category describes one kind of document handled by the pipeline.
type Category struct {
	// Name identifies the category in reports and manifests.
	Name string

	// Folder is the directory name used under the year folder.
	Folder string

	// Prefix is the file name prefix for stored documents.
	Prefix string

	// Ext is the file extension without the leading dot.
	Ext string

	// Column is the manifest column holding this category's URL.
	Column string
}

// DefaultCategories returns the built-in document categories.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:   "Invoice",
			Folder: "Invoices",
			Prefix: "Invoice",
			Ext:    "pdf",
			Column: "invoice_url",
		},
		{
			Name:   "PaymentAdvice",
			Folder: "Payment_Advices",
			Prefix: "Payment_Advice",
			Ext:    "pdf",
			Column: "payment_advice_url",
		},
		{
			Name:   "Annexure",
			Folder: "Annexures",
			Prefix: "Annexure",
			Ext:    "xlsx",
			Column: "annexure_url",
		},
	}
}

// Derive returns the slash-separated relative storage path for one document.
// The layout is RID_{record}/{year}/{folder}/{prefix}_{YYYY_MM_DD}.{ext}.
// The year comes from the record's effective date. Identical inputs always
// produce identical output; if the same (record, category, date) triple
// appears twice in a manifest both occurrences derive the same path.
func Derive(recordID string, cat Category, date time.Time) string {
	return path.Join(
		"RID_"+recordID,
		strconv.Itoa(date.Year()),
		cat.Folder,
		fmt.Sprintf("%s_%s.%s", cat.Prefix, date.Format("2006_01_02"), cat.Ext),
	)
}
