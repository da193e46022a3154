package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/angelmondragon/orderdesk-backend/internal/income"
	"github.com/angelmondragon/orderdesk-backend/pkg/money"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func render(w io.Writer, report *income.Report, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatTable, "":
		return renderTable(w, report)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(w io.Writer, report *income.Report) error {
	fmt.Fprintf(w, "%s (%s)\n%s to %s\n",
		report.StoreName, report.StoreID,
		report.From.Format(time.RFC3339), report.To.Format(time.RFC3339))

	table := tablewriter.NewWriter(w)
	table.Header("Decided", "Token", "Outcome", "Buyer", "Total")
	for _, entry := range report.Orders {
		outcome := ""
		if entry.Outcome != nil {
			outcome = string(*entry.Outcome)
		}
		buyer := ""
		if entry.BuyerName != nil {
			buyer = *entry.BuyerName
		}
		if err := table.Append([]string{
			entry.DecidedAt.Format(time.DateTime),
			entry.Token,
			outcome,
			buyer,
			money.FormatMinor(entry.TotalCents, report.Currency),
		}); err != nil {
			return err
		}
	}
	table.Footer("", "", "", strconv.Itoa(report.Count)+" orders", report.TotalDisplay+" "+report.Currency)
	return table.Render()
}
