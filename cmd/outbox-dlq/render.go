package main

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
)

const maxErrorColumn = 60

func renderDeadLetters(w io.Writer, rows []models.OutboxDLQ) error {
	table := tablewriter.NewWriter(w)
	table.Header("Failed", "Event", "Type", "Aggregate", "Reason", "Attempts", "Error")
	for _, row := range rows {
		msg := ""
		if row.ErrorMessage != nil {
			msg = oneLine(*row.ErrorMessage, maxErrorColumn)
		}
		if err := table.Append([]string{
			row.FailedAt.UTC().Format(time.DateTime),
			row.EventID.String(),
			string(row.EventType),
			string(row.AggregateType) + "/" + row.AggregateID.String(),
			string(row.ErrorReason),
			strconv.Itoa(row.AttemptCount),
			msg,
		}); err != nil {
			return err
		}
	}
	table.Footer("", "", "", "", "", "", strconv.Itoa(len(rows))+" entries")
	return table.Render()
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}
