package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/orderdesk-backend/internal/income"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

func sampleReport() *income.Report {
	outcome := enums.DecisionAcceptCash
	name := "Ana"
	return &income.Report{
		StoreID:   uuid.New(),
		StoreName: "Tienda Sol",
		From:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Orders: []income.Entry{{
			OrderID:    uuid.New(),
			Token:      "tok_abc",
			Status:     enums.OrderStatusConfirmed,
			Outcome:    &outcome,
			BuyerName:  &name,
			TotalCents: 12550,
			DecidedAt:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		}},
		Count:        1,
		TotalCents:   12550,
		Currency:     "MXN",
		TotalDisplay: "125.50",
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, sampleReport(), formatTable))
	out := buf.String()
	require.Contains(t, out, "Tienda Sol")
	require.Contains(t, out, "tok_abc")
	require.Contains(t, out, "125.50")
	require.Contains(t, out, "ACCEPT_CASH")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, sampleReport(), formatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, float64(12550), decoded["total"])
	require.Equal(t, "125.50", decoded["total_display"])
	require.True(t, strings.HasPrefix(decoded["from"].(string), "2026-03-01"))
}

func TestRenderUnknownFormat(t *testing.T) {
	require.Error(t, render(&bytes.Buffer{}, sampleReport(), "xml"))
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-05")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), day)

	_, err = parseDay("05/03/2026")
	require.Error(t, err)
}
