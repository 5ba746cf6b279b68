package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumericID(t *testing.T) {
	for _, in := range []string{"17", " 17 ", "17.0"} {
		id, err := ParseNumericID(in)
		require.NoError(t, err, in)
		assert.Equal(t, NumericID(17), id)
	}
	for _, in := range []string{"", "abc", "17.5"} {
		_, err := ParseNumericID(in)
		assert.True(t, errors.Is(err, apperr.ErrValidation), in)
	}
}

func TestNumericID_DecodesStringsAndNumbers(t *testing.T) {
	var p struct {
		A NumericID `json:"a"`
		B NumericID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1712345678901, "b": "42"}`), &p))
	assert.Equal(t, NumericID(1712345678901), p.A)
	assert.Equal(t, NumericID(42), p.B)
}

func TestNewNumericID_SkipsTaken(t *testing.T) {
	now := time.UnixMilli(1000)
	taken := map[NumericID]bool{1000: true, 1001: true}
	id := NewNumericID(now, func(id NumericID) bool { return taken[id] })
	assert.Equal(t, NumericID(1002), id)
}

func TestLeadID_RoundTripKeepsShape(t *testing.T) {
	var leads []Lead
	require.NoError(t, json.Unmarshal([]byte(`[{"id": 17}, {"id": "5f0c-uuid"}, {"id": "007"}, {"id": "42"}]`), &leads))
	assert.Equal(t, LeadID("17"), leads[0].ID)
	assert.True(t, leads[0].ID.Equal("17.0"))
	assert.False(t, leads[1].ID.Equal("17"))
	assert.Equal(t, LeadID("007"), leads[2].ID)

	out, err := json.Marshal(leads)
	require.NoError(t, err)
	var ids []struct {
		ID json.RawMessage `json:"id"`
	}
	require.NoError(t, json.Unmarshal(out, &ids))
	assert.Equal(t, `17`, string(ids[0].ID))
	assert.Equal(t, `"5f0c-uuid"`, string(ids[1].ID))
	assert.Equal(t, `"007"`, string(ids[2].ID))
	assert.Equal(t, `"42"`, string(ids[3].ID))

	// new leads always carry string ids
	out, err = json.Marshal(Lead{ID: "123"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":"123"`)
}

func TestProduct_LooseScalarsAndUnknownKeys(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "9", "name": "VMB-05", "price": 4500, "hp": 0.5, "description": "Quiet",
		"table_data": {"pipe_size": 25, "head_row_vals": ["6", 12], "discharge_row_vals": [40, "n/a"], "notes": "x"}
	}`), &p))
	assert.Equal(t, NumericID(9), p.ID)
	assert.Equal(t, "4500", p.Price)
	assert.Equal(t, "0.5", p.HP)
	require.NotNil(t, p.TableData)
	assert.Equal(t, "25", p.TableData.PipeSize)
	assert.Equal(t, []float64{6, 12}, p.TableData.HeadRowVals)
	assert.Nil(t, p.TableData.DischargeRowVals)
	desc, ok := p.Extra("description")
	require.True(t, ok)
	assert.JSONEq(t, `"Quiet"`, string(desc))

	name := "VMB-06"
	require.NoError(t, ProductInput{Name: &name}.Apply(&p))
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 9, "name": "VMB-06", "price": "4500", "hp": "0.5", "description": "Quiet",
		"table_data": {"pipe_size": "25", "head_row_vals": [6, 12], "discharge_row_vals": [40, "n/a"], "notes": "x"}
	}`, string(out))
}

func TestDocument_KeepsUnreadableRecords(t *testing.T) {
	src := `{
		"users": [{"username": "admin", "password": "x", "name": "Admin", "role": "Owner", "lastLogin": "today"}],
		"products": [{"id": 1, "price": "100"}, {"id": 2, "price": 4500}, {"id": "pump-three", "name": "Odd"}, "junk"],
		"leads": [{"id": 1, "date": 1712345678901.5, "status": "Spam"}],
		"categories": {"broken": true},
		"warranties": [],
		"stats": {"monthLeads": "3", "visits": 10},
		"settings": {"currency": "INR"}
	}`
	var d Document
	require.NoError(t, json.Unmarshal([]byte(src), &d))
	d.Normalize()

	require.Len(t, d.Products, 2)
	assert.Equal(t, "4500", d.Products[1].Price)
	assert.Len(t, d.Problems(), 3)
	require.Len(t, d.Leads, 1)
	assert.Equal(t, int64(1712345678901), d.Leads[0].Date.UnixMilli())
	assert.Equal(t, LeadStatus("Spam"), d.Leads[0].Status)
	assert.Equal(t, 3, d.Stats.MonthLeads)
	assert.Empty(t, d.Categories)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	var back map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &back))
	assert.JSONEq(t, `[{"id":1,"name":"","price":"100"},{"id":2,"name":"","price":"4500"},{"id":"pump-three","name":"Odd"},"junk"]`, string(back["products"]))
	assert.JSONEq(t, `{"broken": true}`, string(back["categories"]))
	assert.JSONEq(t, `{"currency": "INR"}`, string(back["settings"]))
	assert.Contains(t, string(back["users"]), `"lastLogin":"today"`)
	assert.Contains(t, string(back["stats"]), `"visits":10`)

	// a second pass reads the same document
	var again Document
	require.NoError(t, json.Unmarshal(out, &again))
	out2, err := json.Marshal(again)
	require.NoError(t, err)
	assert.JSONEq(t, string(out), string(out2))
}

func TestDocument_RefreshStatsKeepsUnknownMembers(t *testing.T) {
	var d Document
	require.NoError(t, json.Unmarshal([]byte(`{"products":[{"id":1}],"stats":{"products":99,"visits":10}}`), &d))
	d.RefreshStats(time.Now())
	assert.Equal(t, 1, d.Stats.Products)
	out, err := json.Marshal(d.Stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dealers":0,"pendingOrders":0,"monthLeads":0,"products":1,"visits":10}`, string(out))
}

func TestTimestamp_LegacyAndUnknownFormats(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"1/2/2026, 10:15:00 AM"`), &ts))
	assert.Equal(t, 2026, ts.Year())
	assert.Equal(t, time.January, ts.Month())
	assert.Equal(t, 2, ts.Day())

	require.NoError(t, json.Unmarshal([]byte(`"sometime last week"`), &ts))
	assert.True(t, ts.IsZero())
	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"sometime last week"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"when": "tuesday"}`), &ts))
	assert.True(t, ts.IsZero())
	out, err = json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"when": "tuesday"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`1712345678901.25`), &ts))
	assert.Equal(t, int64(1712345678901), ts.UnixMilli())

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	out, err = json.Marshal(NewTimestamp(now))
	require.NoError(t, err)
	var back Timestamp
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, now.Equal(back.Time))
}

func TestProductInput_ApplyMerges(t *testing.T) {
	p := Product{ID: 1, Name: "Old", Series: "S1", Image: "uploads/a.jpg", Stock: StockInStock}
	name := "New"
	empty := ""
	stock := "low stock"
	require.NoError(t, ProductInput{Name: &name, Image: &empty, Stock: &stock}.Apply(&p))

	assert.Equal(t, "New", p.Name)
	assert.Equal(t, "S1", p.Series)
	assert.Equal(t, "uploads/a.jpg", p.Image)
	assert.Equal(t, StockLow, p.Stock)
}

func TestProductInput_RejectsBadInput(t *testing.T) {
	bad := "Sometimes"
	err := ProductInput{Stock: &bad}.Apply(&Product{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	td := &TableData{HeadRowVals: []float64{1, 2}, DischargeRowVals: []float64{3}}
	err = ProductInput{TableData: td}.Apply(&Product{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestInterestSummary(t *testing.T) {
	got := InterestSummary("Need 5 pumps for farm irrigation next month")
	assert.Equal(t, "Enquiry: Need 5 pumps for farm irrigati...", got)
	assert.Equal(t, "Enquiry: Hi...", InterestSummary("Hi"))
}

func TestParseStatuses(t *testing.T) {
	st, err := ParseLeadStatus("contacted")
	require.NoError(t, err)
	assert.Equal(t, LeadContacted, st)
	_, err = ParseLeadStatus("Lost")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	ws, err := ParseWarrantyStatus("Approved")
	require.NoError(t, err)
	assert.Equal(t, WarrantyApproved, ws)
	_, err = ParseWarrantyStatus("")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestDocument_NormalizeAndLookups(t *testing.T) {
	var d Document
	require.NoError(t, json.Unmarshal([]byte(`{"users":[{"username":"admin","password":"x","name":"Admin","role":"owner"}],"stats":{}}`), &d))
	d.Normalize()
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"products":[]`)
	assert.Contains(t, string(out), `"warranties":[]`)

	u, ok := d.FindUser("admin")
	require.True(t, ok)
	assert.Equal(t, UserSummary{Name: "Admin", Role: "owner"}, u.Summary())
	assert.Equal(t, -1, d.ProductIndex(3))
}
