// Package export serializes the transaction list into downloadable artifacts.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"bilancio/internal/core"
)

const (
	JSONFilename    = "transactions.json"
	JSONContentType = "application/json"

	XLSXFilename    = "transactions.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Transactions"
)

var columns = []string{"id", "date", "amount", "type", "category"}

// Artifact is a named file ready to be handed to the user.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// JSON encodes ts as a pretty-printed array in list order. The output only
// depends on the input, so equal lists give identical bytes.
func JSON(ts []core.Transaction) (Artifact, error) {
	if ts == nil {
		ts = []core.Transaction{}
	}
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("encode transactions: %w", err)
	}
	return Artifact{Filename: JSONFilename, ContentType: JSONContentType, Data: append(data, '\n')}, nil
}

// ParseJSON reads an artifact produced by JSON. Every entry is validated.
func ParseJSON(data []byte) ([]core.Transaction, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var ts []core.Transaction
	if err := dec.Decode(&ts); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	for i, t := range ts {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (id %d): %w", i, t.ID, err)
		}
	}
	return ts, nil
}

// XLSX writes ts to a single-sheet workbook with a header row.
func XLSX(ts []core.Transaction) (Artifact, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, sheetName); err != nil {
		return Artifact{}, fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return Artifact{}, fmt.Errorf("write header: %w", err)
	}
	for i, t := range ts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Artifact{}, err
		}
		row := []any{t.ID, t.Date.String(), t.Amount.Float(), string(t.Type), t.Category}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return Artifact{}, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Artifact{}, fmt.Errorf("write workbook: %w", err)
	}
	return Artifact{Filename: XLSXFilename, ContentType: XLSXContentType, Data: buf.Bytes()}, nil
}

// ParseXLSX reads a workbook produced by XLSX.
func ParseXLSX(r io.Reader) ([]core.Transaction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	ts := []core.Transaction{}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		for len(row) < len(columns) {
			row = append(row, "")
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid id %q", i+1, row[0])
		}
		t, err := core.Draft{ID: id, Date: row[1], Amount: row[2], Type: row[3], Category: &row[4]}.Transaction()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		ts = append(ts, t)
	}
	return ts, nil
}
