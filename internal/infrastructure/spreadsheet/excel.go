package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/price"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

const (
	offersSheet = "Fiyatlar"
	dealsSheet  = "Fırsatlar"
	priceFormat = "#,##0.00"
)

type excelSpreadsheet struct{}

// NewExcelSpreadsheet xlsx import/export backed by excelize
func NewExcelSpreadsheet() repository.Spreadsheet {
	return &excelSpreadsheet{}
}

// WriteOffers one row per offer, cheapest first
func (e *excelSpreadsheet) WriteOffers(ctx context.Context, w io.Writer, result entity.SearchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", offersSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []any{"Ürün", "Fiyat", "Satıcı", "Kaynak", "Link", "Resim"}
	rows := make([][]any, 0, len(result.Offers))
	for _, o := range result.Offers {
		rows = append(rows, []any{o.Title, o.Price, o.Seller, string(o.Source), o.URL, o.ImageURL})
	}

	if err := e.writeTable(f, offersSheet, header, rows, "B"); err != nil {
		return err
	}
	for i, o := range result.Offers {
		if o.URL == "" {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(5, i+2)
		if err := f.SetCellHyperLink(offersSheet, cell, o.URL, "External"); err != nil {
			return fmt.Errorf("failed to set hyperlink: %w", err)
		}
	}

	return f.Write(w)
}

// WriteDeals one row per deal, biggest discount first
func (e *excelSpreadsheet) WriteDeals(ctx context.Context, w io.Writer, deals []entity.Deal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dealsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []any{"Ürün", "Fiyat", "Eski Fiyat", "İndirim", "Link", "Resim"}
	rows := make([][]any, 0, len(deals))
	for _, d := range deals {
		rows = append(rows, []any{d.Title, d.Price, d.ListPrice, d.DiscountLabel, d.URL, d.ImageURL})
	}

	if err := e.writeTable(f, dealsSheet, header, rows, "B", "C"); err != nil {
		return err
	}
	return f.Write(w)
}

func (e *excelSpreadsheet) writeTable(f *excelize.File, sheet string, header []any, rows [][]any, priceCols ...string) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	numFmt := priceFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	for _, col := range priceCols {
		if err := f.SetColStyle(sheet, col, money); err != nil {
			return fmt.Errorf("failed to style column %s: %w", col, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 60)
	_ = f.SetColWidth(sheet, "C", "D", 16)
	return nil
}

// ParseWatchlist reads "product | target price | interval minutes | chat id"
// rows from the first sheet. The header row is optional.
func (e *excelSpreadsheet) ParseWatchlist(ctx context.Context, data []byte, filename string) ([]entity.WatchRequest, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	columns := map[string]int{"product": 0, "target": 1, "interval": 2, "chat": 3}
	startRow := 0
	if len(rows[0]) > 1 && price.ParseString(rows[0][1]) == 0 {
		columns = mapColumns(rows[0])
		startRow = 1
	}

	var out []entity.WatchRequest
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		product := cellAt(row, columns["product"])
		target := price.ParseString(cellAt(row, columns["target"]))
		if product == "" || target <= 0 {
			if !isEmptyRow(row) {
				log.Printf("spreadsheet: %s row %d skipped: product=%q target=%q", filename, i+1, product, cellAt(row, columns["target"]))
			}
			continue
		}

		req := entity.WatchRequest{Product: product, TargetPrice: target}
		if idx, ok := columns["interval"]; ok {
			if minutes, err := strconv.Atoi(cellAt(row, idx)); err == nil && minutes > 0 {
				req.Interval = time.Duration(minutes) * time.Minute
			}
		}
		if idx, ok := columns["chat"]; ok {
			if chatID, err := strconv.ParseInt(cellAt(row, idx), 10, 64); err == nil {
				req.ChatID = chatID
			}
		}
		out = append(out, req)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no watch rows found in %s", filename)
	}
	return out, nil
}

func mapColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch {
		case contains(name, "ürün", "urun", "product", "name", "adı"):
			setOnce(columns, "product", i)
		case contains(name, "hedef", "target", "fiyat", "price"):
			setOnce(columns, "target", i)
		case contains(name, "dakika", "interval", "minute", "sıklık"):
			setOnce(columns, "interval", i)
		case contains(name, "chat", "sohbet"):
			setOnce(columns, "chat", i)
		}
	}
	if _, ok := columns["product"]; !ok {
		columns["product"] = 0
	}
	if _, ok := columns["target"]; !ok {
		columns["target"] = 1
	}
	return columns
}

func setOnce(m map[string]int, key string, idx int) {
	if _, ok := m[key]; !ok {
		m[key] = idx
	}
}

func contains(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
