package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"boxoffice-pipeline/internal/model"
)

// LoadResult is the in-memory table produced by the loader.
type LoadResult struct {
	Source   string          `json:"source"`
	Records  []model.Record  `json:"-"`
	Warnings []ParseWarning  `json:"warnings,omitempty"`
	Stats    ValidationStats `json:"stats"`
}

// ------------------- Loading -------------------

// Load reads a box-office table from a file path or an http(s) URL.
// The format follows the extension: .xlsx, .json, .tsv/.txt (tab separated),
// anything else is read as CSV.
func Load(ctx context.Context, source string) (*LoadResult, error) {
	if isURL(source) {
		return loadURL(ctx, source)
	}

	switch formatOf(source) {
	case "xlsx":
		return loadXLSX(source)
	case "json":
		f, err := openFile(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadJSON(f, source)
	default:
		f, err := openFile(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadDelimited(f, source, delimiterOf(source))
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func formatOf(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	case ".json":
		return "json"
	case ".tsv", ".txt":
		return "tsv"
	default:
		return "csv"
	}
}

func delimiterOf(p string) rune {
	if formatOf(p) == "tsv" {
		return '\t'
	}
	return ','
}

func openFile(p string) (*os.File, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, &IOError{Path: p, Err: err}
	}
	return f, nil
}

// ------------------- Delimited Loading -------------------

// LoadDelimited reads CSV/TSV rows from r. source only labels errors and warnings.
func LoadDelimited(r io.Reader, source string, comma rune) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Path: source}
	}
	if err != nil {
		return nil, &IOError{Path: source, Err: fmt.Errorf("failed to read header: %w", err)}
	}

	return collect(source, header, func() ([]string, error) {
		row, err := reader.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, &IOError{Path: source, Err: err}
		}
		return row, err
	})
}

// ------------------- Spreadsheet Loading -------------------

func loadXLSX(p string) (*LoadResult, error) {
	f, err := excelize.OpenFile(p)
	if err != nil {
		return nil, &IOError{Path: p, Err: err}
	}
	defer f.Close()
	return readWorkbook(f, p)
}

// LoadXLSX reads the first sheet of a workbook streamed from r.
func LoadXLSX(r io.Reader, source string) (*LoadResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &IOError{Path: source, Err: fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer f.Close()
	return readWorkbook(f, source)
}

func readWorkbook(f *excelize.File, p string) (*LoadResult, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &SchemaError{Path: p}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &IOError{Path: p, Err: err}
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Path: p}
	}

	next := 1
	return collect(p, rows[0], func() ([]string, error) {
		if next >= len(rows) {
			return nil, io.EOF
		}
		row := rows[next]
		next++
		return row, nil
	})
}

// ------------------- JSON Loading -------------------

// LoadJSON reads an array of objects keyed by column name.
func LoadJSON(r io.Reader, source string) (*LoadResult, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var items []map[string]any
	if err := dec.Decode(&items); err != nil {
		return nil, &IOError{Path: source, Err: fmt.Errorf("failed to decode JSON: %w", err)}
	}

	// Union of keys in first-seen order acts as the header row
	var header []string
	seen := make(map[string]bool)
	for _, item := range items {
		for _, k := range sortedKeys(item) {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}

	next := 0
	return collect(source, header, func() ([]string, error) {
		if next >= len(items) {
			return nil, io.EOF
		}
		item := items[next]
		next++
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = stringify(item[k])
		}
		return row, nil
	})
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// ------------------- URL Loading -------------------

func loadURL(ctx context.Context, source string) (*LoadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &IOError{Path: source, Err: err}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &IOError{Path: source, Err: fmt.Errorf("failed to GET: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &IOError{Path: source, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	name := source
	if u, err := url.Parse(source); err == nil {
		name = path.Base(u.Path)
	}
	contentType := resp.Header.Get("Content-Type")
	switch {
	case formatOf(name) == "xlsx" || strings.Contains(contentType, "spreadsheetml"):
		return LoadXLSX(resp.Body, source)
	case formatOf(name) == "json" || strings.Contains(contentType, "json"):
		return LoadJSON(resp.Body, source)
	}
	return LoadDelimited(resp.Body, source, delimiterOf(name))
}

// ------------------- Row Collection -------------------

// collect indexes the header, then converts rows until next returns io.EOF.
// Blank rows are skipped; rows with bad cells are kept with coerced values.
func collect(source string, header []string, next func() ([]string, error)) (*LoadResult, error) {
	idx, err := indexHeader(source, header)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{Source: source}
	line := 1
	for {
		row, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if isBlank(row) {
			continue
		}
		rec, warnings := idx.toRecord(line, row)
		result.Records = append(result.Records, rec)
		result.Warnings = append(result.Warnings, warnings...)
	}

	result.Stats = ValidateRecords(result.Records)
	slog.Debug("📄 ingestion done",
		"source", source,
		"records", len(result.Records),
		"warnings", len(result.Warnings))
	return result, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
