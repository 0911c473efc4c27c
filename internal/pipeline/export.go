package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"boxoffice-pipeline/internal/model"
	"boxoffice-pipeline/pkg/utils"
)

// Export formats understood by ExportManager.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatParquet  = "parquet"
	FormatHTML     = "html"
	FormatDatabase = "database"
)

// ExportFormats lists every supported format.
var ExportFormats = []string{FormatCSV, FormatJSON, FormatYAML, FormatParquet, FormatHTML, FormatDatabase}

// RecordSaver stores the combined plot dataset. *store.Store implements it.
type RecordSaver interface {
	SaveDashboardRecords(ctx context.Context, jobID string, records []model.Record) (int, error)
}

// ExportManager writes a dashboard to the configured targets.
type ExportManager struct {
	Output  *utils.OutputManager
	Formats []string
	DB      RecordSaver // required for the database format
	Logger  *slog.Logger
}

// NewExportManager creates an export manager rooted at dir.
func NewExportManager(dir string, formats []string, db RecordSaver, logger *slog.Logger) *ExportManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportManager{
		Output:  utils.NewOutputManager(dir),
		Formats: formats,
		DB:      db,
		Logger:  logger,
	}
}

// ValidateFormats rejects unknown format names.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		known := false
		for _, k := range ExportFormats {
			if strings.EqualFold(f, k) {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown export format %q", f)
		}
	}
	return nil
}

// Export writes d once per configured format. Each target reports its own
// result; one failing target does not stop the others.
func (em *ExportManager) Export(ctx context.Context, jobID string, d *model.Dashboard) []model.ExportResult {
	results := make([]model.ExportResult, 0, len(em.Formats))
	for _, format := range em.Formats {
		if ctx.Err() != nil {
			break
		}
		results = append(results, em.exportOne(ctx, jobID, strings.ToLower(format), d))
	}
	return results
}

func (em *ExportManager) exportOne(ctx context.Context, jobID, format string, d *model.Dashboard) model.ExportResult {
	var (
		path  string
		count int
		err   error
	)

	switch format {
	case FormatDatabase:
		path = "dashboard_records"
		if em.DB == nil {
			err = fmt.Errorf("no database configured")
		} else {
			count, err = em.DB.SaveDashboardRecords(ctx, jobID, d.Combined)
		}
	default:
		path, err = em.Output.GetOutputFilePath(jobID, fileNameFor(format))
		if err == nil {
			count, err = em.writeFile(format, path, d)
		}
	}

	result := model.ExportResult{
		Type:        format,
		Path:        path,
		RecordCount: count,
		Success:     err == nil,
		Timestamp:   time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
		em.Logger.Error("❌ export failed", "format", format, "path", path, "error", err)
	} else {
		em.Logger.Info("💾 export written", "format", format, "path", path, "records", count)
	}
	return result
}

func fileNameFor(format string) string {
	switch format {
	case FormatCSV:
		return "records.csv"
	case FormatParquet:
		return "records.parquet"
	case FormatHTML:
		return "report.html"
	default:
		return "dashboard." + format
	}
}

func (em *ExportManager) writeFile(format, path string, d *model.Dashboard) (int, error) {
	switch format {
	case FormatCSV:
		return exportToCSV(path, d.Combined)
	case FormatJSON:
		return exportToJSON(path, d)
	case FormatYAML:
		return exportToYAML(path, d)
	case FormatParquet:
		return exportToParquet(path, d.Combined)
	case FormatHTML:
		return exportToHTML(path, d)
	default:
		return 0, fmt.Errorf("unknown export format %q", format)
	}
}

// exportToCSV writes records with the source column names.
func exportToCSV(path string, records []model.Record) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(requiredColumns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	recordCount := 0
	for _, rec := range records {
		row := []string{
			rec.MovieCode,
			rec.MovieName,
			strconv.FormatInt(rec.SalesAmount, 10),
			strconv.FormatInt(rec.Audience, 10),
			strconv.FormatInt(rec.Screens, 10),
			strconv.FormatInt(rec.Shows, 10),
			rec.ReleaseDate.String(),
			rec.ObservedOn.String(),
		}
		if err := writer.Write(row); err != nil {
			return recordCount, fmt.Errorf("failed to write row: %w", err)
		}
		recordCount++
	}

	writer.Flush()
	return recordCount, writer.Error()
}

// exportToJSON writes the whole dashboard with export metadata.
func exportToJSON(path string, d *model.Dashboard) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"job_id":       d.JobID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(d.Combined),
			"export_type":  "dashboard",
		},
		"data": d,
	}
	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(d.Combined), nil
}

func exportToYAML(path string, d *model.Dashboard) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return 0, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("failed to flush YAML: %w", err)
	}
	return len(d.Combined), nil
}

// parquetRecord is the on-disk row layout; null dates are empty strings.
type parquetRecord struct {
	MovieCode   string `parquet:"movieCd"`
	MovieName   string `parquet:"movieNm"`
	SalesAmount int64  `parquet:"salesAmt"`
	Audience    int64  `parquet:"audiCnt"`
	Screens     int64  `parquet:"scrnCnt"`
	Shows       int64  `parquet:"showCnt"`
	ReleaseDate string `parquet:"openDt"`
	ObservedOn  string `parquet:"targetDt"`
}

func exportToParquet(path string, records []model.Record) (int, error) {
	rows := make([]parquetRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, parquetRecord{
			MovieCode:   rec.MovieCode,
			MovieName:   rec.MovieName,
			SalesAmount: rec.SalesAmount,
			Audience:    rec.Audience,
			Screens:     rec.Screens,
			Shows:       rec.Shows,
			ReleaseDate: rec.ReleaseDate.String(),
			ObservedOn:  rec.ObservedOn.String(),
		})
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return 0, fmt.Errorf("failed to write parquet: %w", err)
	}
	return len(rows), nil
}
