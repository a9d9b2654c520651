// package formatter provides functions to export account data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
)

// ExportToCSV converts an account export's subscriptions to CSV format with a single Name column
func ExportToCSV(export *models.AccountExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, sub := range export.Subreddits {
		if err := writer.Write([]string{sub.Name}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// MultiredditsToCSV converts an account export's multireddits to CSV format with
// columns: Name, Slug, Visibility, Subreddits. Member subreddits are joined with ";"
func MultiredditsToCSV(export *models.AccountExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Slug", "Visibility", "Subreddits"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, multi := range export.Multireddits {
		record := []string{
			multi.Name,
			multi.Slug(),
			string(multi.Visibility),
			strings.Join(subredditNames(multi.Subreddits), ";"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an account export to Markdown format
func ExportToMarkdown(export *models.AccountExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# u/%s\n\n", export.Account))

	buf.WriteString(fmt.Sprintf("**Exported**: %s\n", export.ExportedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Subscriptions**: %d\n", len(export.Subreddits)))
	buf.WriteString(fmt.Sprintf("**Multireddits**: %d\n\n", len(export.Multireddits)))

	buf.WriteString("## Subscriptions\n\n")
	for i, sub := range export.Subreddits {
		buf.WriteString(fmt.Sprintf("%d. r/%s\n", i+1, sub.Name))
	}

	if len(export.Multireddits) > 0 {
		buf.WriteString("\n## Multireddits\n")
		for _, multi := range export.Multireddits {
			buf.WriteString(fmt.Sprintf("\n### %s\n\n", multi.Name))
			buf.WriteString(fmt.Sprintf("**Visibility**: %s\n\n", multi.Visibility))
			for _, sub := range multi.Subreddits {
				buf.WriteString(fmt.Sprintf("- r/%s\n", sub.Name))
			}
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts an account export to plain text format
func ExportToText(export *models.AccountExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Account: %s\n", export.Account))
	buf.WriteString(fmt.Sprintf("Exported: %s\n", export.ExportedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("Subscriptions: %d\n\n", len(export.Subreddits)))

	for i, sub := range export.Subreddits {
		buf.WriteString(fmt.Sprintf("%d. r/%s\n", i+1, sub.Name))
	}

	if len(export.Multireddits) > 0 {
		buf.WriteString(fmt.Sprintf("\nMultireddits: %d\n\n", len(export.Multireddits)))
		for i, multi := range export.Multireddits {
			members := strings.Join(subredditNames(multi.Subreddits), ", ")
			buf.WriteString(fmt.Sprintf("%d. %s (%s): %s\n", i+1, multi.Name, multi.Visibility, members))
		}
	}

	return buf.Bytes(), nil
}

func subredditNames(subs []models.Subreddit) []string {
	names := make([]string, len(subs))
	for i, sub := range subs {
		names[i] = "r/" + sub.Name
	}
	return names
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SubredditsFile   string
	MultiredditsFile string
}

// WriteCSVExport exports an account to CSV format as a pair of files.
//
// Defaults to the account name as the base filename & creates
// {base}_subreddits.csv and {base}_multireddits.csv
func WriteCSVExport(export *models.AccountExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Account
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	subredditsFile := baseFilepath + "_subreddits.csv"
	if err := os.WriteFile(subredditsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	multiData, err := MultiredditsToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate multireddit CSV: %w", err)
	}

	multiredditsFile := baseFilepath + "_multireddits.csv"
	if err := os.WriteFile(multiredditsFile, multiData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write multireddit CSV file: %w", err)
	}

	return &CSVExportResult{
		SubredditsFile:   subredditsFile,
		MultiredditsFile: multiredditsFile,
	}, nil
}

// WriteMarkdownExport exports an account to a single Markdown file.
//
// Defaults to {account}_export.md as the filename.
func WriteMarkdownExport(export *models.AccountExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_export.md", export.Account)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports an account to plain text format.
//
// Defaults to {account}_export.txt as the filename.
func WriteTextExport(export *models.AccountExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_export.txt", export.Account)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
