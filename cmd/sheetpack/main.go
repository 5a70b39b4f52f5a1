// Package main provides the CLI entry point for sheetpack.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danmolnar/sheetpack/pkg/sheetpack"
	"github.com/danmolnar/sheetpack/pkg/sheetpack/models"
	"github.com/danmolnar/sheetpack/pkg/sheetpack/output"
)

var (
	sheetFlag  string
	allSheets  bool
	format     string
	pretty     bool
	outputPath string
	fromPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetpack",
		Short: "Read and write Excel workbooks through their packaged XML",
		Long: `sheetpack reads worksheet data out of xlsx/xlsm workbooks and writes
modified data back, working directly on the ZIP+XML package.`,
		SilenceUsage: true,
	}

	infoCmd := &cobra.Command{
		Use:   "info [file.xlsx]",
		Short: "Show workbook properties and the sheet list",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	readCmd := &cobra.Command{
		Use:   "read [file.xlsx]",
		Short: "Dump sheet content as JSON or CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
	readCmd.Flags().StringVarP(&sheetFlag, "sheet", "s", "0", "Sheet name or 0-based index")
	readCmd.Flags().BoolVar(&allSheets, "all", false, "Dump every sheet (JSON only)")
	readCmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, csv")
	readCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	readCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")

	writeCmd := &cobra.Command{
		Use:   "write [file.xlsx]",
		Short: "Replace a sheet's content from a CSV or JSON table",
		Args:  cobra.ExactArgs(1),
		RunE:  runWrite,
	}
	writeCmd.Flags().StringVarP(&sheetFlag, "sheet", "s", "0", "Sheet name or 0-based index")
	writeCmd.Flags().StringVar(&fromPath, "from", "", "Input table file (.csv or .json)")
	writeCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(infoCmd, readCmd, writeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	wb, err := sheetpack.Open(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	label := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("%s %s\n", label("Book:"), filepath.Base(wb.Path()))
	if v := wb.AppVersion(); v != "" {
		fmt.Printf("%s %s\n", label("App version:"), v)
	}
	if m := wb.Modified(); !m.IsZero() {
		fmt.Printf("%s %s\n", label("Modified:"), m.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("%s\n", label("Sheets:"))
	for i, name := range wb.SheetNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

func runRead(cmd *cobra.Command, args []string) error {
	wb, err := sheetpack.Open(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	var data []byte
	switch {
	case allSheets:
		if format != "json" {
			return fmt.Errorf("--all supports the json format only")
		}
		sheets, err := wb.ReadAll()
		if err != nil {
			return err
		}
		data, err = output.WorkbookToJSON(filepath.Base(wb.Path()), sheets, pretty)
		if err != nil {
			return err
		}
	default:
		sheet, err := readSelectedSheet(wb)
		if err != nil {
			return err
		}
		switch format {
		case "json":
			data, err = output.SheetToJSON(sheet, pretty)
			if err != nil {
				return err
			}
		case "csv":
			var sb strings.Builder
			if err := output.WriteCSV(&sb, sheet.Table); err != nil {
				return err
			}
			data = []byte(sb.String())
		default:
			return fmt.Errorf("invalid format: %s (must be json or csv)", format)
		}
	}

	if outputPath != "" {
		return os.WriteFile(outputPath, data, 0644)
	}
	fmt.Println(string(data))
	return nil
}

func runWrite(cmd *cobra.Command, args []string) error {
	table, err := loadTable(fromPath)
	if err != nil {
		return fmt.Errorf("load table: %w", err)
	}

	wb, err := sheetpack.Open(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	if i, ok := sheetIndex(sheetFlag); ok {
		err = wb.UploadSheetAt(i, table)
	} else {
		err = wb.UploadSheet(sheetFlag, table)
	}
	if err != nil {
		return err
	}

	rows, cols := table.Dims()
	fmt.Printf("wrote %dx%d table to %s\n", rows, cols, args[0])
	return nil
}

// readSelectedSheet resolves the --sheet flag as an index or a name.
func readSelectedSheet(wb *sheetpack.Workbook) (*models.Sheet, error) {
	if i, ok := sheetIndex(sheetFlag); ok {
		return wb.ReadSheetAt(i)
	}
	return wb.ReadSheet(sheetFlag)
}

func sheetIndex(flag string) (int, bool) {
	i, err := strconv.Atoi(flag)
	return i, err == nil
}

// loadTable reads a CSV or JSON table file, picked by extension.
func loadTable(path string) (models.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return output.ReadCSV(f)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return output.ReadTableJSON(data)
	default:
		return nil, fmt.Errorf("unsupported table format %q (use .csv or .json)", filepath.Ext(path))
	}
}
