package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/growlab/growlab-cli/internal/dataset"
)

func TestMain(m *testing.M) {
	// Execute() wires this up in production; tests drive rootCmd directly.
	cobra.OnInitialize(loadConfig)
	os.Exit(m.Run())
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	resetFlags()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// resetFlags clears sticky flag state that persists across invocations.
func resetFlags() {
	cfg = nil
	flagDataDir = ""
	if fl := rootCmd.PersistentFlags().Lookup("data-dir"); fl != nil {
		_ = fl.Value.Set("")
		fl.Changed = false
	}
	reportOutputPath = ""
	if fl := reportCmd.Flags().Lookup("output"); fl != nil {
		_ = fl.Value.Set("")
		fl.Changed = false
	}
	exportKind = "growth"
	exportFormat = "xlsx"
	exportOutput = ""
	if f := exportCmd.Flags(); f != nil {
		if fl := f.Lookup("kind"); fl != nil {
			_ = fl.Value.Set("growth")
			fl.Changed = false
		}
		if fl := f.Lookup("format"); fl != nil {
			_ = fl.Value.Set("xlsx")
			fl.Changed = false
		}
		if fl := f.Lookup("output"); fl != nil {
			_ = fl.Value.Set("")
			fl.Changed = false
		}
	}
	chartField = ""
	chartOutput = ""
	sitesWithData = false
	sitesAsJSON = false
}

func tempHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
}

// fixtureDataDir builds a data directory with two sites' environment
// CSVs and a growth workbook covering both.
func fixtureDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	env := "측정시각,온도(℃),습도(%),pH,EC\n" +
		"2024-05-01 09:00,21.5,65,6.1,1.0\n" +
		"2024-05-01 10:00,22.0,63,6.0,1.1\n"
	if err := os.WriteFile(filepath.Join(dir, "한빛중학교_환경데이터.csv"), []byte(env), 0o644); err != nil {
		t.Fatalf("write env csv: %v", err)
	}
	env2 := "측정시각,온도(℃),습도(%),pH,EC\n" +
		"2024-05-01 09:00,20.9,70,5.9,2.0\n"
	if err := os.WriteFile(filepath.Join(dir, "가온중학교_환경데이터.csv"), []byte(env2), 0o644); err != nil {
		t.Fatalf("write env csv: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheets := map[string][][]string{
		"한빛중학교": {
			{"개체번호", "생체중(g)", "잎수", "초장(mm)"},
			{"1", "10", "5", "88"},
			{"2", "12", "6", "91"},
		},
		"가온중학교": {
			{"개체번호", "생체중(g)", "잎수", "초장(mm)"},
			{"1", "20", "7", "102"},
			{"2", "30", "8", "110"},
		},
	}
	for _, sheet := range []string{"한빛중학교", "가온중학교"} {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for i, row := range sheets[sheet] {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			vals := make([]interface{}, len(row))
			for j, v := range row {
				vals[j] = v
			}
			if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}
	if err := f.SaveAs(filepath.Join(dir, "생육데이터.xlsx")); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return dir
}

func TestCLI_ConfigInitAndSet(t *testing.T) {
	tempHome(t)

	runCmd(t, "config", "init")
	cfgPath := filepath.Join(os.Getenv("HOME"), ".growlab", "config.yaml")
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config init wrote nothing: %v", err)
	}

	runCmd(t, "sites")
	runCmd(t, "sites", "--json")

	runCmd(t, "config", "set", "data_dir", "/srv/growlab/data")
	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), "data_dir: /srv/growlab/data") {
		t.Fatalf("config set not persisted:\n%s", b)
	}
	if !strings.Contains(string(b), "한빛중학교") {
		t.Fatalf("default sites missing from config:\n%s", b)
	}

	// Unknown keys must not touch the file.
	resetFlags()
	rootCmd.SetArgs([]string{"config", "set", "nope", "1"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for unknown config key")
	}
}

func TestCLI_LoadAndReport(t *testing.T) {
	tempHome(t)
	dir := fixtureDataDir(t)

	runCmd(t, "load", "--data-dir", dir)

	out := filepath.Join(t.TempDir(), "report.md")
	runCmd(t, "report", "--data-dir", dir, "--output", out)

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(b)
	if !strings.Contains(md, "[OPTIMAL CONDUCTIVITY]") {
		t.Fatalf("report missing optimal section:\n%s", md)
	}
	if !strings.Contains(md, "가온중학교") || !strings.Contains(md, "EC 2 dS/m") {
		t.Fatalf("report should name the winning site and its conductivity:\n%s", md)
	}
}

func TestCLI_ReportFailsWithoutWorkbook(t *testing.T) {
	tempHome(t)
	dir := t.TempDir()
	env := "측정시각,온도(℃)\n2024-05-01 09:00,21.5\n"
	if err := os.WriteFile(filepath.Join(dir, "한빛중학교_환경데이터.csv"), []byte(env), 0o644); err != nil {
		t.Fatalf("write env csv: %v", err)
	}

	resetFlags()
	rootCmd.SetArgs([]string{"report", "--data-dir", dir})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected report to fail without the growth workbook")
	}
	if !errors.Is(err, dataset.ErrWorkbookNotFound) {
		t.Fatalf("error = %v, want ErrWorkbookNotFound", err)
	}
}

func TestCLI_ExportSiteTable(t *testing.T) {
	tempHome(t)
	dir := fixtureDataDir(t)
	outDir := t.TempDir()

	// Site by id, workbook data, explicit xlsx path.
	xlsxPath := filepath.Join(outDir, "hanbit.xlsx")
	runCmd(t, "export", "hanbit", "--data-dir", dir, "--output", xlsxPath)
	wb, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows("한빛중학교")
	if err != nil {
		t.Fatalf("read exported sheet: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "생체중(g)" {
		t.Fatalf("exported rows = %v", rows)
	}

	// Site by Korean name, environment data as CSV.
	csvPath := filepath.Join(outDir, "env.csv")
	runCmd(t, "export", "한빛중학교", "--data-dir", dir, "--kind", "environment", "--output", csvPath)
	b, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(b, []byte{0xef, 0xbb, 0xbf}) {
		t.Fatal("CSV export should start with a BOM")
	}
	if !strings.Contains(string(b), "온도(℃)") {
		t.Fatalf("exported CSV lost headers:\n%s", b)
	}

	// Unknown site fails.
	resetFlags()
	rootCmd.SetArgs([]string{"export", "nowhere", "--data-dir", dir})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for unknown site")
	}
}

func TestCLI_ChartWritesPNG(t *testing.T) {
	tempHome(t)
	dir := fixtureDataDir(t)

	out := filepath.Join(t.TempDir(), "growth.png")
	runCmd(t, "chart", "growth", "--data-dir", dir, "--output", out)
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(b, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatal("chart output is not a PNG")
	}

	resetFlags()
	rootCmd.SetArgs([]string{"chart", "sideways", "--data-dir", dir})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for unknown chart view")
	}
}
