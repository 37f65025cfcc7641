package utils

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xte", "a.XML", "c.txt", "d.xte"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.xte"), 0755); err != nil {
		t.Fatal(err)
	}

	fm := NewFileManager(dir, "", "")
	files, err := fm.DiscoverInputFiles(".xte", ".xml")
	if err != nil {
		t.Fatalf("DiscoverInputFiles() error = %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if got := strings.Join(names, ","); got != "a.XML,b.xte,d.xte" {
		t.Errorf("DiscoverInputFiles() = %s, want a.XML,b.xte,d.xte", got)
	}
}

func TestWriteOutputFileAndZip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "saida")
	fm := NewFileManager("", out, "")
	if err := fm.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error = %v", err)
	}

	path, err := fm.WriteOutputFile("lote.xte", []byte("<a/>"))
	if err != nil {
		t.Fatalf("WriteOutputFile() error = %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "<a/>" {
		t.Errorf("written content = %q", data)
	}

	archive, err := fm.WriteZip("xte.zip", []ZipEntry{{Name: "a.xte", Data: []byte("A")}, {Name: "b.xte", Data: []byte("B")}})
	if err != nil {
		t.Fatalf("WriteZip() error = %v", err)
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 || zr.File[0].Name != "a.xte" || zr.File[1].Name != "b.xte" {
		t.Fatalf("archive entries = %v", zr.File)
	}
	rc, err := zr.File[1].Open()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "B" {
		t.Errorf("entry content = %q", data)
	}

	entries, _ := os.ReadDir(out)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	uuidPattern := regexp.MustCompile(`^tabela_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.xlsx$`)
	if got := GenerateOutputFileName("tabela_{uuid}", ".xlsx", nil); !uuidPattern.MatchString(got) {
		t.Errorf("uuid name = %s", got)
	}

	today := time.Now().Format("20060102")
	got := GenerateOutputFileName("lote_{lote}_{date}.csv", ".csv", map[string]string{"lote": "1001"})
	if got != "lote_1001_"+today+".csv" {
		t.Errorf("name = %s", got)
	}

	a := GenerateOutputFileName("{uuid}_{uuid}", "", nil)
	parts := strings.Split(a, "_")
	if len(parts) != 2 || parts[0] == parts[1] {
		t.Errorf("each {uuid} should be distinct, got %s", a)
	}
}

func TestWriteLogs(t *testing.T) {
	dir := t.TempDir()

	if path, err := WriteErrorLog(nil, dir); err != nil || path != "" {
		t.Errorf("WriteErrorLog(nil) = %q, %v", path, err)
	}

	path, err := WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "quebrado.xte",
		ErrorType:    "parse",
		ErrorMessage: "unexpected EOF",
		RowNumber:    3,
	}}, dir)
	if err != nil {
		t.Fatalf("WriteErrorLog() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	for _, want := range []string{"Total Errors: 1", "quebrado.xte", "Row Number:     3"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("error log missing %q", want)
		}
	}

	summary := NewProcessingSummary("decode")
	summary.EndTime = summary.StartTime.Add(time.Second)
	summary.TotalFiles = 2
	summary.FailedFilesList = []FailedFileInfo{{InputFile: "quebrado.xte", ErrorMessage: "unexpected EOF"}}

	path, err = WriteSummaryLog(summary, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog() error = %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "decode_summary_") {
		t.Errorf("summary path = %s", path)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), summary.RunID) || !strings.Contains(string(data), "Failed Files:") {
		t.Errorf("summary content:\n%s", data)
	}
}
