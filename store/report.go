package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	reportHeader    = "========== CLOTHING ANALYSIS RESULTS =========="
	reportRule      = "=========================================="
	reportSeparator = "------------------------------------------"
)

var processTypes = map[string]string{
	"process":   "ProcessFramework",
	"groupchat": "GroupChat",
	"advanced":  "AdvancedProcessFramework",
}

// ProcessType returns the report name of a run mode. Unknown modes are
// returned unchanged.
func ProcessType(mode string) string {
	if p, ok := processTypes[mode]; ok {
		return p
	}
	return mode
}

// WriteReport writes r in the plain text report format.
func WriteReport(w io.Writer, r Record) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, reportHeader)
	fmt.Fprintf(bw, "Category: %s\n", r.Category)
	fmt.Fprintf(bw, "Process Type: %s\n", ProcessType(r.Mode))
	fmt.Fprintf(bw, "Date: %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Execution Time: %.2f seconds\n", r.Duration.Seconds())
	if r.Reason != "" {
		fmt.Fprintf(bw, "Termination: %s\n", r.Reason)
	}
	fmt.Fprintln(bw, reportRule)
	fmt.Fprintln(bw)

	for _, e := range r.Results {
		fmt.Fprintf(bw, "[%s]\n", e.Label)
		fmt.Fprintln(bw, e.Content)
		fmt.Fprintln(bw, reportSeparator)
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// ReportFileName returns "{category}_{processType}_{yyyyMMdd_HHmmss}.txt".
func ReportFileName(r Record) string {
	return fmt.Sprintf("%s_%s_%s.txt", r.Category, ProcessType(r.Mode), r.StartedAt.Format("20060102_150405"))
}

// SaveReport writes the report for r into dir, creating it if needed, and
// returns the file path.
func SaveReport(dir string, r Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("store: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, ReportFileName(r))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("store: create %s: %w", path, err)
	}
	if err := WriteReport(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("store: close %s: %w", path, err)
	}
	return path, nil
}
