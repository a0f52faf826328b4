package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"

	"github.com/fatih/color"
)

var (
	ok    = color.New(color.FgGreen, color.Bold)
	faint = color.New(color.Faint)

	riskColors = map[string]*color.Color{
		"green":  color.New(color.FgGreen),
		"yellow": color.New(color.FgYellow),
		"red":    color.New(color.FgRed, color.Bold),
	}
)

// RiskLabel renders a website risk category in its dashboard colour.
// Unknown categories print plain.
func RiskLabel(c domain.RiskCategory) string {
	if col, found := riskColors[c.Color()]; found {
		return col.Sprint(c.Label())
	}
	return c.Label()
}

// LevelLabel renders a business risk level with the same palette.
func LevelLabel(l domain.RiskLevel) string {
	switch l {
	case domain.RiskLevelLow:
		return riskColors["green"].Sprint(l)
	case domain.RiskLevelMedium:
		return riskColors["yellow"].Sprint(l)
	case domain.RiskLevelHigh:
		return riskColors["red"].Sprint(l)
	}
	if l == "" {
		return "-"
	}
	return string(l)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *app) printAssessment(as *domain.Assessment) error {
	if a.json {
		return a.printJSON(as)
	}
	a.printf("Assessment #%d  %s (%s)\n", as.ID, as.Website, as.CountryCode)
	a.printf("  status:   %s\n", as.Status)
	if as.RiskCategory != "" {
		a.printf("  risk:     %s\n", RiskLabel(as.RiskCategory))
	}
	if as.RiskScore != nil {
		a.printf("  score:    %.1f\n", *as.RiskScore)
	}
	if !as.UpdatedAt.IsZero() {
		a.printf("  updated:  %s\n", faint.Sprint(as.UpdatedAt.Format(time.RFC3339)))
	}
	return nil
}

func (a *app) printBusinessRisk(b *domain.BusinessRiskAssessment) error {
	if a.json {
		return a.printJSON(b)
	}
	a.printf("%s  %s (%s)\n", b.ID, b.BusinessName, b.Domain)
	a.printf("  type:     %s\n", b.AssessmentType)
	a.printf("  status:   %s\n", b.Status)
	a.printf("  risk:     %s  score %.1f\n", LevelLabel(b.RiskLevel), b.RiskScore)
	if b.Status == domain.BusinessRiskCompleted {
		a.printf("  findings: %d critical, %d warnings, %d recommendations\n",
			b.Findings.CriticalIssues, b.Findings.Warnings, b.Findings.Recommendations)
	}
	return nil
}

// saveDownload writes dl to out, or to its own file name when out is empty.
func (a *app) saveDownload(dl *domain.Download, out string) error {
	if out == "" {
		out = filepath.Base(dl.Filename)
	}
	if err := os.WriteFile(out, dl.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	a.printf("%s %s (%d bytes)\n", ok.Sprint("saved"), out, len(dl.Data))
	return nil
}
