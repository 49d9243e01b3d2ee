package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/presupuesto/pkg/application/dto"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// Supported formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// Config holds configuration for output generation
type Config struct {
	Format      string
	OutputDir   string
	Verbose     bool
	ComputeTime time.Duration
}

// Report pairs a computed result with the snapshot it was computed from,
// which supplies names, codes and ordering for display
type Report struct {
	Snapshot *dto.BudgetSnapshot
	Result   *dto.BudgetResult
}

// Generate writes the report in the configured format. Files go to
// OutputDir when set, otherwise everything is written to w.
func Generate(w io.Writer, report Report, config Config) error {
	switch config.Format {
	case "", FormatText:
		return generateTextOutput(w, report, config)
	case FormatJSON:
		return generateEncodedOutput(w, report, config, "json", marshalJSON)
	case FormatYAML:
		return generateEncodedOutput(w, report, config, "yaml", yaml.Marshal)
	case FormatCSV:
		return generateCSVOutput(w, report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(entities.MoneyPlaces)
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, report Report, config Config) error {
	snap, result := report.Snapshot, report.Result

	fmt.Fprintf(w, "📊 Budget %s: %s\n", snap.Budget.ID, snap.Budget.Name)
	fmt.Fprintf(w, "==========================================\n\n")

	fmt.Fprintf(w, "%-12s %-40s %-6s %10s %12s %14s\n",
		"Code", "Description", "Unit", "Quantity", "Unit Price", "Extended")
	fmt.Fprintf(w, "%-12s %-40s %-6s %10s %12s %14s\n",
		"------------", "----------------------------------------", "------",
		"----------", "------------", "--------------")

	tree := newDisplayTree(snap)
	for _, root := range tree.children[""] {
		tree.writeTitle(w, result, root, 0)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-30s %14s\n", "Subtotal", money(result.BudgetSubtotal))
	fmt.Fprintf(w, "%-30s %14s\n", fmt.Sprintf("Tax (%s%%)", snap.Budget.TaxPct), money(result.Tax))
	fmt.Fprintf(w, "%-30s %14s\n", fmt.Sprintf("Profit (%s%%)", snap.Budget.ProfitPct), money(result.Profit))
	fmt.Fprintf(w, "%-30s %14s\n", "Total", money(result.Total))
	fmt.Fprintln(w)

	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "⚠️  Pricing failures:\n")
		for _, f := range result.Failures {
			if f.LineID != "" {
				fmt.Fprintf(w, "  %s line %s: %s\n", f.PartidaID, f.LineID, f.Reason)
			} else {
				fmt.Fprintf(w, "  %s: %s\n", f.PartidaID, f.Reason)
			}
		}
		fmt.Fprintln(w)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💲 Shared prices:\n")
		for _, p := range result.SharedPrices {
			fmt.Fprintf(w, "  %-20s %12s\n", p.ResourceID, money(p.Price))
		}
		fmt.Fprintf(w, "\nCompute Time: %v\n", config.ComputeTime)
	}

	return nil
}

// displayTree indexes titles and partidas for ordered rendering
type displayTree struct {
	children    map[entities.TitleID][]entities.Title
	partidas    map[entities.TitleID][]entities.Partida
	subPartidas map[entities.PartidaID][]entities.Partida
}

func newDisplayTree(snap *dto.BudgetSnapshot) *displayTree {
	t := &displayTree{
		children:    make(map[entities.TitleID][]entities.Title),
		partidas:    make(map[entities.TitleID][]entities.Partida),
		subPartidas: make(map[entities.PartidaID][]entities.Partida),
	}
	for _, title := range snap.Titles {
		t.children[title.ParentID] = append(t.children[title.ParentID], title)
	}
	for _, titles := range t.children {
		sort.SliceStable(titles, func(i, j int) bool { return titles[i].Order < titles[j].Order })
	}
	for _, p := range snap.Partidas {
		if p.IsTopLevel() {
			t.partidas[p.TitleID] = append(t.partidas[p.TitleID], p)
		} else {
			t.subPartidas[p.ParentID] = append(t.subPartidas[p.ParentID], p)
		}
	}
	return t
}

func (t *displayTree) writeTitle(w io.Writer, result *dto.BudgetResult, title entities.Title, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%-66s %12s %14s\n",
		truncate(indent+strings.ToUpper(title.Name), 66), "", money(result.TitleSubtotals[title.ID]))

	for _, p := range t.partidas[title.ID] {
		t.writePartida(w, result, p, depth+1)
	}
	for _, child := range t.children[title.ID] {
		t.writeTitle(w, result, child, depth+1)
	}
}

func (t *displayTree) writePartida(w io.Writer, result *dto.BudgetResult, p entities.Partida, depth int) {
	price := result.PartidaPrices[p.ID]
	fmt.Fprintf(w, "%-12s %-40s %-6s %10s %12s %14s\n",
		truncate(p.Code, 12),
		truncate(strings.Repeat("  ", depth)+p.Description, 40),
		p.Unit,
		p.Quantity.String(),
		money(price.UnitPrice),
		money(price.ExtendedPrice))

	for _, sub := range t.subPartidas[p.ID] {
		t.writePartida(w, result, sub, depth+1)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func marshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// generateEncodedOutput writes the result with a structured encoder
func generateEncodedOutput(w io.Writer, report Report, config Config, ext string, marshal func(interface{}) ([]byte, error)) error {
	data, err := marshal(report.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", strings.ToUpper(ext), err)
	}

	if config.OutputDir == "" {
		_, err := w.Write(append(data, '\n'))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, fmt.Sprintf("%s_costs.%s", report.Result.BudgetID, ext))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", strings.ToUpper(ext), err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 %s results saved to: %s\n", strings.ToUpper(ext), filename)
	}
	return nil
}

// generateCSVOutput writes partida prices and title subtotals. Without an
// output directory only the partida table is written, to w.
func generateCSVOutput(w io.Writer, report Report, config Config) error {
	if config.OutputDir == "" {
		return writePartidasCSV(w, report)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	partidasFile := filepath.Join(config.OutputDir, fmt.Sprintf("%s_partidas.csv", report.Result.BudgetID))
	if err := writeCSVFile(partidasFile, report, writePartidasCSV); err != nil {
		return fmt.Errorf("failed to write partidas CSV: %w", err)
	}

	titlesFile := filepath.Join(config.OutputDir, fmt.Sprintf("%s_titles.csv", report.Result.BudgetID))
	if err := writeCSVFile(titlesFile, report, writeTitlesCSV); err != nil {
		return fmt.Errorf("failed to write titles CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 CSV results saved to:\n")
		fmt.Fprintf(w, "  Partidas: %s\n", partidasFile)
		fmt.Fprintf(w, "  Titles: %s\n", titlesFile)
	}
	return nil
}

func writeCSVFile(filename string, report Report, write func(io.Writer, Report) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePartidasCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"partida_id", "title_id", "parent_id", "code", "description", "unit", "quantity", "unit_price", "extended_price"}); err != nil {
		return err
	}
	for _, p := range report.Snapshot.Partidas {
		price := report.Result.PartidaPrices[p.ID]
		if err := cw.Write([]string{
			string(p.ID),
			string(p.TitleID),
			string(p.ParentID),
			p.Code,
			p.Description,
			p.Unit,
			p.Quantity.String(),
			money(price.UnitPrice),
			money(price.ExtendedPrice),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTitlesCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"title_id", "parent_id", "order", "name", "subtotal"}); err != nil {
		return err
	}
	for _, t := range report.Snapshot.Titles {
		if err := cw.Write([]string{
			string(t.ID),
			string(t.ParentID),
			fmt.Sprint(t.Order),
			t.Name,
			money(report.Result.TitleSubtotals[t.ID]),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
