package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
)

// Scenario file names inside a scenario directory
const (
	BudgetFile        = "budget.csv"
	TitlesFile        = "titles.csv"
	PartidasFile      = "partidas.csv"
	APUsFile          = "apus.csv"
	ResourceLinesFile = "resource_lines.csv"
	SharedPricesFile  = "shared_prices.csv"
)

var (
	budgetHeader       = []string{"id", "name", "tax_pct", "profit_pct"}
	titlesHeader       = []string{"id", "parent_id", "order", "name"}
	partidasHeader     = []string{"id", "title_id", "parent_id", "code", "description", "unit", "quantity"}
	apusHeader         = []string{"partida_id", "yield", "shift_length"}
	linesHeader        = []string{"partida_id", "line_id", "kind", "resource_id", "nested_partida_id", "unit", "quantity", "crew_size", "waste_pct", "price", "override", "override_price"}
	sharedPricesHeader = []string{"price_id", "resource_id", "price"}
)

// Scenario is one budget as read from a directory of CSV files
type Scenario struct {
	Budget       *entities.Budget
	Titles       []*entities.Title
	Partidas     []*entities.Partida
	APUs         []*entities.APU
	SharedPrices []entities.SharedPrice
}

// Store persists every part of the scenario
func (s *Scenario) Store(ctx context.Context, store repositories.Store) error {
	if err := store.SaveBudget(ctx, s.Budget); err != nil {
		return fmt.Errorf("failed to save budget %s: %w", s.Budget.ID, err)
	}
	for _, t := range s.Titles {
		if err := store.SaveTitle(ctx, t); err != nil {
			return fmt.Errorf("failed to save title %s: %w", t.ID, err)
		}
	}
	for _, p := range s.Partidas {
		if err := store.SavePartida(ctx, p); err != nil {
			return fmt.Errorf("failed to save partida %s: %w", p.ID, err)
		}
	}
	for _, a := range s.APUs {
		if err := store.SaveAPU(ctx, s.Budget.ID, a); err != nil {
			return fmt.Errorf("failed to save APU %s: %w", a.PartidaID, err)
		}
	}
	if len(s.SharedPrices) > 0 {
		if err := store.SaveSharedPrices(ctx, s.Budget.ID, s.SharedPrices); err != nil {
			return fmt.Errorf("failed to save shared prices: %w", err)
		}
	}
	return nil
}

// LoaderConfig holds the percentages used when budget.csv leaves a cell empty
type LoaderConfig struct {
	DefaultTaxPct    decimal.Decimal
	DefaultProfitPct decimal.Decimal
}

// Loader handles loading budget scenarios from CSV files
type Loader struct {
	config LoaderConfig
}

// NewLoader creates a new CSV loader; empty percentages read as zero
func NewLoader() *Loader {
	return NewLoaderWithConfig(LoaderConfig{})
}

// NewLoaderWithConfig creates a CSV loader with default budget percentages
func NewLoaderWithConfig(config LoaderConfig) *Loader {
	return &Loader{config: config}
}

// LoadScenario reads every file of a scenario directory.
// shared_prices.csv is optional; the others are required.
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	budget, err := l.LoadBudget(filepath.Join(dir, BudgetFile))
	if err != nil {
		return nil, err
	}

	titles, err := l.LoadTitles(filepath.Join(dir, TitlesFile), budget.ID)
	if err != nil {
		return nil, err
	}

	partidas, err := l.LoadPartidas(filepath.Join(dir, PartidasFile), budget.ID)
	if err != nil {
		return nil, err
	}

	apus, err := l.LoadAPUs(filepath.Join(dir, APUsFile), filepath.Join(dir, ResourceLinesFile))
	if err != nil {
		return nil, err
	}

	prices, err := l.LoadSharedPrices(filepath.Join(dir, SharedPricesFile), budget.ID)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Scenario{
		Budget:       budget,
		Titles:       titles,
		Partidas:     partidas,
		APUs:         apus,
		SharedPrices: prices,
	}, nil
}

// LoadBudget loads the single budget header row
func (l *Loader) LoadBudget(filename string) (*entities.Budget, error) {
	records, err := readRecords(filename, "budget", budgetHeader)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("budget CSV must have exactly one data row, got %d", len(records))
	}

	record := records[0]
	taxPct, err := parseDecimalOr("tax_pct", record[2], l.config.DefaultTaxPct)
	if err != nil {
		return nil, fmt.Errorf("budget CSV row 2: %w", err)
	}
	profitPct, err := parseDecimalOr("profit_pct", record[3], l.config.DefaultProfitPct)
	if err != nil {
		return nil, fmt.Errorf("budget CSV row 2: %w", err)
	}

	budget, err := entities.NewBudget(entities.BudgetID(record[0]), record[1], taxPct, profitPct)
	if err != nil {
		return nil, fmt.Errorf("budget CSV row 2: %w", err)
	}
	return budget, nil
}

// LoadTitles loads the title tree of a budget
func (l *Loader) LoadTitles(filename string, budgetID entities.BudgetID) ([]*entities.Title, error) {
	records, err := readRecords(filename, "titles", titlesHeader)
	if err != nil {
		return nil, err
	}

	var titles []*entities.Title
	for i, record := range records {
		order, err := strconv.Atoi(defaultString(record[2], "0"))
		if err != nil {
			return nil, fmt.Errorf("titles CSV row %d: invalid order: %s", i+2, record[2])
		}

		title, err := entities.NewTitle(entities.TitleID(record[0]), budgetID, entities.TitleID(record[1]), order, record[3])
		if err != nil {
			return nil, fmt.Errorf("titles CSV row %d: %w", i+2, err)
		}
		titles = append(titles, title)
	}

	return titles, nil
}

// LoadPartidas loads the partidas of a budget
func (l *Loader) LoadPartidas(filename string, budgetID entities.BudgetID) ([]*entities.Partida, error) {
	records, err := readRecords(filename, "partidas", partidasHeader)
	if err != nil {
		return nil, err
	}

	var partidas []*entities.Partida
	for i, record := range records {
		quantity, err := parseDecimal("quantity", record[6])
		if err != nil {
			return nil, fmt.Errorf("partidas CSV row %d: %w", i+2, err)
		}

		partida, err := entities.NewPartida(
			entities.PartidaID(record[0]),
			budgetID,
			entities.TitleID(record[1]),
			entities.PartidaID(record[2]),
			record[5],
			quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("partidas CSV row %d: %w", i+2, err)
		}
		partida.Code = record[3]
		partida.Description = record[4]

		partidas = append(partidas, partida)
	}

	return partidas, nil
}

// LoadAPUs loads analysis headers and attaches their resource lines in file order
func (l *Loader) LoadAPUs(apusFile, linesFile string) ([]*entities.APU, error) {
	records, err := readRecords(apusFile, "apus", apusHeader)
	if err != nil {
		return nil, err
	}

	var apus []*entities.APU
	byPartida := make(map[entities.PartidaID]*entities.APU, len(records))
	for i, record := range records {
		partidaID := entities.PartidaID(record[0])
		if _, exists := byPartida[partidaID]; exists {
			return nil, fmt.Errorf("apus CSV row %d: duplicate APU for partida %s", i+2, partidaID)
		}

		yield, err := parseDecimal("yield", record[1])
		if err != nil {
			return nil, fmt.Errorf("apus CSV row %d: %w", i+2, err)
		}
		shift, err := parseDecimal("shift_length", record[2])
		if err != nil {
			return nil, fmt.Errorf("apus CSV row %d: %w", i+2, err)
		}

		apu := &entities.APU{PartidaID: partidaID, Yield: yield, ShiftLength: shift}
		byPartida[partidaID] = apu
		apus = append(apus, apu)
	}

	lines, err := readRecords(linesFile, "resource lines", linesHeader)
	if err != nil {
		return nil, err
	}

	for i, record := range lines {
		apu, exists := byPartida[entities.PartidaID(record[0])]
		if !exists {
			return nil, fmt.Errorf("resource lines CSV row %d: partida %s has no APU row", i+2, record[0])
		}

		line, err := parseResourceLine(record)
		if err != nil {
			return nil, fmt.Errorf("resource lines CSV row %d: %w", i+2, err)
		}
		if apu.Line(line.ID) >= 0 {
			return nil, fmt.Errorf("resource lines CSV row %d: duplicate line %s in partida %s", i+2, line.ID, apu.PartidaID)
		}

		apu.Lines = append(apu.Lines, line)
	}

	return apus, nil
}

// LoadSharedPrices loads the stored price catalog of a budget
func (l *Loader) LoadSharedPrices(filename string, budgetID entities.BudgetID) ([]entities.SharedPrice, error) {
	records, err := readRecords(filename, "shared prices", sharedPricesHeader)
	if err != nil {
		return nil, err
	}

	var prices []entities.SharedPrice
	for i, record := range records {
		price, err := parseDecimal("price", record[2])
		if err != nil {
			return nil, fmt.Errorf("shared prices CSV row %d: %w", i+2, err)
		}
		if record[1] == "" {
			return nil, fmt.Errorf("shared prices CSV row %d: resource_id cannot be empty", i+2)
		}

		prices = append(prices, entities.SharedPrice{
			ID:         entities.PriceID(record[0]),
			BudgetID:   budgetID,
			ResourceID: entities.ResourceID(record[1]),
			Price:      price,
		})
	}

	return prices, nil
}

// Helper functions for parsing CSV records

// readRecords opens a CSV file, validates its header and returns the data rows.
// A missing file is reported wrapping fs.ErrNotExist.
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
		for j := range record {
			record[j] = strings.TrimSpace(record[j])
		}
	}

	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseResourceLine(record []string) (entities.ResourceLine, error) {
	kind, err := entities.ParseResourceKind(defaultString(record[2], "MATERIAL"))
	if err != nil {
		return entities.ResourceLine{}, err
	}

	columns := []struct {
		name  string
		index int
	}{
		{"quantity", 6}, {"crew_size", 7}, {"waste_pct", 8}, {"price", 9}, {"override_price", 11},
	}
	values := make([]decimal.Decimal, len(columns))
	for i, col := range columns {
		values[i], err = parseDecimal(col.name, record[col.index])
		if err != nil {
			return entities.ResourceLine{}, err
		}
		if values[i].IsNegative() {
			return entities.ResourceLine{}, fmt.Errorf("%s cannot be negative, got %s", col.name, values[i])
		}
	}

	override := false
	if record[10] != "" {
		override, err = strconv.ParseBool(record[10])
		if err != nil {
			return entities.ResourceLine{}, fmt.Errorf("invalid override: %s", record[10])
		}
	}

	if record[1] == "" {
		return entities.ResourceLine{}, fmt.Errorf("line_id cannot be empty")
	}
	if record[3] != "" && record[4] != "" {
		return entities.ResourceLine{}, fmt.Errorf("line %s cannot reference both a resource and a nested partida", record[1])
	}

	return entities.ResourceLine{
		ID:              entities.LineID(record[1]),
		Kind:            kind,
		ResourceID:      entities.ResourceID(record[3]),
		NestedPartidaID: entities.PartidaID(record[4]),
		Unit:            record[5],
		Quantity:        entities.TruncQuantity(values[0]),
		CrewSize:        entities.TruncQuantity(values[1]),
		WastePct:        values[2],
		Price:           values[3],
		Override:        override,
		OverridePrice:   values[4],
	}, nil
}

// parseDecimal parses a decimal column; an empty cell reads as zero
func parseDecimal(field, s string) (decimal.Decimal, error) {
	return parseDecimalOr(field, s, decimal.Zero)
}

func parseDecimalOr(field, s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", field, s)
	}
	return d, nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
