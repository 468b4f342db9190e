// seed_tiers genera la migración SQL de la tabla de comisiones escalonadas a partir de un YAML.
//
// Uso: go run ./cmd/seed_tiers [--in config/commission_tiers.yaml] [--charset latin1]
// Escribe: internal/infrastructure/postgres/migrations/002_seed_commission_tiers.sql
//
// La migración desactiva los tramos vigentes e inserta los nuevos en una sola transacción.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/kpi"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

type schedule struct {
	Tiers []tierSpec `yaml:"tiers"`
}

type tierSpec struct {
	Level      int    `yaml:"level"`
	Min        string `yaml:"min"`
	Max        string `yaml:"max"` // vacío = sin tope
	Percentage string `yaml:"percentage"`
}

func main() {
	in := pflag.String("in", filepath.Join("config", "commission_tiers.yaml"), "archivo YAML con los tramos")
	out := pflag.String("out", "", "archivo SQL de salida (por defecto en migrations/)")
	charset := pflag.String("charset", "utf-8", "codificación del YAML: utf-8 | latin1")
	pflag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir YAML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(*charset, "latin1") || strings.EqualFold(*charset, "ISO-8859-1") {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}

	tiers, err := parseSchedule(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tabla de comisiones: %v\n", err)
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_commission_tiers.sql")
	}
	ids := make([]string, len(tiers))
	for i := range ids {
		ids[i] = uuid.New().String()
	}
	if err := os.WriteFile(outPath, []byte(buildSQL(tiers, ids, *in)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir archivo: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d tramos\n", outPath, len(tiers))
}

// parseSchedule decodifica el YAML y valida la tabla (rangos, porcentajes, solapamientos).
func parseSchedule(r io.Reader) ([]entity.CommissionTier, error) {
	var s schedule
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decodificar YAML: %w", err)
	}
	if len(s.Tiers) == 0 {
		return nil, fmt.Errorf("el archivo no define tramos")
	}
	tiers := make([]entity.CommissionTier, 0, len(s.Tiers))
	for _, t := range s.Tiers {
		minAmt, err := decimal.NewFromString(strings.TrimSpace(t.Min))
		if err != nil {
			return nil, fmt.Errorf("tramo %d min: %w", t.Level, err)
		}
		pct, err := decimal.NewFromString(strings.TrimSpace(t.Percentage))
		if err != nil {
			return nil, fmt.Errorf("tramo %d percentage: %w", t.Level, err)
		}
		tier := entity.CommissionTier{MinAmount: minAmt, Percentage: pct, TierLevel: t.Level, IsActive: true}
		if m := strings.TrimSpace(t.Max); m != "" {
			maxAmt, err := decimal.NewFromString(m)
			if err != nil {
				return nil, fmt.Errorf("tramo %d max: %w", t.Level, err)
			}
			tier.MaxAmount = &maxAmt
		}
		tiers = append(tiers, tier)
	}
	if err := kpi.ValidateTierSchedule(tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// buildSQL genera la migración; ids[i] es el UUID del tramo i.
func buildSQL(tiers []entity.CommissionTier, ids []string, source string) string {
	var b strings.Builder
	b.WriteString("-- Tabla de comisiones escalonadas\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", filepath.Base(source))
	b.WriteString("BEGIN;\n\n")
	b.WriteString("UPDATE commission_tiers SET is_active = false, updated_at = now() WHERE is_active;\n\n")
	b.WriteString("INSERT INTO commission_tiers (id, min_amount, max_amount, percentage, tier_level, is_active) VALUES\n")
	for i, t := range tiers {
		maxAmt := "NULL"
		if t.MaxAmount != nil {
			maxAmt = t.MaxAmount.String()
		}
		sep := ","
		if i == len(tiers)-1 {
			sep = ";"
		}
		fmt.Fprintf(&b, "  ('%s', %s, %s, %s, %d, true)%s\n", ids[i], t.MinAmount, maxAmt, t.Percentage, t.TierLevel, sep)
	}
	b.WriteString("\nCOMMIT;\n")
	return b.String()
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
