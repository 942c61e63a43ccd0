package template

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// SamplePreviewGenerator produces synthetic rows matching a fields
// config. Preview output is illustrative only and never touches real
// warehouse data; implementations may be seeded for deterministic tests.
type SamplePreviewGenerator interface {
	Rows(fields []FieldSpec, count int) []map[string]any
}

type sampleGenerator struct {
	rnd *rand.Rand
}

// NewSampleGenerator returns a generator seeded from the clock
func NewSampleGenerator() SamplePreviewGenerator {
	return NewSeededSampleGenerator(time.Now().UnixNano())
}

// NewSeededSampleGenerator returns a deterministic generator for the given seed
func NewSeededSampleGenerator(seed int64) SamplePreviewGenerator {
	return &sampleGenerator{rnd: rand.New(rand.NewSource(seed))}
}

var sampleStatuses = []string{"active", "pending", "completed", "maintenance"}

func (g *sampleGenerator) Rows(fields []FieldSpec, count int) []map[string]any {
	if count <= 0 {
		count = 5
	}
	rows := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		row := make(map[string]any, len(fields))
		for _, f := range fields {
			row[f.Field] = g.value(f, i)
		}
		rows = append(rows, row)
	}
	return rows
}

// value picks a sample by field name substring first, then by type
func (g *sampleGenerator) value(f FieldSpec, i int) any {
	name := strings.ToLower(f.Field)
	switch {
	case strings.Contains(name, "name"):
		return fmt.Sprintf("Zone %c", 'A'+i%26)
	case strings.Contains(name, "sku") || strings.Contains(name, "code"):
		return fmt.Sprintf("SKU-%04d", g.rnd.Intn(10000))
	case strings.Contains(name, "status"):
		return sampleStatuses[g.rnd.Intn(len(sampleStatuses))]
	case strings.Contains(name, "quantity") || strings.Contains(name, "count"):
		return g.rnd.Intn(500)
	case strings.Contains(name, "rate") || strings.Contains(name, "utilization"):
		return float64(g.rnd.Intn(10000)) / 100
	}

	switch f.Type {
	case FieldTypeInteger:
		return g.rnd.Intn(1000)
	case FieldTypeDecimal, FieldTypePercentage:
		return float64(g.rnd.Intn(100000)) / 100
	case FieldTypeCurrency:
		return fmt.Sprintf("%.2f", float64(g.rnd.Intn(1000000))/100)
	case FieldTypeDate:
		return time.Now().AddDate(0, 0, -g.rnd.Intn(30)).Format("2006-01-02")
	case FieldTypeDatetime:
		return time.Now().Add(-time.Duration(g.rnd.Intn(72)) * time.Hour).Format("2006-01-02 15:04:05")
	case FieldTypeBoolean:
		return g.rnd.Intn(2) == 0
	default:
		return fmt.Sprintf("Sample %s %d", f.Label, i+1)
	}
}
