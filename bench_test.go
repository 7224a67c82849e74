package reslib

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/reslib/internal/testutil"
)

type benchMetric struct {
	name  string
	value float64
}

func reportMetrics(b *testing.B, metrics ...benchMetric) {
	b.Helper()
	for _, m := range metrics {
		b.ReportMetric(m.value, m.name)
	}
}

// benchFiles returns count resources of size bytes each. Half of every
// payload is random so compression ratios stay realistic.
func benchFiles(count, size int) map[string][]byte {
	files := make(map[string][]byte, count)
	for i := range count {
		data := testutil.RandomBytes(size/2, uint64(i))
		data = append(data, make([]byte, size-len(data))...)
		files[fmt.Sprintf("res/%05d.bin", i)] = data
	}
	return files
}

func BenchmarkFlush(b *testing.B) {
	files := benchFiles(64, 64<<10)
	stage := stageFiles(b, files)
	total := int64(64 * (64 << 10))

	for _, tier := range []Tier{TierFastest, TierNormal, TierUltra} {
		b.Run(tier.String(), func(b *testing.B) {
			b.SetBytes(total)
			b.ReportAllocs()
			var written int64
			for b.Loop() {
				buf := testutil.NewBuffer(nil)
				n, err := Flush(context.Background(), stage, buf, tier)
				require.NoError(b, err)
				written = n
			}
			reportMetrics(b, benchMetric{name: "ratio", value: float64(written) / float64(total)})
		})
	}
}

func BenchmarkRead(b *testing.B) {
	files := benchFiles(256, 16<<10)
	r := openTestArchive(b, files, TierNormal)
	paths := r.List()

	b.SetBytes(16 << 10)
	b.ReportAllocs()
	i := 0
	for b.Loop() {
		_, err := r.Read(paths[i%len(paths)])
		if err != nil {
			b.Fatal(err)
		}
		i++
	}
}

func BenchmarkOpen(b *testing.B) {
	path := createTestArchive(b, benchFiles(4096, 16), TierFastest)

	b.ReportAllocs()
	for b.Loop() {
		r, err := Open(path)
		if err != nil {
			b.Fatal(err)
		}
		r.Close()
	}
}
