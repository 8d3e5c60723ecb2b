// Bench measures COO-to-CSR accumulation throughput and memory usage.
//
// Usage:
//
//	go run ./cmd/bench -rows 1000000 -cols 20000 -nnz 100000000 -workers 16
//
// Flags:
//
//	-rows      Row axis domain size (default: 1,000,000)
//	-cols      Column axis domain size (default: 20,000)
//	-nnz       Total number of entries (default: 50,000,000)
//	-chunk     Entries per chunk (default: 1,000,000)
//	-workers   Pool size, 0 for NumCPU+2 (default: 0)
//	-bits      Log2 rows per scatter partition (default: 18)
//	-layout    Axis index layout: auto, hash, sorted or bitmap (default: auto)
//	-spill     Spill chunks to a temp file in this directory
//	-validate  Check join id membership (default: true)
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	mrand "math/rand/v2"
	"os"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/tamirms/fastcsr"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// joinIDs returns n distinct non-negative ids with scrambled high bits.
// The low bits hold the ordinal, so ids never collide.
func joinIDs(n int, seed uint32) []int64 {
	shift := bits.Len(uint(n))
	var buf [8]byte
	ids := make([]int64, n)
	for i := range ids {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		h := murmur3.Sum64WithSeed(buf[:], seed) >> 1
		ids[i] = int64(h>>shift<<shift) | int64(i)
	}
	return ids
}

func buildIndex(layout string, ids []int64) (fastcsr.AxisIndex, error) {
	switch layout {
	case "auto":
		return fastcsr.NewAxisIndex(ids)
	case "hash":
		return fastcsr.NewHashIndex(ids)
	case "sorted":
		return fastcsr.NewSortedIndex(ids)
	case "bitmap":
		sorted := slices.Clone(ids)
		slices.Sort(sorted)
		return fastcsr.NewBitmapIndex(sorted)
	}
	return nil, fmt.Errorf("unknown layout %q (use auto, hash, sorted or bitmap)", layout)
}

func main() {
	rowsFlag := flag.Int("rows", 1_000_000, "row axis domain size")
	colsFlag := flag.Int("cols", 20_000, "column axis domain size")
	nnzFlag := flag.Int("nnz", 50_000_000, "total number of entries")
	chunkFlag := flag.Int("chunk", 1_000_000, "entries per chunk")
	workersFlag := flag.Int("workers", 0, "pool size (0 = NumCPU+2)")
	bitsFlag := flag.Uint("bits", fastcsr.DefaultPartitionBits, "log2 rows per scatter partition")
	layoutFlag := flag.String("layout", "auto", "axis index layout: auto, hash, sorted or bitmap")
	spillFlag := flag.String("spill", "", "spill chunks to a temp file in this directory")
	validateFlag := flag.Bool("validate", true, "check join id membership")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (accumulation phase only)")
	verbose := flag.Bool("v", false, "log every chunk")
	flag.Parse()

	numRows, numCols, nnz, chunkSize := *rowsFlag, *colsFlag, *nnzFlag, *chunkFlag
	if numRows <= 0 || numCols <= 0 || nnz < 0 || chunkSize <= 0 {
		fmt.Println("rows, cols and chunk must be positive and nnz non-negative")
		os.Exit(2)
	}

	fmt.Println("Generating axis domains...")
	rowIDs := joinIDs(numRows, 0x1234)
	colIDs := joinIDs(numCols, 0x5678)
	rows, err := buildIndex(*layoutFlag, rowIDs)
	if err != nil {
		fmt.Printf("Row index failed: %v\n", err)
		os.Exit(1)
	}
	cols, err := buildIndex(*layoutFlag, colIDs)
	if err != nil {
		fmt.Printf("Column index failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Generating chunks...")
	rng := mrand.New(mrand.NewPCG(1, 2))
	var chunks []fastcsr.Chunk[float32]
	for left := nnz; left > 0; left -= chunkSize {
		n := min(left, chunkSize)
		c := fastcsr.Chunk[float32]{
			Rows:   make([]int64, n),
			Cols:   make([]int64, n),
			Values: make([]float32, n),
		}
		for i := range n {
			c.Rows[i] = rowIDs[rng.IntN(numRows)]
			c.Cols[i] = colIDs[rng.IntN(numCols)]
			c.Values[i] = rng.Float32()
		}
		chunks = append(chunks, c)
	}

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()

	// 10ms sampling for peak memory (both heap and RSS).
	// Uses runtime/metrics instead of ReadMemStats to avoid stop-the-world pauses.
	var peakAlloc atomic.Uint64
	var peakRSS atomic.Uint64
	peakAlloc.Store(baseline.Alloc)
	peakRSS.Store(baselineRSS)
	done := make(chan struct{})
	go func() {
		samples := []metrics.Sample{
			{Name: "/memory/classes/heap/objects:bytes"},
		}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				heapBytes := samples[0].Value.Uint64()
				for {
					old := peakAlloc.Load()
					if heapBytes <= old || peakAlloc.CompareAndSwap(old, heapBytes) {
						break
					}
				}
				rss := getMaxRSS()
				for {
					old := peakRSS.Load()
					if rss <= old || peakRSS.CompareAndSwap(old, rss) {
						break
					}
				}
			}
		}
	}()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	collector := &fastcsr.BasicMetricsCollector{}
	opts := []fastcsr.AccumulatorOption{
		fastcsr.WithWorkers(*workersFlag),
		fastcsr.WithPartitionBits(*bitsFlag),
		fastcsr.WithValidation(*validateFlag),
		fastcsr.WithLogger(fastcsr.NewTextLogger(os.Stderr, level)),
		fastcsr.WithMetrics(collector),
	}
	mode := "memory"
	if *spillFlag != "" {
		opts = append(opts, fastcsr.WithSpill(*spillFlag))
		mode = "spill"
	}

	fmt.Printf("Accumulating (%s mode)...\n", mode)
	start := time.Now()
	res, err := fastcsr.ReadCSR[float32](context.Background(), fastcsr.NewSliceSource(chunks...), rows, cols, opts...)
	duration := time.Since(start)

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	close(done)

	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	if final.Alloc > peakAlloc.Load() {
		peakAlloc.Store(final.Alloc)
	}
	if rss := getMaxRSS(); rss > peakRSS.Load() {
		peakRSS.Store(rss)
	}
	peakHeapMem := peakAlloc.Load() - baseline.Alloc
	peakRSSMem := peakRSS.Load() - baselineRSS

	if err != nil {
		fmt.Printf("Accumulation failed: %v\n", err)
		os.Exit(1)
	}

	st := collector.GetStats()
	m := res.Matrix()
	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦══════════════════╗\n")
	fmt.Printf("║ Mode: %-14s║ Layout: %-9s║\n", mode, *layoutFlag)
	fmt.Printf("╠═════════════════════╬══════════════════╣\n")
	fmt.Printf("║ Shape               ║ %8d x %-6d ║\n", res.Shape[0], res.Shape[1])
	fmt.Printf("║ NNZ                 ║ %16d ║\n", res.NNZ())
	fmt.Printf("║ Chunks              ║ %16d ║\n", len(chunks))
	fmt.Printf("║ Index width         ║ %16s ║\n", res.Indptr.Width())
	fmt.Printf("║ Result size         ║ %11.1f MB  ║\n", float64(res.SizeBytes())/1_000_000)
	fmt.Printf("║ Total time          ║ %12.2f sec ║\n", duration.Seconds())
	fmt.Printf("║ Append avg          ║ %12.2f ms  ║\n", float64(st.AppendAvgNanos)/1e6)
	fmt.Printf("║ Finalize            ║ %12.2f sec ║\n", float64(st.FinalizeAvgNanos)/1e9)
	fmt.Printf("║ Throughput          ║ %10.2f M/sec ║\n", float64(nnz)/duration.Seconds()/1_000_000)
	fmt.Printf("║ Peak heap memory    ║ %11.1f MB  ║\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %11.1f MB  ║\n", float64(peakRSSMem)/1_000_000)
	fmt.Printf("║ Digest              ║ %16x ║\n", m.Digest())
	fmt.Printf("╚═════════════════════╩══════════════════╝\n")
}
