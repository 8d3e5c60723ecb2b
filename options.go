package fastcsr

const (
	// DefaultPartitionBits is the log2 of the number of rows per scatter task.
	DefaultPartitionBits = 18

	maxPartitionBits = 62
)

// AccumulatorOption is a functional option for configuring an Accumulator.
type AccumulatorOption func(*accumulatorConfig)

type accumulatorConfig struct {
	workers       int   // size of the private pool; ignored when pool is set
	pool          *Pool // shared pool, not closed by the accumulator
	partitionBits uint
	validate      bool
	spill         bool
	spillDir      string
	logger        *Logger
	metrics       MetricsCollector
}

func defaultAccumulatorConfig() *accumulatorConfig {
	return &accumulatorConfig{
		partitionBits: DefaultPartitionBits,
		validate:      true,
	}
}

// WithWorkers sets the size of the accumulator's private worker pool.
// Zero selects DefaultWorkers(). Ignored when WithPool is given.
func WithWorkers(n int) AccumulatorOption {
	return func(c *accumulatorConfig) {
		c.workers = n
	}
}

// WithPool runs all tasks on a caller-owned pool. The pool may be shared by
// several accumulators and outlives them; the caller closes it.
func WithPool(p *Pool) AccumulatorOption {
	return func(c *accumulatorConfig) {
		c.pool = p
	}
}

// WithPartitionBits sets the scatter partition size to 2^bits rows.
// Valid range is [1, 62]; the default is DefaultPartitionBits.
func WithPartitionBits(bits uint) AccumulatorOption {
	return func(c *accumulatorConfig) {
		c.partitionBits = bits
	}
}

// WithValidation controls whether Append checks that every join id belongs
// to its axis domain. Enabled by default.
//
// Disabling it skips the membership pass over 64-bit positions only.
// Positions narrowed to 32 bits are always checked, since narrowing
// touches every one of them; for those axes an unknown id still fails
// Append with ErrUnknownID. On a 64-bit axis with validation off, domain
// membership is a precondition and an unknown id corrupts the result or
// panics.
func WithValidation(enabled bool) AccumulatorOption {
	return func(c *accumulatorConfig) {
		c.validate = enabled
	}
}

// WithSpill stores re-indexed chunks in a temp file under dir instead of
// RAM. An empty dir uses os.TempDir().
// The directory must be on a local filesystem; O_TMPFILE is used where
// supported so nothing is left behind after a crash.
func WithSpill(dir string) AccumulatorOption {
	return func(c *accumulatorConfig) {
		c.spill = true
		c.spillDir = dir
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *Logger) AccumulatorOption {
	return func(c *accumulatorConfig) {
		c.logger = l
	}
}

// WithMetrics sets the metrics collector. The default records nothing.
func WithMetrics(m MetricsCollector) AccumulatorOption {
	return func(c *accumulatorConfig) {
		c.metrics = m
	}
}
