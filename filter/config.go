package filter

// Config holds the tunable knobs for a Filter run (spec.md §6). Zero
// values are not valid configuration; callers should start from
// DefaultConfig and override what they need, the same plain-struct
// idiom the teacher uses for ManagerConfig.
type Config struct {
	// MaxHeapSize is the byte size callers should pass to heap.New
	// before binding a Table and Filter to it. Run itself never
	// allocates the heap (the caller owns that, since the table already
	// lives there by the time a Filter exists) — this is the sizing
	// knob a caller reads to build that heap in the first place,
	// mirroring the teacher's ManagerConfig.SlabSize.
	MaxHeapSize uint32

	// WorkerCount is the number of goroutines dispatched per Run. Must
	// be ≥ 1.
	WorkerCount int

	// RowBatchSize is the number of row indices claimed per fetch-add.
	RowBatchSize uint32

	// MaxResultBytes caps the result region Run allocates. Zero means
	// "use rowCount * rowSize", computed once the projection is known.
	MaxResultBytes uint32
}

const (
	// DefaultMaxHeapSize is spec.md §6's stated default for maxHeapSize:
	// 2 GiB. uint32 can't address a platform cap larger than ~4 GiB
	// anyway, so "2 GiB or platform cap" collapses to the literal 2 GiB
	// figure here.
	DefaultMaxHeapSize  = 2 << 30
	DefaultWorkerCount  = 4
	DefaultRowBatchSize = 1024
)

// DefaultConfig returns the spec's default knob values.
func DefaultConfig() Config {
	return Config{
		MaxHeapSize:  DefaultMaxHeapSize,
		WorkerCount:  DefaultWorkerCount,
		RowBatchSize: DefaultRowBatchSize,
	}
}
