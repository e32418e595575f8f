package export

// Buffer sizing brackets, in bytes.
const (
	MinBufferSize   = 8 << 10   // floor for exports under 100 rows
	MidBufferFloor  = 32 << 10  // 100-999 rows
	MidBufferCeil   = 64 << 10  // 100-999 rows
	LargeBufferSize = 128 << 10 // 1,000-9,999 rows
	XLBufferSize    = 256 << 10 // 10,000-99,999 rows
	HugeBufferSize  = 512 << 10 // 100,000 rows and up
	MaxBufferSize   = 1 << 20   // ceiling for every estimate
)

const (
	sizingSampleRows = 10
	// fieldOverhead covers the delimiter and a possible pair of quotes.
	fieldOverhead = 3
)

// Plan is the buffering schedule for one export.
type Plan struct {
	// Capacity is the byte target the buffer never grows past.
	Capacity int
	// RowsPerFlush is how many rows are buffered between sink writes.
	RowsPerFlush int
	// AvgRowSize is the estimated serialized size of one row.
	AvgRowSize int
}

// PlanBuffer estimates a buffer plan from the rows about to be exported.
func PlanBuffer(rows [][]string) Plan {
	avg := EstimateRowSize(rows)
	return newPlan(BracketCapacity(len(rows), avg), avg)
}

// FixedPlan builds a plan with a caller-chosen capacity. The row estimate
// still comes from the data so the flush schedule tracks the row width.
func FixedPlan(capacity int, rows [][]string) Plan {
	return newPlan(capacity, EstimateRowSize(rows))
}

func newPlan(capacity, avg int) Plan {
	perFlush := 1
	if avg > 0 {
		perFlush = max(1, capacity/avg)
	}
	return Plan{Capacity: capacity, RowsPerFlush: perFlush, AvgRowSize: avg}
}

// EstimateRowSize samples up to the first ten rows and returns the average
// serialized row size: each field counts its byte length plus a fixed
// overhead, and each row one byte for the line terminator.
// Returns 0 for an empty row set.
func EstimateRowSize(rows [][]string) int {
	samples := min(sizingSampleRows, len(rows))
	if samples == 0 {
		return 0
	}

	total := 0
	for _, row := range rows[:samples] {
		size := 1
		for _, field := range row {
			size += len(field) + fieldOverhead
		}
		total += size
	}
	return total / samples
}

// BracketCapacity picks the buffer capacity for totalRows rows of roughly
// avgRowSize bytes each. The result never decreases as totalRows grows, so
// the proportional small bracket stops at the floor of the next one.
func BracketCapacity(totalRows, avgRowSize int) int {
	var capacity int
	switch {
	case totalRows < 100:
		capacity = min(MidBufferFloor, max(MinBufferSize, avgRowSize*totalRows))
	case totalRows < 1000:
		capacity = min(MidBufferCeil, max(MidBufferFloor, avgRowSize*100))
	case totalRows < 10000:
		capacity = LargeBufferSize
	case totalRows < 100000:
		capacity = XLBufferSize
	default:
		capacity = HugeBufferSize
	}
	return min(capacity, MaxBufferSize)
}
