package colony

import (
	"math"

	"github.com/lixenwraith/antfarm/vmath"
)

// FieldKind selects one of the two pheromone fields
type FieldKind uint8

const (
	HomeField FieldKind = iota
	FoodField
)

func (k FieldKind) String() string {
	switch k {
	case HomeField:
		return "home"
	case FoodField:
		return "food"
	default:
		return "unknown"
	}
}

// Deposit is a single pheromone event in a sparse field
type Deposit struct {
	Position vmath.Vec2
	Strength float64
	Age      int // Field updates survived since last reinforcement
}

// Field is a sparse pheromone field: a list of deposits plus a bucket index
// Only occupied cells have a bucket, keyed cy*cols + cx, each holding deposit indices
// Strengths never exceed maxStrength; entries below epsilon are pruned on Evaporate
type Field struct {
	kind   FieldKind
	bounds Bounds

	cellSize   float64
	cols, rows int
	buckets    map[int64][]int32

	deposits []Deposit

	maxStrength float64
	epsilon     float64
	mergeRadius float64
}

// NewField creates an empty field over bounds
// cellSize should be at least the widest query radius so a query touches at most 3x3 buckets
func NewField(kind FieldKind, bounds Bounds, cellSize, maxStrength, epsilon, mergeRadius float64) *Field {
	if cellSize < 1 {
		cellSize = 1
	}
	cols := max(1, int(math.Ceil(bounds.Width/cellSize)))
	rows := max(1, int(math.Ceil(bounds.Height/cellSize)))

	return &Field{
		kind:        kind,
		bounds:      bounds,
		cellSize:    cellSize,
		cols:        cols,
		rows:        rows,
		buckets:     make(map[int64][]int32),
		maxStrength: maxStrength,
		epsilon:     epsilon,
		mergeRadius: mergeRadius,
	}
}

// Kind returns which field this is
func (f *Field) Kind() FieldKind {
	return f.kind
}

func (f *Field) cellOf(p vmath.Vec2) (cx, cy int) {
	cx = min(f.cols-1, max(0, int(p.X/f.cellSize)))
	cy = min(f.rows-1, max(0, int(p.Y/f.cellSize)))
	return cx, cy
}

func (f *Field) key(cx, cy int) int64 {
	return int64(cy)*int64(f.cols) + int64(cx)
}

// Deposit adds strength at p, reinforcing a nearby deposit when one lies within the merge radius
// Out-of-bounds or non-positive deposits are no-ops; returns true if the field changed
func (f *Field) Deposit(p vmath.Vec2, strength float64) bool {
	if !f.bounds.Contains(p) || !(strength > 0) || math.IsInf(strength, 0) {
		return false
	}

	key := f.key(f.cellOf(p))

	if f.mergeRadius > 0 {
		mergeSq := f.mergeRadius * f.mergeRadius
		for _, di := range f.buckets[key] {
			d := &f.deposits[di]
			if vmath.DistSq(d.Position, p) <= mergeSq {
				d.Strength = math.Min(f.maxStrength, d.Strength+strength)
				d.Age = 0
				return true
			}
		}
	}

	f.deposits = append(f.deposits, Deposit{
		Position: p,
		Strength: math.Min(f.maxStrength, strength),
	})
	f.buckets[key] = append(f.buckets[key], int32(len(f.deposits)-1))
	return true
}

// Strength sums contributions within radius of p, each weighted by 1 - d/radius
// Points outside the world read as zero
func (f *Field) Strength(p vmath.Vec2, radius float64) float64 {
	if !f.bounds.Contains(p) || !(radius > 0) || len(f.deposits) == 0 {
		return 0
	}

	minX := max(0, int((p.X-radius)/f.cellSize))
	maxX := min(f.cols-1, int((p.X+radius)/f.cellSize))
	minY := max(0, int((p.Y-radius)/f.cellSize))
	maxY := min(f.rows-1, int((p.Y+radius)/f.cellSize))

	// Queries spanning more cells than are occupied scan the deposits directly
	span := int64(maxX-minX+1) * int64(maxY-minY+1)
	if span > int64(len(f.buckets)) {
		total := 0.0
		for i := range f.deposits {
			total += f.contribution(&f.deposits[i], p, radius)
		}
		return total
	}

	total := 0.0
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			for _, di := range f.buckets[f.key(cx, cy)] {
				total += f.contribution(&f.deposits[di], p, radius)
			}
		}
	}
	return total
}

func (f *Field) contribution(d *Deposit, p vmath.Vec2, radius float64) float64 {
	distSq := vmath.DistSq(d.Position, p)
	if distSq >= radius*radius {
		return 0
	}
	return d.Strength * (1 - math.Sqrt(distSq)/radius)
}

// Evaporate scales every deposit by (1 - rate), ages it, and prunes entries below epsilon
// A zero rate leaves strengths untouched; returns the number of pruned deposits
func (f *Field) Evaporate(rate float64) int {
	factor := 1 - vmath.Clamp(rate, 0, 1)

	kept := f.deposits[:0]
	for _, d := range f.deposits {
		d.Strength *= factor
		d.Age++
		if d.Strength < f.epsilon {
			continue
		}
		kept = append(kept, d)
	}

	pruned := len(f.deposits) - len(kept)
	// Zero the tail so stale deposits are not visible through the backing array
	clear(f.deposits[len(kept):])
	f.deposits = kept

	if pruned > 0 {
		f.reindex()
	}
	return pruned
}

// reindex rebuilds buckets after compaction shifted deposit indices
// Emptied cells drop out of the map
func (f *Field) reindex() {
	clear(f.buckets)
	for i := range f.deposits {
		key := f.key(f.cellOf(f.deposits[i].Position))
		f.buckets[key] = append(f.buckets[key], int32(i))
	}
}

// Cells returns the number of occupied bucket cells
func (f *Field) Cells() int {
	return len(f.buckets)
}

// Len returns the number of live deposits
func (f *Field) Len() int {
	return len(f.deposits)
}

// Total returns the summed strength of all deposits
func (f *Field) Total() float64 {
	total := 0.0
	for i := range f.deposits {
		total += f.deposits[i].Strength
	}
	return total
}

// Each visits deposits in insertion order
func (f *Field) Each(fn func(d Deposit)) {
	for i := range f.deposits {
		fn(f.deposits[i])
	}
}

// Clear removes all deposits keeping the deposit slice capacity
func (f *Field) Clear() {
	f.deposits = f.deposits[:0]
	clear(f.buckets)
}
