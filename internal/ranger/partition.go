package ranger

import (
	"context"
	"fmt"
	"strings"
)

const (
	namePrefix   = "partition"
	suffixPrefix = "-p"
)

// Querier runs a scalar integer aggregate. valid is false when the
// aggregate is NULL, e.g. MIN over an empty table.
type Querier interface {
	ScalarInt64(ctx context.Context, query string) (value int64, valid bool, err error)
}

// Request describes the table column to partition.
type Request struct {
	Table      string
	Column     string
	Partitions int
}

// Descriptor is what a worker needs to process one partition: a WHERE
// fragment restricting the column and a suffix for its output names.
type Descriptor struct {
	PartClause string `json:"partClause"`
	PartSuffix string `json:"partSuffix"`
}

// Entry is one partition of a Set.
type Entry struct {
	Name  string `json:"name"`
	Index int    `json:"index"`

	// Ranged is false for the single unpartitioned entry.
	Ranged bool  `json:"ranged"`
	Range  Range `json:"range"`

	Descriptor
}

// Set is a plan ordered by ascending partition index.
type Set []Entry

// Map returns the plan keyed by partition name.
func (s Set) Map() map[string]Descriptor {
	out := make(map[string]Descriptor, len(s))
	for _, p := range s {
		out[p.Name] = p.Descriptor
	}
	return out
}

func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for _, p := range s {
		out = append(out, p.Name)
	}
	return out
}

// Unpartitioned returns the plan that tells workers to process the whole
// table as one unit.
func Unpartitioned() Set {
	return Set{{Name: PartitionName(0)}}
}

func PartitionName(i int) string {
	return fmt.Sprintf("%s%d", namePrefix, i)
}

func PartitionSuffix(i int) string {
	return fmt.Sprintf("%s%d", suffixPrefix, i)
}

// Clause builds the BETWEEN predicate for r. The column name is
// interpolated as is.
func Clause(column string, r Range) string {
	return fmt.Sprintf("WHERE %s BETWEEN %d AND %d", column, r.From, r.To)
}

// MinQuery and MaxQuery build the bound aggregates. Names are not quoted.
func MinQuery(table, column string) string {
	return fmt.Sprintf("SELECT MIN(%s) FROM %s", column, table)
}

func MaxQuery(table, column string) string {
	return fmt.Sprintf("SELECT MAX(%s) FROM %s", column, table)
}

// Plan builds the partition set for known bounds.
func Plan(column string, min, max int64, partitions int) (Set, error) {
	if partitions < 1 {
		return nil, &InvalidArgumentError{Field: "partitions", Value: partitions}
	}

	if max < min {
		return Unpartitioned(), nil
	}

	ranges := Split(min, max, partitions)
	out := make(Set, 0, len(ranges))

	for i, r := range ranges {
		out = append(out, Entry{
			Name:   PartitionName(i),
			Index:  i,
			Ranged: true,
			Range:  r,
			Descriptor: Descriptor{
				PartClause: Clause(column, r),
				PartSuffix: PartitionSuffix(i),
			},
		})
	}

	return out, nil
}

// Partition reads MIN and MAX of req.Column and splits the interval into
// up to req.Partitions contiguous ranges. A blank table or column yields
// the single unpartitioned entry whatever the partition count; so does an
// empty table.
func Partition(ctx context.Context, q Querier, req Request) (Set, error) {
	if strings.TrimSpace(req.Table) == "" || strings.TrimSpace(req.Column) == "" {
		return Unpartitioned(), nil
	}

	if req.Partitions < 1 {
		return nil, &InvalidArgumentError{Field: "partitions", Value: req.Partitions}
	}

	min, ok, err := scalar(ctx, q, MinQuery(req.Table, req.Column))
	if err != nil {
		return nil, err
	}
	if !ok {
		return Unpartitioned(), nil
	}

	max, ok, err := scalar(ctx, q, MaxQuery(req.Table, req.Column))
	if err != nil {
		return nil, err
	}
	if !ok {
		return Unpartitioned(), nil
	}

	return Plan(req.Column, min, max, req.Partitions)
}

func scalar(ctx context.Context, q Querier, query string) (int64, bool, error) {
	v, ok, err := q.ScalarInt64(ctx, query)
	if err != nil {
		return 0, false, &DatabaseError{Query: query, Err: err}
	}
	return v, ok, nil
}
