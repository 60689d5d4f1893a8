package domain

import "encoding/json"

type Partition string

const (
	PartitionMain     Partition = "main"
	PartitionOverflow Partition = "overflow"
)

// BoundaryRecord is one feature of a published boundary collection.
type BoundaryRecord struct {
	AreaCode       string          `json:"area_code"`
	AreaName       string          `json:"area_name"`
	ParentAreaName string          `json:"parent_area_name,omitempty"`
	Geometry       json.RawMessage `json:"geometry,omitempty"`
}

// BoundaryTable is a boundary collection split into named buckets so that no bucket
// handed to the renderer exceeds its row ceiling. An unpartitioned table only has
// PartitionMain.
type BoundaryTable struct {
	URL     string
	Buckets map[Partition][]BoundaryRecord
}

func NewBoundaryTable(url string, records []BoundaryRecord) *BoundaryTable {
	return &BoundaryTable{
		URL:     url,
		Buckets: map[Partition][]BoundaryRecord{PartitionMain: records},
	}
}

// Bucket returns the records of a partition, falling back to the main bucket when the
// table was never partitioned.
func (t *BoundaryTable) Bucket(p Partition) []BoundaryRecord {
	if t == nil {
		return nil
	}
	if records, ok := t.Buckets[p]; ok {
		return records
	}
	if len(t.Buckets) == 1 {
		return t.Buckets[PartitionMain]
	}
	return nil
}

func (t *BoundaryTable) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, b := range t.Buckets {
		n += len(b)
	}
	return n
}
