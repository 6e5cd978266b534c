package dataset

// DataSet is the merged result of all tables across all sites in a study.
//
// Rows from different tables may carry different column sets; absent
// columns read as missing through Row.Get. Parameters merge with
// last-write-wins semantics when two tables share a column name.
type DataSet struct {
	StudyID string    `json:"study_id"`
	Title   string    `json:"title"`
	DOI     string    `json:"doi"`
	Link    string    `json:"link"`
	Params  *ParamSet `json:"params"`
	Columns []string  `json:"columns"`
	Rows    []Row     `json:"rows"`
	Events  []Event   `json:"events"`

	columnIndex map[string]bool
}

// NewDataSet creates an empty DataSet for a study. Every call allocates
// fresh containers.
func NewDataSet(studyID string) *DataSet {
	return &DataSet{
		StudyID:     studyID,
		Params:      NewParamSet(),
		columnIndex: make(map[string]bool),
	}
}

// AppendTable merges one parsed table into the dataset: its rows are
// concatenated onto the row grid, its columns unioned into the column
// list, and its parameters merged last-write-wins.
func (d *DataSet) AppendTable(t *Table) {
	for _, c := range t.Columns {
		d.addColumn(c)
	}
	d.Rows = append(d.Rows, t.Rows...)
	d.Params.Merge(t.Params)
}

// AddEvent records a site's Event on the dataset.
func (d *DataSet) AddEvent(e Event) {
	d.Events = append(d.Events, e)
}

func (d *DataSet) addColumn(name string) {
	if d.columnIndex == nil {
		d.columnIndex = make(map[string]bool, len(d.Columns))
		for _, c := range d.Columns {
			d.columnIndex[c] = true
		}
	}
	if !d.columnIndex[name] {
		d.columnIndex[name] = true
		d.Columns = append(d.Columns, name)
	}
}
