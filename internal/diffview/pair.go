package diffview

// Row is one side-by-side row. Left holds the old-side line and Right the
// new-side line; either may be nil when the other side has no counterpart.
type Row struct {
	Left  *Line
	Right *Line
}

// Replaced reports whether the row pairs a deletion with an addition.
func (r Row) Replaced() bool {
	return r.Left != nil && r.Right != nil && r.Left.Kind == Delete && r.Right.Kind == Add
}

// Pair aligns lines for side-by-side display. Context lines appear on both
// sides. A run of deletions is paired in order with the run of additions
// that directly follows it; surplus lines on either side get an empty
// counterpart.
func Pair(lines []Line) []Row {
	rows := make([]Row, 0, len(lines))
	var dels []*Line

	flush := func(adds []*Line) {
		n := max(len(dels), len(adds))
		for i := range n {
			var r Row
			if i < len(dels) {
				r.Left = dels[i]
			}
			if i < len(adds) {
				r.Right = adds[i]
			}
			rows = append(rows, r)
		}
		dels = dels[:0]
	}

	for i := 0; i < len(lines); i++ {
		l := &lines[i]
		switch l.Kind {
		case Delete:
			dels = append(dels, l)
		case Add:
			var adds []*Line
			for ; i < len(lines) && lines[i].Kind == Add; i++ {
				adds = append(adds, &lines[i])
			}
			i--
			flush(adds)
		default:
			flush(nil)
			rows = append(rows, Row{Left: l, Right: l})
		}
	}
	flush(nil)
	return rows
}
