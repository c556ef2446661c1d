package db

// SortSpec names an indexed sortable attribute and a direction.
type SortSpec struct {
	Field string
	Desc  bool
}

// PageQuery is one offset-paged FT.SEARCH request.
type PageQuery struct {
	Index  string
	Query  string
	Sort   *SortSpec
	Offset int
	Limit  int
}

// CursorQuery opens an FT.AGGREGATE cursor over the full result set in
// sort order, advancing PageSize rows per read.
type CursorQuery struct {
	Index    string
	Query    string
	Sort     *SortSpec
	PageSize int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int64
	Entries []SearchEntry
}

// SearchEntry is a single document hit: the document key and the raw
// JSON body as stored.
type SearchEntry struct {
	Key  string
	JSON []byte
}
