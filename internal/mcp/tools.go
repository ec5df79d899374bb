package mcp

// SearchInput defines the input schema for the search_site tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to look for in post titles, content and tags (case-insensitive substring)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default and maximum is search.max_results"`
}

// SearchOutput defines the output schema for the search_site tool.
type SearchOutput struct {
	Query   string               `json:"query" jsonschema:"the trimmed query"`
	Results []SearchResultOutput `json:"results" jsonschema:"matching posts in site order"`
}

// SearchResultOutput is one matching post.
type SearchResultOutput struct {
	Position int    `json:"position" jsonschema:"the post's position in the index, usable as post://{position}"`
	Title    string `json:"title" jsonschema:"post title"`
	URL      string `json:"url" jsonschema:"post URL, absolute when site.base_url is configured"`
	Snippet  string `json:"snippet" jsonschema:"plain text excerpt around the first match"`
	Excerpt  string `json:"excerpt" jsonschema:"the excerpt with matches wrapped in the configured markers"`
	Tags     string `json:"tags,omitempty" jsonschema:"post tags"`
}

// IndexStatusInput defines the input schema for the index_status tool.
type IndexStatusInput struct {
	Load bool `json:"load,omitempty" jsonschema:"load the index first if it has not been loaded yet"`
}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	Site  SiteInfo  `json:"site"`
	Index IndexInfo `json:"index"`
}

// IndexInfo describes the loader's state.
type IndexInfo struct {
	State     string `json:"state"` // idle, loading, loaded, failed
	Location  string `json:"location"`
	Format    string `json:"format"`
	Documents int    `json:"documents"`
	Skipped   int    `json:"skipped"`
	Fetches   int    `json:"fetches"`
	LoadedAt  string `json:"loaded_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SiteInfo contains information about the blog being searched.
type SiteInfo struct {
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	RootPath  string `json:"root_path"`
	Generator string `json:"generator"`
}
