package blog

// Config holds the table layout for the blog service. The entries table and
// its blog_id index appear here because deleting a blog cascades over its
// entries directly at the store level.
type Config struct {
	// Table is the blogs table name.
	// Default: "Myblog"
	Table string

	// UserIndex is the secondary index on the owner attribute.
	// Default: "userIndex"
	UserIndex string

	// EntriesTable is the entries table name used by the delete cascade.
	// Default: "Myentries"
	EntriesTable string

	// EntriesBlogIndex is the entries index on blog_id.
	// Default: "blog_idIndex"
	EntriesBlogIndex string

	// ScanLimit caps findMany scans.
	// Default: 20
	ScanLimit int32
}

// DefaultConfig returns the table layout the gateway stack provisions.
func DefaultConfig() Config {
	return Config{
		Table:            "Myblog",
		UserIndex:        "userIndex",
		EntriesTable:     "Myentries",
		EntriesBlogIndex: "blog_idIndex",
		ScanLimit:        20,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "Myblog"
	}
	if c.UserIndex == "" {
		c.UserIndex = "userIndex"
	}
	if c.EntriesTable == "" {
		c.EntriesTable = "Myentries"
	}
	if c.EntriesBlogIndex == "" {
		c.EntriesBlogIndex = "blog_idIndex"
	}
	if c.ScanLimit < 1 {
		c.ScanLimit = 20
	}
}
