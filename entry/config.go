package entry

// Config holds the table layout for the entry service.
type Config struct {
	// Table is the entries table name.
	// Default: "Myentries"
	Table string

	// BlogIndex is the secondary index on blog_id.
	// Default: "blog_idIndex"
	BlogIndex string

	// UserIndex is the secondary index on the owner attribute.
	// Default: "userIndex"
	UserIndex string

	// ScanLimit caps findMany scans.
	// Default: 20
	ScanLimit int32
}

// DefaultConfig returns the table layout the gateway stack provisions.
func DefaultConfig() Config {
	return Config{
		Table:     "Myentries",
		BlogIndex: "blog_idIndex",
		UserIndex: "userIndex",
		ScanLimit: 20,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "Myentries"
	}
	if c.BlogIndex == "" {
		c.BlogIndex = "blog_idIndex"
	}
	if c.UserIndex == "" {
		c.UserIndex = "userIndex"
	}
	if c.ScanLimit < 1 {
		c.ScanLimit = 20
	}
}
