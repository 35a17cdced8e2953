package user

// Config holds the table layout for the user service.
type Config struct {
	// Table is the users table name.
	// Default: "MyblogUsers"
	Table string

	// EmailIndex is the secondary index on the email attribute. Email
	// uniqueness is enforced in the service by querying this index before
	// every write; the store itself has no unique-constraint primitive.
	// Default: "emailIndex"
	EmailIndex string

	// ScanLimit caps findMany scans.
	// Default: 20
	ScanLimit int32
}

// DefaultConfig returns the table layout the gateway stack provisions.
func DefaultConfig() Config {
	return Config{
		Table:      "MyblogUsers",
		EmailIndex: "emailIndex",
		ScanLimit:  20,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "MyblogUsers"
	}
	if c.EmailIndex == "" {
		c.EmailIndex = "emailIndex"
	}
	if c.ScanLimit < 1 {
		c.ScanLimit = 20
	}
}
