package pgvector

// defaultMaxResults is the default maximum number of search results.
const defaultMaxResults = 10

// options contains the options for pgvector.
type options struct {
	host           string // PostgreSQL host
	port           int    // PostgreSQL port
	user           string // PostgreSQL user
	password       string // PostgreSQL password
	database       string // PostgreSQL database
	table          string // PostgreSQL table
	indexDimension int    // vector column dimension
	sslMode        string // PostgreSQL SSL mode

	maxResults int // Maximum number of search results
}

// defaultOptions is the default options for pgvector.
var defaultOptions = options{
	host:           "localhost",
	port:           5432,
	database:       "reglens",
	table:          "chunks",
	indexDimension: 1536,
	sslMode:        "disable",
	maxResults:     defaultMaxResults,
}

// Option is the option for pgvector.
type Option func(*options)

// WithHost sets the PostgreSQL host.
func WithHost(host string) Option {
	return func(o *options) {
		o.host = host
	}
}

// WithPort sets the PostgreSQL port.
func WithPort(port int) Option {
	return func(o *options) {
		o.port = port
	}
}

// WithUser sets the username for authentication.
func WithUser(user string) Option {
	return func(o *options) {
		o.user = user
	}
}

// WithPassword sets the password for authentication.
func WithPassword(password string) Option {
	return func(o *options) {
		o.password = password
	}
}

// WithDatabase sets the database name.
func WithDatabase(database string) Option {
	return func(o *options) {
		o.database = database
	}
}

// WithTable sets the table name.
func WithTable(table string) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithIndexDimension sets the vector dimension for the index.
// It must match the embedder's output dimension.
func WithIndexDimension(dimension int) Option {
	return func(o *options) {
		o.indexDimension = dimension
	}
}

// WithSSLMode sets the SSL mode for connection.
func WithSSLMode(sslMode string) Option {
	return func(o *options) {
		o.sslMode = sslMode
	}
}

// WithMaxResults sets the maximum number of search results.
func WithMaxResults(maxResults int) Option {
	return func(o *options) {
		if maxResults <= 0 {
			maxResults = defaultMaxResults
		}
		o.maxResults = maxResults
	}
}
