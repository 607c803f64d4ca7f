package db

type Config struct {
	Type     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string

	// Path is only used by the sqlite dialect.
	Path string
}
