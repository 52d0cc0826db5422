// internal/config/dsn.go
//
// Connection string derived from the database group.  User and password
// are URL-escaped, so reserved characters in credentials survive the round
// trip through pgxpool.ParseConfig.
package config

import (
	"net"
	"net/url"
	"strconv"
)

// URL renders the connection group as the DSN handed to the pool:
//
//	postgresql://{user}:{password}@{host}:{port}/{database}?sslmode={require|disable}
func (d Database) URL() string {
	mode := "disable"
	if d.SSL {
		mode = "require"
	}
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + mode,
	}
	return u.String()
}
