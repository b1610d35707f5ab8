package csvstore

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/crumbs/internal/cookies"
)

// NoExpiry marks a record whose cookie carries no expiry.
const NoExpiry = "-"

// TimestampFormat is the layout of the expires, createdTime and
// lastAccessedTime columns.
const TimestampFormat = time.RFC3339Nano

// Column names, in file order.
const (
	ColName             = "name"
	ColValue            = "value"
	ColDomain           = "domain"
	ColPath             = "path"
	ColExpires          = "expires"
	ColMaxAge           = "maxAge"
	ColHttpOnly         = "httpOnly"
	ColSecure           = "secure"
	ColCreatedTime      = "createdTime"
	ColLastAccessedTime = "lastAccessedTime"
	ColHostOnly         = "hostOnly"
)

// Columns lists the backing file columns in order.
var Columns = []string{
	ColName, ColValue, ColDomain, ColPath, ColExpires, ColMaxAge,
	ColHttpOnly, ColSecure, ColCreatedTime, ColLastAccessedTime, ColHostOnly,
}

// Record is the persisted form of a cookie.
type Record struct {
	Name             string
	Value            string
	Domain           string
	Path             string
	Expires          string
	MaxAge           int
	HttpOnly         bool
	Secure           bool
	CreatedTime      string
	LastAccessedTime string
	HostOnly         bool
}

// Key returns the composite key of the record.
func (r Record) Key() cookies.Key {
	return cookies.Key{Name: r.Name, Domain: r.Domain, Path: r.Path}
}

// EncodeRecord renders r as a row in Columns order.
func EncodeRecord(r Record) []string {
	expires := r.Expires
	if expires == "" {
		expires = NoExpiry
	}
	return []string{
		r.Name,
		r.Value,
		r.Domain,
		r.Path,
		expires,
		strconv.Itoa(r.MaxAge),
		strconv.FormatBool(r.HttpOnly),
		strconv.FormatBool(r.Secure),
		r.CreatedTime,
		r.LastAccessedTime,
		strconv.FormatBool(r.HostOnly),
	}
}

// DecodeRecord parses a row produced by EncodeRecord.
func DecodeRecord(row []string) (Record, error) {
	if len(row) != len(Columns) {
		return Record{}, &DecodeError{
			Column: "*",
			Err:    fmt.Errorf("expected %d columns, got %d", len(Columns), len(row)),
		}
	}

	r := Record{
		Name:             row[0],
		Value:            row[1],
		Domain:           row[2],
		Path:             row[3],
		Expires:          row[4],
		CreatedTime:      row[8],
		LastAccessedTime: row[9],
	}
	if r.Expires == NoExpiry {
		r.Expires = ""
	}

	var err error
	if r.MaxAge, err = strconv.Atoi(row[5]); err != nil {
		return Record{}, &DecodeError{Column: ColMaxAge, Err: err}
	}
	if r.HttpOnly, err = strconv.ParseBool(row[6]); err != nil {
		return Record{}, &DecodeError{Column: ColHttpOnly, Err: err}
	}
	if r.Secure, err = strconv.ParseBool(row[7]); err != nil {
		return Record{}, &DecodeError{Column: ColSecure, Err: err}
	}
	if r.HostOnly, err = strconv.ParseBool(row[10]); err != nil {
		return Record{}, &DecodeError{Column: ColHostOnly, Err: err}
	}

	return r, nil
}

// RecordFromCookie converts c to its persisted form. Zero clock fields on the
// cookie are stamped with now.
func RecordFromCookie(c *cookies.Cookie, now time.Time) Record {
	created := c.CreatedAt
	if created.IsZero() {
		created = now
	}
	accessed := c.LastAccessedAt
	if accessed.IsZero() {
		accessed = now
	}

	r := Record{
		Name:             c.Name,
		Value:            c.Value,
		Domain:           c.Domain,
		Path:             c.Path,
		MaxAge:           c.MaxAge,
		HttpOnly:         c.HttpOnly,
		Secure:           c.Secure,
		CreatedTime:      created.Format(TimestampFormat),
		LastAccessedTime: accessed.Format(TimestampFormat),
		HostOnly:         c.HostOnly,
	}
	if !c.Expires.IsZero() {
		r.Expires = c.Expires.UTC().Format(TimestampFormat)
	}
	return r
}

// Cookie converts the record back to a cookie. An expiry in HTTP date form is
// also accepted. Timestamps or an expiry that do not parse are left zero.
func (r Record) Cookie() *cookies.Cookie {
	c := &cookies.Cookie{
		Name:     r.Name,
		Value:    r.Value,
		Domain:   r.Domain,
		Path:     r.Path,
		MaxAge:   r.MaxAge,
		HttpOnly: r.HttpOnly,
		Secure:   r.Secure,
		HostOnly: r.HostOnly,
	}
	if r.Expires != "" {
		if t, err := time.Parse(TimestampFormat, r.Expires); err == nil {
			c.Expires = t
		} else if t, err := http.ParseTime(r.Expires); err == nil {
			c.Expires = t
		}
	}
	if t, err := time.Parse(TimestampFormat, r.CreatedTime); err == nil {
		c.CreatedAt = t
	}
	if t, err := time.Parse(TimestampFormat, r.LastAccessedTime); err == nil {
		c.LastAccessedAt = t
	}
	return c
}
