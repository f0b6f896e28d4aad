// internal/app/system/paging/paging.go
package paging

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultLimit is the page size when the caller does not ask for one.
	DefaultLimit = 20
	// MaxLimit caps the page size a caller may ask for.
	MaxLimit = 100
)

// Params is a keyset page request over documents ordered newest first by
// _id. After is the id of the last row of the previous page.
type Params struct {
	Limit int64
	After primitive.ObjectID
}

// Defaults returns the first page with the default limit.
func Defaults() Params { return Params{Limit: DefaultLimit} }

// ParseParams reads "limit" and "after" from the query string. A limit
// outside 1..MaxLimit is clamped; an unparsable after is an error.
func ParseParams(r *http.Request) (Params, error) {
	p := Defaults()
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return p, fmt.Errorf("limit must be a number")
		}
		p.Limit = n
	}
	if s := query.Get(r, "after"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return p, fmt.Errorf("after is not a valid cursor")
		}
		p.After = id
	}
	return p.Normalize(), nil
}

// Normalize clamps Limit into 1..MaxLimit.
func (p Params) Normalize() Params {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

// Apply narrows filter to the rows after the cursor.
func (p Params) Apply(filter bson.M) bson.M {
	if filter == nil {
		filter = bson.M{}
	}
	if !p.After.IsZero() {
		filter["_id"] = bson.M{"$lt": p.After}
	}
	return filter
}

// FindOptions sorts newest first and fetches one look-ahead row so Trim can
// tell whether another page exists.
func (p Params) FindOptions() *options.FindOptions {
	p = p.Normalize()
	return options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(p.Limit + 1)
}

// Page is one page of rows plus the cursor for the next page.
type Page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next,omitempty"`
}

// Build trims the look-ahead row fetched by FindOptions and sets Next to the
// id of the last returned row when more rows exist.
func Build[T any](rows []T, p Params, idFn func(T) primitive.ObjectID) Page[T] {
	p = p.Normalize()
	if rows == nil {
		rows = []T{}
	}
	page := Page[T]{Items: rows}
	if int64(len(rows)) > p.Limit {
		page.Items = rows[:p.Limit]
		page.Next = idFn(page.Items[len(page.Items)-1]).Hex()
	}
	return page
}
