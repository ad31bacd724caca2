// SPDX-License-Identifier: EPL-2.0

package freesound

import (
	"fmt"
	"net/url"
	"strconv"
)

// DurationFilter is an upper bound on clip length in seconds; Unlimited
// disables the filter.
type DurationFilter int

const Unlimited DurationFilter = 0

// DurationFilters lists the choices offered to users, shortest first.
func DurationFilters() []DurationFilter {
	return []DurationFilter{1, 2, 3, 4, 5, 10, 15, 20, Unlimited}
}

func (d DurationFilter) String() string {
	if d <= Unlimited {
		return "all"
	}
	return fmt.Sprintf("< %ds", int(d))
}

// filter renders the search API range expression.
func (d DurationFilter) filter() string {
	return fmt.Sprintf("duration:[0.0 TO %d.0]", int(d))
}

// Query is one page of a text search. Page numbers start at 1.
type Query struct {
	Text        string
	Page        int
	MaxDuration DurationFilter
}

func NewQuery(text string, maxDuration DurationFilter) Query {
	return Query{Text: text, Page: 1, MaxDuration: maxDuration}
}

func (q Query) Next() Query {
	q.Page = q.page() + 1
	return q
}

// Prev steps back one page but never below the first.
func (q Query) Prev() Query {
	q.Page = max(q.page()-1, 1)
	return q
}

func (q Query) HasPrev() bool { return q.page() > 1 }

func (q Query) page() int { return max(q.Page, 1) }

func (q Query) values(token string, pageSize int) url.Values {
	v := url.Values{}
	v.Set("query", q.Text)
	v.Set("token", token)
	v.Set("page_size", strconv.Itoa(pageSize))
	v.Set("page", strconv.Itoa(q.page()))
	if q.MaxDuration > Unlimited {
		v.Set("filter", q.MaxDuration.filter())
	}
	return v
}
