package table

import (
	"github.com/kasuganosora/deltatable/pkg/column"
	"github.com/kasuganosora/deltatable/pkg/rowset"
	"github.com/kasuganosora/deltatable/pkg/types"
)

// RowRedirection maps an outer row key to an inner one, with a previous
// view for the in-flight cycle.
type RowRedirection interface {
	Redirect(outer int64) int64
	RedirectPrev(outer int64) int64
}

// rowSetRedirection maps dense position p to the p-th key of a row set.
// This is the redirection flatten installs: no mapping state of its own,
// just rank/select against the parent's membership.
type rowSetRedirection struct {
	rows *rowset.TrackingRowSet
}

func (r *rowSetRedirection) Redirect(outer int64) int64 {
	return r.rows.RowSet().Get(outer)
}

func (r *rowSetRedirection) RedirectPrev(outer int64) int64 {
	return r.rows.PrevRowSet().Get(outer)
}

// RedirectedColumn reads through a redirection into an inner column
// source. No data is copied; writes are not supported through the view.
type RedirectedColumn struct {
	redir RowRedirection
	inner column.Source
}

// NewRedirectedColumn wraps inner behind redir.
func NewRedirectedColumn(redir RowRedirection, inner column.Source) *RedirectedColumn {
	return &RedirectedColumn{redir: redir, inner: inner}
}

// Kind returns the inner column's element kind.
func (c *RedirectedColumn) Kind() types.Kind {
	return c.inner.Kind()
}

// Get reads the inner cell the outer key redirects to. An unmapped outer
// key reads as NULL.
func (c *RedirectedColumn) Get(outer int64) any {
	return c.inner.Get(c.redir.Redirect(outer))
}

// GetPrev reads the previous inner cell under the previous redirection.
func (c *RedirectedColumn) GetPrev(outer int64) any {
	return c.inner.GetPrev(c.redir.RedirectPrev(outer))
}
