package apify

import (
	"strconv"
	"strings"
)

// QueryParam is a single query string pair. Order is preserved on the wire.
type QueryParam struct {
	Key   string
	Value string
}

// DownloadFormat is an export format supported by dataset item endpoints.
type DownloadFormat string

// Supported export formats.
const (
	FormatJSON  DownloadFormat = "json"
	FormatJSONL DownloadFormat = "jsonl"
	FormatXML   DownloadFormat = "xml"
	FormatHTML  DownloadFormat = "html"
	FormatCSV   DownloadFormat = "csv"
	FormatXLSX  DownloadFormat = "xlsx"
	FormatRSS   DownloadFormat = "rss"
)

// ParseDownloadFormat validates a user supplied format name.
func ParseDownloadFormat(s string) (DownloadFormat, error) {
	switch f := DownloadFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatJSONL, FormatXML, FormatHTML, FormatCSV, FormatXLSX, FormatRSS:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ListItemsParams filters and shapes dataset items. Nil fields are not sent.
type ListItemsParams struct {
	Format          *DownloadFormat
	Clean           *bool
	Offset          *uint64
	Limit           *uint64
	Fields          []string
	Omit            []string
	Unwind          *string
	Desc            *bool
	Attachment      *bool
	Delimiter       *string
	BOM             *bool
	XMLRoot         *string
	XMLRow          *string
	SkipHeaderRow   *bool
	SkipHidden      *bool
	SkipEmpty       *bool
	Simplified      *bool
	SkipFailedPages *bool
}

// NewListItemsParams creates an empty parameter set.
func NewListItemsParams() *ListItemsParams {
	return &ListItemsParams{}
}

// WithOffset sets the number of items to skip.
func (p *ListItemsParams) WithOffset(offset uint64) *ListItemsParams {
	p.Offset = &offset

	return p
}

// WithLimit caps the number of items returned.
func (p *ListItemsParams) WithLimit(limit uint64) *ListItemsParams {
	p.Limit = &limit

	return p
}

// WithDesc requests newest items first.
func (p *ListItemsParams) WithDesc(desc bool) *ListItemsParams {
	p.Desc = &desc

	return p
}

// WithClean skips empty items and hidden fields.
func (p *ListItemsParams) WithClean(clean bool) *ListItemsParams {
	p.Clean = &clean

	return p
}

// WithFields limits items to the given fields.
func (p *ListItemsParams) WithFields(fields ...string) *ListItemsParams {
	p.Fields = fields

	return p
}

// WithOmit drops the given fields from items.
func (p *ListItemsParams) WithOmit(fields ...string) *ListItemsParams {
	p.Omit = fields

	return p
}

// WithUnwind expands an array field into separate items.
func (p *ListItemsParams) WithUnwind(field string) *ListItemsParams {
	p.Unwind = &field

	return p
}

// IsDesc reports whether descending order was requested.
func (p *ListItemsParams) IsDesc() bool {
	return p != nil && p.Desc != nil && *p.Desc
}

// ToQuery renders the set fields in a stable order.
func (p *ListItemsParams) ToQuery() []QueryParam {
	if p == nil {
		return nil
	}

	var q []QueryParam

	if p.Format != nil {
		q = append(q, QueryParam{"format", string(*p.Format)})
	}

	q = appendBool(q, "clean", p.Clean)
	q = appendUint(q, "offset", p.Offset)
	q = appendUint(q, "limit", p.Limit)
	q = appendList(q, "fields", p.Fields)
	q = appendList(q, "omit", p.Omit)
	q = appendString(q, "unwind", p.Unwind)
	q = appendBool(q, "desc", p.Desc)
	q = appendBool(q, "attachment", p.Attachment)
	q = appendString(q, "delimiter", p.Delimiter)
	q = appendBool(q, "bom", p.BOM)
	q = appendString(q, "xmlRoot", p.XMLRoot)
	q = appendString(q, "xmlRow", p.XMLRow)
	q = appendBool(q, "skipHeaderRow", p.SkipHeaderRow)
	q = appendBool(q, "skipHidden", p.SkipHidden)
	q = appendBool(q, "skipEmpty", p.SkipEmpty)
	q = appendBool(q, "simplified", p.Simplified)
	q = appendBool(q, "skipFailedPages", p.SkipFailedPages)

	return q
}

// ListParams pages through a resource collection.
type ListParams struct {
	Offset    *uint64
	Limit     *uint64
	Desc      *bool
	Unnamed   *bool
	OwnedByMe *bool
}

// NewListParams creates an empty parameter set.
func NewListParams() *ListParams {
	return &ListParams{}
}

// WithOffset sets the number of entries to skip.
func (p *ListParams) WithOffset(offset uint64) *ListParams {
	p.Offset = &offset

	return p
}

// WithLimit caps the number of entries returned.
func (p *ListParams) WithLimit(limit uint64) *ListParams {
	p.Limit = &limit

	return p
}

// WithDesc requests newest entries first.
func (p *ListParams) WithDesc(desc bool) *ListParams {
	p.Desc = &desc

	return p
}

// ToQuery renders the set fields in a stable order.
func (p *ListParams) ToQuery() []QueryParam {
	if p == nil {
		return nil
	}

	var q []QueryParam

	q = appendUint(q, "offset", p.Offset)
	q = appendUint(q, "limit", p.Limit)
	q = appendBool(q, "desc", p.Desc)
	q = appendBool(q, "unnamed", p.Unnamed)
	q = appendBool(q, "ownedByMe", p.OwnedByMe)

	return q
}

// ListKeysParams pages through record keys of a key-value store.
type ListKeysParams struct {
	Limit             *uint64
	ExclusiveStartKey *string
}

// ToQuery renders the set fields in a stable order.
func (p *ListKeysParams) ToQuery() []QueryParam {
	if p == nil {
		return nil
	}

	var q []QueryParam

	q = appendUint(q, "limit", p.Limit)
	q = appendString(q, "exclusiveStartKey", p.ExclusiveStartKey)

	return q
}

func appendBool(q []QueryParam, key string, v *bool) []QueryParam {
	if v == nil {
		return q
	}

	return append(q, QueryParam{key, strconv.FormatBool(*v)})
}

func appendUint(q []QueryParam, key string, v *uint64) []QueryParam {
	if v == nil {
		return q
	}

	return append(q, QueryParam{key, strconv.FormatUint(*v, 10)})
}

func appendString(q []QueryParam, key string, v *string) []QueryParam {
	if v == nil {
		return q
	}

	return append(q, QueryParam{key, *v})
}

func appendList(q []QueryParam, key string, v []string) []QueryParam {
	if len(v) == 0 {
		return q
	}

	return append(q, QueryParam{key, strings.Join(v, ",")})
}
