package apify

import "encoding/json"

// DecodeItems converts a page of raw items into typed items. Pagination
// metadata is copied unchanged.
func DecodeItems[T any](page *PaginationList[json.RawMessage]) (*PaginationList[T], error) {
	if page == nil {
		return nil, nil
	}

	typed := &PaginationList[T]{
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
		Count:  page.Count,
		Desc:   page.Desc,
		Items:  make([]T, 0, len(page.Items)),
	}

	for _, raw := range page.Items {
		var item T

		err := json.Unmarshal(raw, &item)
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		typed.Items = append(typed.Items, item)
	}

	return typed, nil
}
