package pagination

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	QueryParamPage  = "page"
	QueryParamLimit = "limit"
)

// NextPageURL rebuilds the URL of r pointing at nextPage. It returns nil when
// there is no next page. The page and limit parameters are overwritten in
// place (or appended), every other query parameter keeps its position.
func NextPageURL(nextPage *int, pageSize int, r *http.Request) *string {
	if nextPage == nil {
		return nil
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	params := parseQuery(r.URL.RawQuery)
	params = setQueryParam(params, QueryParamPage, strconv.Itoa(*nextPage))
	params = setQueryParam(params, QueryParamLimit, strconv.Itoa(pageSize))

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawPath:  r.URL.RawPath,
		RawQuery: encodeQuery(params),
	}

	next := u.String()

	return &next
}

type queryParam struct {
	key   string
	value string
}

// parseQuery keeps the original order of the query string, which url.Values
// does not.
func parseQuery(rawQuery string) []queryParam {
	params := make([]queryParam, 0)

	for rawQuery != "" {
		var part string

		part, rawQuery, _ = strings.Cut(rawQuery, "&")
		if part == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(part, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}

		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}

		params = append(params, queryParam{key: key, value: value})
	}

	return params
}

// setQueryParam replaces the first occurrence of key and drops the rest, or
// appends key when it is absent.
func setQueryParam(params []queryParam, key, value string) []queryParam {
	result := make([]queryParam, 0, len(params)+1)
	found := false

	for _, p := range params {
		if p.key != key {
			result = append(result, p)

			continue
		}

		if !found {
			result = append(result, queryParam{key: key, value: value})
			found = true
		}
	}

	if !found {
		result = append(result, queryParam{key: key, value: value})
	}

	return result
}

func encodeQuery(params []queryParam) string {
	var sb strings.Builder

	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}

		sb.WriteString(url.QueryEscape(p.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.value))
	}

	return sb.String()
}
