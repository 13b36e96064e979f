package handlers

import (
	"encoding/json"
	"strings"
)

// jsonParam holds a structured field that arrives either inline in a JSON
// body or as a JSON string inside a multipart form.
type jsonParam[T any] struct {
	Value T    `form:"-"`
	Set   bool `form:"-"`
}

func (p *jsonParam[T]) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &p.Value); err != nil {
		return err
	}
	p.Set = true
	return nil
}

func (p *jsonParam[T]) UnmarshalParam(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return p.UnmarshalJSON([]byte(s))
}

// listParam is a list of strings sent as a JSON array, or in a form as a
// JSON array string or a comma separated value. Values is non-nil once Set.
type listParam struct {
	Values []string `form:"-"`
	Set    bool     `form:"-"`
}

func (p *listParam) UnmarshalJSON(b []byte) error {
	var vals []string
	if err := json.Unmarshal(b, &vals); err != nil {
		return err
	}
	p.assign(vals)
	return nil
}

func (p *listParam) UnmarshalParam(s string) error {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		return p.UnmarshalJSON([]byte(s))
	}
	var vals []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	p.assign(vals)
	return nil
}

func (p *listParam) assign(vals []string) {
	if vals == nil {
		vals = []string{}
	}
	p.Values, p.Set = vals, true
}
