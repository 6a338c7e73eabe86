package hashcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		hash     string
		wantPath string
		want     Params
	}{
		{"empty", "", "", nil},
		{"path only", "#rhein", "#rhein", nil},
		{"params", "#rhein?sort=level&dir=desc", "#rhein", Params{{"sort", "level"}, {"dir", "desc"}}},
		{"trailing question mark", "#rhein?", "#rhein", nil},
		{"duplicate keeps first position last value", "#a?x=1&y=2&x=3", "#a", Params{{"x", "3"}, {"y", "2"}}},
		{"escapes", "#a?filter=%3E300+elbe&k%26=v", "#a", Params{{"filter", ">300 elbe"}, {"k&", "v"}}},
		{"second question mark stays in query", "#a?x=1?y", "#a", Params{{"x", "1?y"}}},
		{"key without value", "#a?flag&x=1", "#a", Params{{"flag", ""}, {"x", "1"}}},
		{"bad escape kept", "#a?q=100%", "#a", Params{{"q", "100%"}}},
		{"valid escapes next to bad ones decoded", "#rhein?q=%41%zz&a=1&a=2", "#rhein", Params{{"q", "A%zz"}, {"a", "2"}}},
		{"bad escape with plus and utf8", "#a?q=K%C3%96LN+%2", "#a", Params{{"q", "KÖLN %2"}}},
		{"empty segments skipped", "#a?&&x=1&", "#a", Params{{"x", "1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, params := Parse(tt.hash)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.want, params)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params Params
		want   string
	}{
		{"no params", "#elbe", nil, "#elbe"},
		{"ordered", "#rhein", Params{{"sort", "level"}, {"dir", "desc"}}, "#rhein?sort=level&dir=desc"},
		{"empty values omitted", "#rhein", Params{{"sort", ""}, {"dir", "desc"}}, "#rhein?dir=desc"},
		{"all empty drops question mark", "#rhein", Params{{"sort", ""}}, "#rhein"},
		{"escaped", "#a", Params{{"filter", ">300 elbe&x"}}, "#a?filter=%3E300+elbe%26x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.path, tt.params))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		path   string
		params Params
	}{
		{"#rhein", Params{{"sort", "level"}, {"dir", "desc"}, {"amount", "50"}}},
		{"#elbe", Params{{"filter", "station:123 !dresden"}, {"ä", "ö=ü&"}}},
		{"#x", nil},
	}
	for _, c := range cases {
		path, params := Parse(Format(c.path, c.params))
		assert.Equal(t, c.path, path)
		assert.Equal(t, c.params, params)
	}
}

func TestParamsMutation(t *testing.T) {
	var p Params
	p.Set("a", "1")
	p.Set("b", "2")
	p.Set("a", "3")
	assert.Equal(t, []string{"a", "b"}, p.Keys())
	v, ok := p.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	p.Delete("a")
	assert.False(t, p.Has("a"))
	assert.Equal(t, 1, p.Len())
	p.Delete("missing")
	assert.Equal(t, 1, p.Len())
}
