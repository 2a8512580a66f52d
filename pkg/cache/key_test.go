package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint only",
			key:  Key{Endpoint: "/api/coins/research/groups/"},
			want: "ngcpop:api/coins/research/groups",
		},
		{
			name: "query params sorted",
			key: Key{
				Endpoint: "/api/coins/research/groups/",
				QueryParams: url.Values{
					"researchSubcategoryID": []string{"187"},
					"page":                  []string{"1"},
				},
			},
			want: "ngcpop:api/coins/research/groups:page=1:researchSubcategoryID=187",
		},
		{
			name: "empty endpoint",
			key:  Key{},
			want: "ngcpop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	a := Key{
		Endpoint: "/api/coins/research/population/PF/",
		QueryParams: url.Values{
			"researchGroupID": []string{"42"},
			"page":            []string{"3"},
		},
	}
	b := Key{
		Endpoint: "/api/coins/research/population/PF/",
		QueryParams: url.Values{
			"page":            []string{"3"},
			"researchGroupID": []string{"42"},
		},
	}

	if a.String() != b.String() {
		t.Errorf("same logical key produced different strings: %q vs %q", a.String(), b.String())
	}
}

func TestKey_DifferentPagesDiffer(t *testing.T) {
	base := Key{
		Endpoint:    "/api/coins/research/groups/",
		QueryParams: url.Values{"page": []string{"1"}},
	}
	next := Key{
		Endpoint:    "/api/coins/research/groups/",
		QueryParams: url.Values{"page": []string{"2"}},
	}

	if base.String() == next.String() {
		t.Error("different pages share a cache key")
	}
}
