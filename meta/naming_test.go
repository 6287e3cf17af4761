package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"repeat_name", []string{"repeat", "name"}},
		{"RepeatName", []string{"repeat", "name"}},
		{"repeatName", []string{"repeat", "name"}},
		{"HTTPServer", []string{"http", "server"}},
		{"GetHTTP", []string{"get", "http"}},
		{"MY_CONST", []string{"my", "const"}},
		{"kebab-case-name", []string{"kebab", "case", "name"}},
		{"v2", []string{"v2"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitWords(tt.in))
		})
	}
}

func TestNamingApply(t *testing.T) {
	tests := []struct {
		naming Naming
		in     string
		want   string
	}{
		{SnakeCase, "RepeatName", "repeat_name"},
		{ConstCase, "maxSize", "MAX_SIZE"},
		{KebabCase, "GetHTTPServer", "get-http-server"},
		{CamelCase, "repeat_name", "repeatName"},
		{PascalCase, "repeat_name", "RepeatName"},
		{PascalCase, "name", "Name"},
		{Naming{Prefix: "m_", Case: Camel}, "member_value", "m_memberValue"},
		{Naming{Prefix: "I", Case: Pascal}, "shape", "IShape"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.naming.Apply(tt.in))
		})
	}
}

func TestNamingConvert(t *testing.T) {
	hungarian := Naming{Prefix: "m_", Case: Camel}

	got, err := SnakeCase.Convert("m_memberValue", hungarian)
	require.NoError(t, err)
	assert.Equal(t, "member_value", got)

	_, err = SnakeCase.Convert("memberValue", hungarian)
	assert.Error(t, err)

	_, err = SnakeCase.Convert("value_t", Naming{Suffix: "_s", Sep: "_"})
	assert.Error(t, err)
}

func TestParseCase(t *testing.T) {
	c, err := ParseCase("Pascal")
	require.NoError(t, err)
	assert.Equal(t, Pascal, c)
	_, err = ParseCase("title")
	assert.Error(t, err)
}
