package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireNonEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"普通标题", "买牛奶", true},
		{"空字符串", "", false},
		{"仅空白", "   \t", false},
		{"首尾空白", "  写周报 ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RequireNonEmpty(FieldTitle, tt.value)
			assert.Equal(t, tt.valid, result.Valid())
			if !tt.valid {
				assert.Equal(t, "标题为必填项", result.Errors[FieldTitle])
				fields, ok := IsValidationError(result.Err())
				require.True(t, ok)
				assert.Contains(t, fields, FieldTitle)
			} else {
				assert.NoError(t, result.Err())
			}
		})
	}
}

func TestValidateBatch_Valid(t *testing.T) {
	body := []byte(`{"updates":[{"id":1,"title":"A"},{"id":2,"title":"B"}],"deletes":[3,4]}`)

	batch, result, err := ValidateBatch(body)
	require.NoError(t, err)
	require.True(t, result.Valid(), "errors: %v", result.Errors)

	assert.Equal(t, []TitleUpdate{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}, batch.Updates)
	assert.Equal(t, []int64{3, 4}, batch.Deletes)
}

func TestValidateBatch_EmptyAndNull(t *testing.T) {
	for _, body := range []string{``, `{}`, `{"updates":null,"deletes":null}`, `{"updates":[],"deletes":[]}`} {
		t.Run(body, func(t *testing.T) {
			batch, result, err := ValidateBatch([]byte(body))
			require.NoError(t, err)
			assert.True(t, result.Valid(), "errors: %v", result.Errors)
			assert.True(t, batch.IsEmpty())
		})
	}
}

func TestValidateBatch_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"空标题", `{"updates":[{"id":1,"title":""}]}`, "updates.0.title"},
		{"空白标题", `{"updates":[{"id":1,"title":"  "}]}`, "updates.0.title"},
		{"非整数 ID", `{"deletes":["abc"]}`, "deletes.0"},
		{"小数 ID", `{"deletes":[1.5]}`, "deletes.0"},
		{"缺少标题", `{"updates":[{"id":7}]}`, "updates.0"},
		{"updates 类型错误", `{"updates":"x"}`, "updates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result, err := ValidateBatch([]byte(tt.body))
			require.NoError(t, err)
			assert.False(t, result.Valid())
			assert.Contains(t, result.Errors, tt.field)
		})
	}
}

func TestValidateBatch_MalformedJSON(t *testing.T) {
	_, result, err := ValidateBatch([]byte(`{"updates":[`))
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.Contains(t, result.Errors, "body")
}

func TestBatch_IDs(t *testing.T) {
	b := Batch{
		Updates: []TitleUpdate{{ID: 5, Title: "B"}, {ID: 1, Title: "C"}},
		Deletes: []int64{5, 9},
	}
	assert.Equal(t, []int64{5, 1, 9}, b.IDs())
	assert.False(t, b.IsEmpty())
	assert.True(t, Batch{}.IsEmpty())
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-1", "1.5", "99999999999999999999"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}
