package tree

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `openapi: 3.0.0
info:
  title: Plaid API
  version: 2020-09-14_1.0.0
components:
  schemas:
    UserName:
      type: string
      properties:
        given_name:
          type: string
        family_name:
          type: string
    Counts:
      type: array
      items:
        - 1
        - 2.5
        - true
        - null
paths:
  /users:
    get:
      responses:
        200:
          description: OK
`

func TestDecodeKeepsOrder(t *testing.T) {
	v, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"openapi", "info", "components", "paths"}, v.Keys())

	props, ok := v.Lookup(MustParsePath("/components/schemas/UserName/properties"))
	require.True(t, ok)
	assert.Equal(t, []string{"given_name", "family_name"}, props.Keys())

	resp, ok := v.Lookup(MustParsePath("/paths/~1users/get/responses"))
	require.True(t, ok)
	assert.Equal(t, []string{"200"}, resp.Keys(), "integer keys are kept as text")
}

func TestDecodeScalars(t *testing.T) {
	v, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	items, ok := v.Lookup(MustParsePath("/components/schemas/Counts/items"))
	require.True(t, ok)
	require.Equal(t, KindSequence, items.Kind())

	var got []any
	for _, it := range items.Items() {
		got = append(got, it.Interface())
	}
	assert.Equal(t, []any{int64(1), 2.5, true, nil}, got)

	version, ok := v.Lookup(MustParsePath("/info/version"))
	require.True(t, ok)
	s, ok := version.Text()
	assert.True(t, ok)
	assert.Equal(t, "2020-09-14_1.0.0", s)

	openapi, _ := v.Lookup(MustParsePath("/openapi"))
	assert.Equal(t, "3.0.0", openapi.Interface())
}

func TestDecodeMergeKey(t *testing.T) {
	src := `
base: &base
  type: object
  description: base
derived:
  <<: *base
  description: derived
`
	v, err := Decode([]byte(src))
	require.NoError(t, err)

	derived, ok := v.Get("derived")
	require.True(t, ok)
	assert.Equal(t, []string{"type", "description"}, derived.Keys())
	desc, _ := derived.Get("description")
	assert.Equal(t, "derived", desc.Interface())
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		input string
		want  Path
	}{
		{"", Path{}},
		{"/components/schemas/UserName/type", Path{"components", "schemas", "UserName", "type"}},
		{"/paths/~1item~1get/post", Path{"paths", "/item/get", "post"}},
		{"/a~0b", Path{"a~b"}},
	}

	for _, tt := range tests {
		got, err := ParsePath(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.input, got.String())
	}

	_, err := ParsePath("components/schemas")
	assert.Error(t, err)
}

func TestSetPathCreatesMissing(t *testing.T) {
	v, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	p := MustParsePath("/components/schemas/PartnerCustomersCreateRequest/type")
	require.NoError(t, v.SetPath(p, String("object")))

	got, ok := v.Lookup(p)
	require.True(t, ok)
	assert.Equal(t, "object", got.Interface())

	schemas, _ := v.Lookup(MustParsePath("/components/schemas"))
	assert.Equal(t, []string{"UserName", "Counts", "PartnerCustomersCreateRequest"}, schemas.Keys())
}

func TestSetPathKeepsPosition(t *testing.T) {
	v, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	require.NoError(t, v.SetPath(MustParsePath("/components/schemas/UserName/type"), String("object")))

	user, _ := v.Lookup(MustParsePath("/components/schemas/UserName"))
	assert.Equal(t, []string{"type", "properties"}, user.Keys())
	typ, _ := user.Get("type")
	assert.Equal(t, "object", typ.Interface())
}

func TestSetPathPromotesNull(t *testing.T) {
	v, err := Decode([]byte("components:\n  schemas:\n"))
	require.NoError(t, err)

	require.NoError(t, v.SetPath(MustParsePath("/components/schemas/UserName/type"), String("object")))

	want := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"UserName": map[string]any{"type": "object"},
			},
		},
	}
	if diff := cmp.Diff(want, v.ToAny()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestSetPathOnEmptyDocument(t *testing.T) {
	v := Null()
	require.NoError(t, v.SetPath(MustParsePath("/a/b"), Int(1)))
	got, ok := v.Lookup(MustParsePath("/a/b"))
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Interface())
}

func TestSetPathSequenceIndex(t *testing.T) {
	v, err := Decode([]byte("tags: [a, b, c]\n"))
	require.NoError(t, err)

	require.NoError(t, v.SetPath(MustParsePath("/tags/1"), String("x")))
	tags, _ := v.Get("tags")
	assert.Equal(t, []any{"a", "x", "c"}, tags.ToAny())
}

func TestSetPathConflict(t *testing.T) {
	v, err := Decode([]byte("info:\n  title: Plaid\ntags: [a]\n"))
	require.NoError(t, err)

	tests := []struct {
		path  string
		depth int
		kind  Kind
	}{
		{"/info/title/type", 2, KindScalar},
		{"/tags/3", 1, KindSequence},
		{"/tags/name/x", 1, KindSequence},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := v.SetPath(MustParsePath(tt.path), String("object"))
			var pe *PathError
			require.True(t, errors.As(err, &pe), "expected PathError, got %v", err)
			assert.Equal(t, tt.depth, pe.Depth)
			assert.Equal(t, tt.kind, pe.Kind)
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	overrides := []Override{
		{Path: MustParsePath("/components/schemas/UserName/type"), Value: String("object")},
		{Path: MustParsePath("/components/schemas/PartnerCustomersCreateRequest/type"), Value: String("object")},
	}

	once, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, Apply(once, overrides...))

	twice := once.Clone()
	require.NoError(t, Apply(twice, overrides...))

	assert.True(t, once.Equal(twice))
}

func TestApplyReportsRule(t *testing.T) {
	v, err := Decode([]byte("info: text\n"))
	require.NoError(t, err)

	err = Apply(v, Override{Path: MustParsePath("/info/title"), Value: String("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "override[0] /info/title")
}

func TestOverrideJSON(t *testing.T) {
	var rules []Override
	data := `[{"path": "/components/schemas/UserName/type", "value": "object"}, {"path": "/x~1y", "value": {"a": 1}}]`
	require.NoError(t, json.Unmarshal([]byte(data), &rules))
	require.Len(t, rules, 2)

	assert.Equal(t, Path{"components", "schemas", "UserName", "type"}, rules[0].Path)
	assert.Equal(t, "object", rules[0].Value.Interface())
	assert.Equal(t, Path{"x/y"}, rules[1].Path)
	assert.Equal(t, map[string]any{"a": int64(1)}, rules[1].Value.ToAny())

	out, err := json.Marshal(rules[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"path": "/components/schemas/UserName/type", "value": "object"}`, string(out))
}

func TestMarshalJSONOrdered(t *testing.T) {
	v := Mapping(
		Entry{Key: "z", Value: Int(1)},
		Entry{Key: "a", Value: Sequence(String("x"), Null(), Bool(false))},
		Entry{Key: "m", Value: Float(1.5)},
	)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":["x",null,false],"m":1.5}`, string(out))
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	v := Mapping(
		Entry{Key: "code", Value: String("123")},
		Entry{Key: "flag", Value: String("true")},
		Entry{Key: "ratio", Value: Float(1)},
		Entry{Key: "count", Value: Int(7)},
		Entry{Key: "nothing", Value: Null()},
		Entry{Key: "list", Value: Sequence(String("b"), String("a"))},
	)

	out, err := v.EncodeYAML()
	require.NoError(t, err)

	back, err := Decode(out)
	require.NoError(t, err)
	assert.True(t, v.Equal(back), "round trip changed the tree:\n%s", out)
}

func TestJSONDecodeThroughYAML(t *testing.T) {
	v, err := Decode([]byte(`{"b": {"y": 1, "x": 2}, "a": [1, 2.5]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, v.Keys())
	b, _ := v.Get("b")
	assert.Equal(t, []string{"y", "x"}, b.Keys())
}

func TestFromAnySortsKeys(t *testing.T) {
	v, err := FromAny(map[string]any{"b": 1, "a": []any{"x", json.Number("2.5")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Keys())

	_, err = FromAny(map[string]any{"bad": struct{}{}})
	assert.Error(t, err)
}

func TestConform(t *testing.T) {
	source, err := Decode([]byte(`
properties:
  client_id: {type: string}
  name: {type: string, description: full name}
  secret: {type: string}
  age: {type: integer}
`))
	require.NoError(t, err)

	// данные после правок: ключи отсортированы, client_id и secret удалены, nickname новый
	data, err := Decode([]byte(`
properties:
  age: {type: integer}
  name: {description: full name, type: string}
  nickname: {type: string}
`))
	require.NoError(t, err)

	got := Conform(data, source)
	props, _ := got.Get("properties")
	assert.Equal(t, []string{"name", "age", "nickname"}, props.Keys())

	name, _ := props.Get("name")
	assert.Equal(t, []string{"type", "description"}, name.Keys())
}

func TestMergeKeyOrder(t *testing.T) {
	tests := []struct {
		name   string
		source []string
		data   []string
		want   []string
	}{
		{"same", []string{"b", "a"}, []string{"a", "b"}, []string{"b", "a"}},
		{"removed", []string{"client_id", "secret", "name"}, []string{"name"}, []string{"name"}},
		{"extra sorted", []string{"b"}, []string{"d", "b", "c"}, []string{"b", "c", "d"}},
		{"no source", nil, []string{"y", "x"}, []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeKeyOrder(tt.source, tt.data))
		})
	}
}

func TestDeleteKeepsOrder(t *testing.T) {
	v := Mapping(
		Entry{Key: "client_id", Value: Null()},
		Entry{Key: "secret", Value: Null()},
		Entry{Key: "name", Value: Null()},
		Entry{Key: "email", Value: Null()},
	)

	assert.True(t, v.Delete("secret"))
	assert.False(t, v.Delete("secret"))
	assert.True(t, v.Delete("client_id"))
	assert.Equal(t, []string{"name", "email"}, v.Keys())
}

func TestCloneIsDeep(t *testing.T) {
	v := Mapping(Entry{Key: "a", Value: Mapping(Entry{Key: "b", Value: Int(1)})})
	c := v.Clone()
	require.NoError(t, c.SetPath(MustParsePath("/a/b"), Int(2)))

	orig, _ := v.Lookup(MustParsePath("/a/b"))
	assert.Equal(t, int64(1), orig.Interface())
	assert.False(t, v.Equal(c))
}
