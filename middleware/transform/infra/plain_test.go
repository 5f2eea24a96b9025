package infra

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"transform-gateway/middleware/transform/domain"
)

type address struct {
	City string `json:"city"`
	Zip  string `json:"zip,omitempty"`
}

type user struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Password string            `json:"-"`
	Address  *address          `json:"address,omitempty"`
	Tags     []string          `json:"tags"`
	Meta     map[string]int    `json:"meta,omitempty"`
	OnSave   func()            `json:"onSave"`
	Updates  chan struct{}     `json:"updates"`
	internal string
	Extra    map[string]string `json:"extra,omitempty"`
}

// DisplayName é comportamento: não deve aparecer na saída.
func (u user) DisplayName() string { return "user:" + u.Name }

func TestPlainConverter_StructKeepsOnlyData(t *testing.T) {
	c := NewPlainConverter()

	in := user{
		ID:       1,
		Name:     "ana",
		Password: "secret",
		Address:  &address{City: "Recife"},
		Tags:     []string{"a", "b"},
		OnSave:   func() {},
		Updates:  make(chan struct{}),
		internal: "x",
	}

	out, err := c.ToPlain(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{
		"id":      1,
		"name":    "ana",
		"address": map[string]any{"city": "Recife"},
		"tags":    []any{"a", "b"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("unexpected plain value:\n got: %#v\nwant: %#v", out, want)
	}
}

func TestPlainConverter_PrimitivesUnchanged(t *testing.T) {
	c := NewPlainConverter()

	type celsius float64
	for _, in := range []any{42, int64(-3), uint8(7), 3.14, "hello", true, celsius(21.5)} {
		out, err := c.ToPlain(in)
		if err != nil {
			t.Fatalf("unexpected error for %#v: %v", in, err)
		}
		if out != in {
			t.Fatalf("expected %#v unchanged, got %#v", in, out)
		}
	}
}

func TestPlainConverter_NilValues(t *testing.T) {
	c := NewPlainConverter()

	var p *user
	var m map[string]int
	var s []int
	for _, in := range []any{nil, p, m, s} {
		out, err := c.ToPlain(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != nil {
			t.Fatalf("expected nil for %#v, got %#v", in, out)
		}
	}
}

func TestPlainConverter_IdempotentOnPlainValues(t *testing.T) {
	c := NewPlainConverter()

	first, err := c.ToPlain(user{ID: 2, Name: "bia", Meta: map[string]int{"n": 1}, Tags: []string{"x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.ToPlain(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected idempotent conversion:\n first: %#v\nsecond: %#v", first, second)
	}
}

func TestPlainConverter_TimeIsLeaf(t *testing.T) {
	c := NewPlainConverter()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	out, err := c.ToPlain(struct {
		At time.Time `json:"at"`
	}{At: at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]any)
	got, ok := m["at"].(time.Time)
	if !ok || !got.Equal(at) {
		t.Fatalf("expected time.Time leaf, got %#v", m["at"])
	}
}

type money struct {
	cents int64
}

func (m money) PlainValue() (any, error) {
	return map[string]any{"amount": float64(m.cents) / 100}, nil
}

type invoice struct {
	Total money `json:"total"`
}

func TestPlainConverter_UsesPlainer(t *testing.T) {
	c := NewPlainConverter()

	out, err := c.ToPlain(invoice{Total: money{cents: 1050}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"total": map[string]any{"amount": 10.5}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}
}

type failing struct{}

var errFailing = errors.New("failing plain value")

func (failing) PlainValue() (any, error) { return nil, errFailing }

func TestPlainConverter_PlainerErrorAtRootIsUnchanged(t *testing.T) {
	_, err := NewPlainConverter().ToPlain(failing{})
	if err != errFailing {
		t.Fatalf("expected plainer error unchanged, got %v", err)
	}
}

func TestPlainConverter_NestedErrorCarriesPath(t *testing.T) {
	in := map[string]any{"items": []any{1, failing{}}}

	_, err := NewPlainConverter().ToPlain(in)

	var ce *domain.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if ce.Path != "$.items[1]" {
		t.Fatalf("expected path $.items[1], got %q", ce.Path)
	}
	if !errors.Is(err, errFailing) {
		t.Fatalf("expected cause to be errFailing")
	}
}

type node struct {
	Name string `json:"name"`
	Next *node  `json:"next,omitempty"`
}

func TestPlainConverter_DetectsCycles(t *testing.T) {
	a := &node{Name: "a"}
	b := &node{Name: "b", Next: a}
	a.Next = b

	_, err := NewPlainConverter().ToPlain(a)
	if !errors.Is(err, domain.ErrCircularReference) {
		t.Fatalf("expected ErrCircularReference, got %v", err)
	}
}

func TestPlainConverter_SharedPointerIsNotACycle(t *testing.T) {
	shared := &address{City: "Natal"}
	in := struct {
		Home *address `json:"home"`
		Work *address `json:"work"`
	}{Home: shared, Work: shared}

	out, err := NewPlainConverter().ToPlain(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]any)
	if !reflect.DeepEqual(m["home"], m["work"]) {
		t.Fatalf("expected both fields converted, got %#v", m)
	}
}

func TestPlainConverter_MaxDepth(t *testing.T) {
	deep := &node{Name: "0"}
	cur := deep
	for i := 0; i < 10; i++ {
		cur.Next = &node{Name: "n"}
		cur = cur.Next
	}

	_, err := NewPlainConverter(WithMaxDepth(3)).ToPlain(deep)
	if !errors.Is(err, domain.ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
}

func TestPlainConverter_UnsupportedTopLevel(t *testing.T) {
	_, err := NewPlainConverter().ToPlain(func() {})

	var ute *domain.UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
}

type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type article struct {
	Base
	ID    string `json:"articleId"`
	Title string `json:"title"`
}

func TestPlainConverter_FlattensEmbedded(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	out, err := NewPlainConverter().ToPlain(article{
		Base:  Base{ID: "b1", CreatedAt: at},
		ID:    "a1",
		Title: "hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]any)
	if m["id"] != "b1" || m["articleId"] != "a1" || m["title"] != "hi" {
		t.Fatalf("unexpected flattening: %#v", m)
	}
	if _, ok := m["Base"]; ok {
		t.Fatalf("embedded struct should be flattened, got key Base")
	}
}

func TestPlainConverter_MapKeys(t *testing.T) {
	out, err := NewPlainConverter().ToPlain(map[int]string{1: "one", 2: "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"1": "one", "2": "two"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}

	_, err = NewPlainConverter().ToPlain(map[[2]int]string{{1, 2}: "x"})
	var ute *domain.UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnsupportedTypeError for array keys, got %v", err)
	}
}

type profile struct {
	Name   string `json:"name"`
	Email  string `json:"email" plain:"groups=owner|admin"`
	Notes  string `json:"notes" plain:"-"`
	Legacy string `json:"legacy" plain:"until=2"`
	Badge  string `json:"badge" plain:"since=2"`
	XToken string `json:"_token"`
}

func TestPlainConverter_GroupsVersionsAndPrefixes(t *testing.T) {
	p := profile{Name: "ana", Email: "a@x", Notes: "n", Legacy: "l", Badge: "b", XToken: "t"}

	out, err := NewPlainConverter().ToPlain(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"name": "ana", "legacy": "l", "badge": "b", "_token": "t"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("default options: got %#v, want %#v", out, want)
	}

	c := NewPlainConverter(WithGroups("admin"), WithVersion(2), WithExcludePrefixes("_"))
	out, err = c.ToPlain(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = map[string]any{"name": "ana", "email": "a@x", "badge": "b"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("admin v2: got %#v, want %#v", out, want)
	}
}

func TestPlainConverter_CustomTagName(t *testing.T) {
	type row struct {
		Name string `db:"full_name" json:"name"`
	}

	out, err := NewPlainConverter(WithTagName("db")).ToPlain(row{Name: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"full_name": "x"}) {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestPlainConverter_BytesAreLeaf(t *testing.T) {
	out, err := NewPlainConverter().ToPlain([]byte("raw"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := out.([]byte); !ok || string(b) != "raw" {
		t.Fatalf("expected []byte leaf, got %#v", out)
	}
}

type sideA struct {
	Name string
}

type sideB struct {
	Name string
}

type taggedSide struct {
	Name string `json:"name"`
}

type deepSide struct {
	sideA
}

func TestPlainConverter_AmbiguousEmbeddedNamesAreDropped(t *testing.T) {
	c := NewPlainConverter()

	// mesmo nome, mesma profundidade, nenhum com tag: some (como no encoding/json)
	out, err := c.ToPlain(struct {
		sideA
		sideB
	}{sideA{"a"}, sideB{"b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{}) {
		t.Fatalf("expected ambiguous field to be dropped, got %#v", out)
	}

	// "Name" (sem tag) e "name" (com tag) são nomes distintos
	out, err = c.ToPlain(struct {
		sideA
		taggedSide
	}{sideA{"a"}, taggedSide{"t"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]any)
	if m["name"] != "t" || len(m) != 2 || m["Name"] != "a" {
		t.Fatalf("unexpected fields %#v", m)
	}

	// o menos profundo vence
	out, err = c.ToPlain(struct {
		deepSide
		sideB
	}{deepSide{sideA{"deep"}}, sideB{"shallow"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"Name": "shallow"}) {
		t.Fatalf("expected shallower field to win, got %#v", out)
	}
}

func TestPlainConverter_InterfaceMapKeys(t *testing.T) {
	in := map[any]any{"k": 1, 2: "two"}

	out, err := NewPlainConverter().ToPlain(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"k": 1, "2": "two"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}

	_, err = NewPlainConverter().ToPlain(map[any]any{nil: 1})
	var ute *domain.UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnsupportedTypeError for nil key, got %v", err)
	}
}

type taggedSideB struct {
	Name string `json:"Name"`
}

func TestPlainConverter_TagBreaksEmbeddedTie(t *testing.T) {
	out, err := NewPlainConverter().ToPlain(struct {
		sideA
		taggedSideB
	}{sideA{"a"}, taggedSideB{"b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"Name": "b"}) {
		t.Fatalf("expected tagged field to win the tie, got %#v", out)
	}
}
