package infra

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"transform-gateway/middleware/transform/domain"
)

var (
	plainerType       = reflect.TypeOf((*domain.Plainer)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// PlainConverter é a implementação de domain.Converter baseada em reflection.
//
// Structs viram map[string]any contendo apenas campos de dados exportados;
// métodos, funções e channels são descartados. Primitivos voltam inalterados.
// Seguro para uso concorrente.
type PlainConverter struct {
	tagName         string
	maxDepth        int
	excludePrefixes []string
	groups          map[string]struct{}
	version         float64
	hasVersion      bool

	fields sync.Map // reflect.Type -> []plainField
}

type PlainOption func(*PlainConverter)

// WithTagName define a tag usada para nome/omitempty dos campos (padrão "json").
func WithTagName(name string) PlainOption {
	return func(c *PlainConverter) {
		if name = strings.TrimSpace(name); name != "" {
			c.tagName = name
		}
	}
}

// WithMaxDepth limita o aninhamento (padrão 32). Valores <= 0 são ignorados.
func WithMaxDepth(n int) PlainOption {
	return func(c *PlainConverter) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithExcludePrefixes descarta campos cujo nome final começa com um dos prefixos (ex: "_").
func WithExcludePrefixes(prefixes ...string) PlainOption {
	return func(c *PlainConverter) {
		for _, p := range prefixes {
			if p = strings.TrimSpace(p); p != "" {
				c.excludePrefixes = append(c.excludePrefixes, p)
			}
		}
	}
}

// WithGroups habilita campos marcados com `plain:"groups=..."`.
// Sem grupos configurados, campos com grupos ficam de fora.
func WithGroups(groups ...string) PlainOption {
	return func(c *PlainConverter) {
		for _, g := range groups {
			if g = strings.TrimSpace(g); g != "" {
				c.groups[g] = struct{}{}
			}
		}
	}
}

// WithVersion habilita o filtro `plain:"since=X,until=Y"`: o campo aparece
// quando since <= versão < until.
func WithVersion(v float64) PlainOption {
	return func(c *PlainConverter) {
		c.version = v
		c.hasVersion = true
	}
}

func NewPlainConverter(opts ...PlainOption) *PlainConverter {
	c := &PlainConverter{
		tagName:  "json",
		maxDepth: 32,
		groups:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToPlain implementa domain.Converter.
func (c *PlainConverter) ToPlain(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	w := &walker{c: c, seen: make(map[visitKey]struct{})}
	return w.walk(reflect.ValueOf(v), "$", 0)
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

// walker guarda o estado de uma única conversão (detecção de ciclo no caminho atual).
type walker struct {
	c    *PlainConverter
	seen map[visitKey]struct{}
}

// fail localiza err no caminho. Na raiz o erro volta sem wrap.
func (w *walker) fail(path string, err error) error {
	if path == "$" {
		return err
	}
	return &domain.ConversionError{Path: path, Err: err}
}

func (w *walker) walk(v reflect.Value, path string, depth int) (any, error) {
	if depth > w.c.maxDepth {
		return nil, w.fail(path, domain.ErrMaxDepth)
	}
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil, nil
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		return w.walk(v.Elem(), path, depth)
	case reflect.Pointer:
		key := visitKey{ptr: v.Pointer(), typ: v.Type()}
		if _, ok := w.seen[key]; ok {
			return nil, w.fail(path, domain.ErrCircularReference)
		}
		w.seen[key] = struct{}{}
		defer delete(w.seen, key)
		return w.walk(v.Elem(), path, depth)
	}

	if p, ok := asPlainer(v); ok {
		pv, err := p.PlainValue()
		if err != nil {
			return nil, w.fail(path, err)
		}
		return w.walk(reflect.ValueOf(pv), path, depth+1)
	}
	if leaf, ok := asLeaf(v); ok {
		return leaf, nil
	}

	switch v.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return v.Interface(), nil
	case reflect.Struct:
		return w.walkStruct(v, path, depth)
	case reflect.Map:
		return w.walkMap(v, path, depth)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface(), nil
		}
		key := visitKey{ptr: v.Pointer(), typ: v.Type(), n: v.Len()}
		if _, ok := w.seen[key]; ok {
			return nil, w.fail(path, domain.ErrCircularReference)
		}
		w.seen[key] = struct{}{}
		defer delete(w.seen, key)
		return w.walkList(v, path, depth)
	case reflect.Array:
		return w.walkList(v, path, depth)
	default:
		return nil, w.fail(path, &domain.UnsupportedTypeError{Type: v.Type()})
	}
}

func (w *walker) walkStruct(v reflect.Value, path string, depth int) (any, error) {
	fields := w.c.typeFields(v.Type())
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		fv, err := v.FieldByIndexErr(f.index)
		if err != nil {
			// ponteiro embutido nil: não há campos promovidos para copiar
			continue
		}
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		pv, err := w.walk(fv, path+"."+f.name, depth+1)
		if err != nil {
			return nil, err
		}
		out[f.name] = pv
	}
	return out, nil
}

func (w *walker) walkMap(v reflect.Value, path string, depth int) (any, error) {
	key := visitKey{ptr: v.Pointer(), typ: v.Type()}
	if _, ok := w.seen[key]; ok {
		return nil, w.fail(path, domain.ErrCircularReference)
	}
	w.seen[key] = struct{}{}
	defer delete(w.seen, key)

	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := mapKey(iter.Key())
		if err != nil {
			return nil, w.fail(path, err)
		}
		pv, err := w.walk(iter.Value(), path+"."+k, depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = pv
	}
	return out, nil
}

func (w *walker) walkList(v reflect.Value, path string, depth int) (any, error) {
	out := make([]any, v.Len())
	for i := range out {
		pv, err := w.walk(v.Index(i), path+"["+strconv.Itoa(i)+"]", depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = pv
	}
	return out, nil
}

func asPlainer(v reflect.Value) (domain.Plainer, bool) {
	if v.Type().Implements(plainerType) && v.CanInterface() {
		return v.Interface().(domain.Plainer), true
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(plainerType) {
		return v.Addr().Interface().(domain.Plainer), true
	}
	return nil, false
}

// asLeaf trata tipos que já sabem se serializar (time.Time, json.RawMessage...).
func asLeaf(v reflect.Value) (any, bool) {
	t := v.Type()
	if !v.CanInterface() {
		return nil, false
	}
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return v.Interface(), true
	}
	if v.CanAddr() {
		pt := reflect.PointerTo(t)
		if pt.Implements(jsonMarshalerType) || pt.Implements(textMarshalerType) {
			return v.Addr().Interface(), true
		}
	}
	return nil, false
}

func mapKey(k reflect.Value) (string, error) {
	// map[any]any (ex: saída de decoders YAML): usa o tipo dinâmico da chave
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "", &domain.UnsupportedTypeError{Type: k.Type()}
		}
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if k.Type().Implements(textMarshalerType) {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", nil
		}
		b, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", &domain.UnsupportedTypeError{Type: k.Type()}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
