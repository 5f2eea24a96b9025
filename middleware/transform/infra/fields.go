package infra

import (
	"reflect"
	"strconv"
	"strings"
)

// plainField descreve um campo de struct que sobrevive à conversão.
type plainField struct {
	name      string
	index     []int
	omitEmpty bool
	tagged    bool
}

// plainTag é o conteúdo da tag `plain:"..."`.
type plainTag struct {
	skip   bool
	groups []string
	since  *float64
	until  *float64
}

func parsePlainTag(tag string) plainTag {
	var pt plainTag
	if tag == "-" {
		pt.skip = true
		return pt
	}
	for _, part := range strings.Split(tag, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "groups":
			for _, g := range strings.Split(v, "|") {
				if g = strings.TrimSpace(g); g != "" {
					pt.groups = append(pt.groups, g)
				}
			}
		case "since":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				pt.since = &f
			}
		case "until":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				pt.until = &f
			}
		}
	}
	return pt
}

// typeFields devolve (com cache) os campos visíveis de t para esta configuração.
func (c *PlainConverter) typeFields(t reflect.Type) []plainField {
	if cached, ok := c.fields.Load(t); ok {
		return cached.([]plainField)
	}
	fields := c.collectFields(t, nil, map[reflect.Type]bool{})
	actual, _ := c.fields.LoadOrStore(t, fields)
	return actual.([]plainField)
}

func (c *PlainConverter) collectFields(t reflect.Type, prefix []int, visiting map[reflect.Type]bool) []plainField {
	if visiting[t] {
		return nil
	}
	visiting[t] = true
	defer delete(visiting, t)

	var direct []plainField
	var embedded [][]plainField

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		tag := sf.Tag.Get(c.tagName)
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if sf.Anonymous && name == "" {
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				embedded = append(embedded, c.collectFields(et, index, visiting))
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if isBehavior(sf.Type) {
			continue
		}
		tagged := name != ""
		if !tagged {
			name = sf.Name
		}
		if !c.visible(name, parsePlainTag(sf.Tag.Get("plain"))) {
			continue
		}
		direct = append(direct, plainField{
			name:      name,
			index:     index,
			omitEmpty: hasOption(opts, "omitempty"),
			tagged:    tagged,
		})
	}

	// campos do nível atual têm precedência sobre os promovidos
	taken := make(map[string]bool, len(direct))
	for _, f := range direct {
		taken[f.name] = true
	}
	out := direct

	// promovidos: vence o menos profundo; empate só se resolve por tag
	var order []string
	candidates := make(map[string][]plainField)
	for _, group := range embedded {
		for _, f := range group {
			if taken[f.name] {
				continue
			}
			if _, ok := candidates[f.name]; !ok {
				order = append(order, f.name)
			}
			candidates[f.name] = append(candidates[f.name], f)
		}
	}
	for _, name := range order {
		if f, ok := dominantField(candidates[name]); ok {
			out = append(out, f)
		}
	}
	return out
}

// dominantField segue a regra do encoding/json para nomes repetidos em
// structs embutidas: menor profundidade; no empate, o único com tag.
func dominantField(fields []plainField) (plainField, bool) {
	minDepth := len(fields[0].index)
	for _, f := range fields[1:] {
		if len(f.index) < minDepth {
			minDepth = len(f.index)
		}
	}
	var best []plainField
	for _, f := range fields {
		if len(f.index) == minDepth {
			best = append(best, f)
		}
	}
	if len(best) == 1 {
		return best[0], true
	}
	var tagged []plainField
	for _, f := range best {
		if f.tagged {
			tagged = append(tagged, f)
		}
	}
	if len(tagged) == 1 {
		return tagged[0], true
	}
	return plainField{}, false
}

func (c *PlainConverter) visible(name string, pt plainTag) bool {
	if pt.skip {
		return false
	}
	for _, p := range c.excludePrefixes {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	if len(pt.groups) > 0 {
		found := false
		for _, g := range pt.groups {
			if _, ok := c.groups[g]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.hasVersion {
		if pt.since != nil && c.version < *pt.since {
			return false
		}
		if pt.until != nil && c.version >= *pt.until {
			return false
		}
	}
	return true
}

// isBehavior indica campos que carregam comportamento, não dados.
func isBehavior(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == want {
			return true
		}
	}
	return false
}
