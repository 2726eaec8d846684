package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"craftnexus/internal/models"
	"craftnexus/internal/slug"
)

// ErrNoJSONObject is returned when a model response holds no {...} span.
var ErrNoJSONObject = errors.New("no JSON object found in model response")

// ExtractJSON parses the object spanning from the first '{' to the last '}'
// of a free-form model response. Prose or code fences around it are ignored.
func ExtractJSON(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSONObject
	}

	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}
	// The span must hold exactly one value: "{...} or {...}" is not an object.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON in model response: trailing data after object")
	}
	if out == nil {
		return nil, ErrNoJSONObject
	}
	return out, nil
}

const (
	fieldName         = "name"
	fieldWeaponType   = "weapon_type"
	fieldRarity       = "rarity"
	fieldDamage       = "damage"
	fieldAttackSpeed  = "attack_speed"
	fieldFireRate     = "fire_rate"
	fieldMagazineSize = "magazine_size"
	fieldDurability   = "durability"
	fieldRange        = "range"
	fieldEnchantments = "enchantments"
	fieldDescription  = "description"
)

// fieldAliases lists, per canonical field, the folded keys (lowercase, no
// accents, no separators) that map to it in order of preference. English and
// Spanish spellings both show up in responses.
var fieldAliases = map[string][]string{
	fieldName:         {"name", "nombre", "weaponname", "title", "item"},
	fieldWeaponType:   {"weapontype", "tipodearma", "type", "tipo", "category", "class"},
	fieldRarity:       {"rarity", "rareza", "tier"},
	fieldDamage:       {"damage", "dano", "attackdamage", "basedamage", "dmg", "ataque"},
	fieldAttackSpeed:  {"attackspeed", "velocidaddeataque", "speed", "velocidad"},
	fieldFireRate:     {"firerate", "rateoffire", "cadenciadefuego", "cadencia", "rpm"},
	fieldMagazineSize: {"magazinesize", "magazine", "clipsize", "cargador", "ammo", "municion"},
	fieldDurability:   {"durability", "durabilidad", "maxdurability"},
	fieldRange:        {"range", "alcance", "rango"},
	fieldEnchantments: {"enchantments", "encantamientos", "enchants", "enchantment"},
	fieldDescription:  {"description", "descripcion", "summary", "lore", "notes"},
}

type aliasEntry struct {
	field string
	rank  int
}

var statAliases = func() map[string]aliasEntry {
	out := make(map[string]aliasEntry)
	for field, aliases := range fieldAliases {
		for i, a := range aliases {
			out[a] = aliasEntry{field: field, rank: i}
		}
	}
	return out
}()

// nestedStatKeys hold objects whose fields are merged into the top level.
var nestedStatKeys = map[string]bool{
	"stats": true, "estadisticas": true, "attributes": true, "atributos": true,
}

var (
	leadingNumber = regexp.MustCompile(`^-?\d+(\.\d+)?`)
	decimalComma  = regexp.MustCompile(`^-?\d+,\d{1,2}(\D|$)`)
)

func foldKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(slug.Fold(k)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// statCandidate is one key of the response that could fill a field.
type statCandidate struct {
	key    string
	value  any
	nested bool
	rank   int
}

// less orders candidates for the same field: top-level keys before keys
// from a nested stats object, then alias preference, then the raw key.
func (c statCandidate) less(o statCandidate) bool {
	if c.nested != o.nested {
		return !c.nested
	}
	if c.rank != o.rank {
		return c.rank < o.rank
	}
	return c.key < o.key
}

// NormalizeStats maps an extracted object onto WeaponStats. When several keys
// name the same field the preferred one wins and the rest are kept in Extra,
// together with unrecognised keys and values that cannot be coerced. The
// result depends only on the input, never on map iteration order.
func NormalizeStats(raw map[string]any) *models.WeaponStats {
	stats := &models.WeaponStats{}
	extra := func(k string, v any) {
		if stats.Extra == nil {
			stats.Extra = map[string]any{}
		}
		if _, taken := stats.Extra[k]; !taken {
			stats.Extra[k] = plainValue(v)
		}
	}

	byField := make(map[string][]statCandidate)
	var unknown []statCandidate
	collect := func(k string, v any, nested bool) {
		if v == nil {
			return
		}
		alias, known := statAliases[foldKey(k)]
		if !known {
			unknown = append(unknown, statCandidate{key: k, value: v, nested: nested})
			return
		}
		byField[alias.field] = append(byField[alias.field], statCandidate{key: k, value: v, nested: nested, rank: alias.rank})
	}
	for k, v := range raw {
		if inner, ok := v.(map[string]any); ok && nestedStatKeys[foldKey(k)] {
			for nk, nv := range inner {
				collect(nk, nv, true)
			}
			continue
		}
		collect(k, v, false)
	}

	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var losers []statCandidate
	for _, field := range fields {
		cands := byField[field]
		sort.Slice(cands, func(i, j int) bool { return cands[i].less(cands[j]) })
		filled := false
		for _, c := range cands {
			if filled || !assignStat(stats, field, c.value) {
				losers = append(losers, c)
				continue
			}
			filled = true
		}
	}

	// Top-level keys claim Extra names before nested ones.
	rest := append(unknown, losers...)
	sort.Slice(rest, func(i, j int) bool { return rest[i].less(rest[j]) })
	for _, c := range rest {
		extra(c.key, c.value)
	}
	return stats
}

// assignStat stores v into field, reporting false when v cannot be coerced.
func assignStat(stats *models.WeaponStats, field string, v any) bool {
	switch field {
	case fieldName:
		stats.Name = stringValue(v)
	case fieldWeaponType:
		stats.WeaponType = stringValue(v)
	case fieldRarity:
		stats.Rarity = stringValue(v)
	case fieldDescription:
		stats.Description = stringValue(v)
	case fieldEnchantments:
		stats.Enchantments = stringList(v)
	default:
		n, ok := lenientNumber(v)
		if !ok {
			return false
		}
		switch field {
		case fieldDamage:
			stats.Damage = &n
		case fieldAttackSpeed:
			stats.AttackSpeed = &n
		case fieldFireRate:
			stats.FireRate = &n
		case fieldMagazineSize:
			stats.MagazineSize = &n
		case fieldDurability:
			stats.Durability = &n
		case fieldRange:
			stats.Range = &n
		}
	}
	return true
}

// lenientNumber accepts JSON numbers and strings such as "7.5", "+7", "1,6",
// "1,500" or "12 hearts". A comma is a decimal separator only when it is the
// sole separator and one or two digits follow it.
func lenientNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "+")
		if decimalComma.MatchString(s) {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
		m := leadingNumber.FindString(s)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	}
	return 0, false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	b, err := json.Marshal(plainValue(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// stringList accepts ["Sharpness V", ...], "Sharpness V, Unbreaking III" or
// [{"name": "Sharpness", "level": 5}].
func stringList(v any) []string {
	var parts []string
	switch l := v.(type) {
	case []any:
		for _, item := range l {
			if obj, ok := item.(map[string]any); ok {
				parts = append(parts, enchantmentFromObject(obj))
				continue
			}
			parts = append(parts, stringValue(item))
		}
	case string:
		parts = strings.FieldsFunc(l, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	default:
		parts = []string{stringValue(v)}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func enchantmentFromObject(obj map[string]any) string {
	// Lowest raw key wins when two keys fold the same way.
	folded := make(map[string]string, len(obj))
	for k := range obj {
		fk := foldKey(k)
		if prev, dup := folded[fk]; !dup || k < prev {
			folded[fk] = k
		}
	}
	pick := func(keys ...string) string {
		for _, want := range keys {
			if k, ok := folded[want]; ok && obj[k] != nil {
				return stringValue(obj[k])
			}
		}
		return ""
	}
	name := pick("name", "nombre", "enchantment")
	level := pick("level", "nivel", "lvl")
	if name == "" {
		return stringValue(obj)
	}
	if level != "" {
		return name + " " + level
	}
	return name
}

// plainValue converts json.Number leaves so Extra serializes as plain JSON numbers.
func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = plainValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = plainValue(inner)
		}
		return out
	}
	return v
}
