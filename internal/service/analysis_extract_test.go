package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("fenced block with prose", func(t *testing.T) {
		raw, err := ExtractJSON("Here is the analysis:\n```json\n{\"name\": \"Espada de Diamante\", \"damage\": 7}\n```\nHope it helps!")
		require.NoError(t, err)
		assert.Equal(t, "Espada de Diamante", raw["name"])
	})

	t.Run("nested braces keep the outer object", func(t *testing.T) {
		raw, err := ExtractJSON(`{"name": "Bow", "stats": {"range": 30}}`)
		require.NoError(t, err)
		assert.Contains(t, raw, "stats")
	})

	tests := []struct {
		name string
		text string
	}{
		{"no braces", "I cannot see a weapon in this image."},
		{"only opening brace", "{ incomplete"},
		{"inverted braces", "} nothing here {"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractJSON(tt.text)
			require.ErrorIs(t, err, ErrNoJSONObject)
			assert.Equal(t, "no JSON object found in model response", err.Error())
		})
	}

	t.Run("invalid JSON between braces", func(t *testing.T) {
		_, err := ExtractJSON(`{"name": "Bow", damage: }`)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoJSONObject)
		assert.Contains(t, err.Error(), "invalid JSON")
	})

	t.Run("two objects in one reply", func(t *testing.T) {
		_, err := ExtractJSON(`Answer: {"name": "Iron Sword"} or maybe {"name": "Gold Sword"}`)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoJSONObject)
		assert.Contains(t, err.Error(), "invalid JSON")
	})
}

func TestNormalizeStats_CanonicalKeys(t *testing.T) {
	raw, err := ExtractJSON(`{
		"Nombre": "Tridente Encantado",
		"Tipo de Arma": "tridente",
		"RAREZA": "épica",
		"Daño": "+9",
		"Velocidad de Ataque": "1,1",
		"attack-speed-bonus": 3,
		"Durabilidad": 250,
		"alcance": "12 bloques",
		"Encantamientos": "Lealtad III, Canalización",
		"Descripción": "Vuelve al lanzador."
	}`)
	require.NoError(t, err)

	stats := NormalizeStats(raw)
	assert.Equal(t, "Tridente Encantado", stats.Name)
	assert.Equal(t, "tridente", stats.WeaponType)
	assert.Equal(t, "épica", stats.Rarity)
	require.NotNil(t, stats.Damage)
	assert.Equal(t, 9.0, *stats.Damage)
	require.NotNil(t, stats.AttackSpeed)
	assert.InDelta(t, 1.1, *stats.AttackSpeed, 1e-9)
	require.NotNil(t, stats.Durability)
	assert.Equal(t, 250.0, *stats.Durability)
	require.NotNil(t, stats.Range)
	assert.Equal(t, 12.0, *stats.Range)
	assert.Equal(t, []string{"Lealtad III", "Canalización"}, stats.Enchantments)
	assert.Equal(t, "Vuelve al lanzador.", stats.Description)
	assert.Equal(t, map[string]any{"attack-speed-bonus": 3.0}, stats.Extra)
}

func TestNormalizeStats_EnglishAndSeparators(t *testing.T) {
	raw, err := ExtractJSON(`{"weapon_name": "Crossbow", "Fire Rate": 1.25, "magazine-size": "1", "enchantments": ["Multishot", {"name": "Quick Charge", "level": 3}], "sound": "twang"}`)
	require.NoError(t, err)

	stats := NormalizeStats(raw)
	assert.Equal(t, "Crossbow", stats.Name)
	require.NotNil(t, stats.FireRate)
	assert.Equal(t, 1.25, *stats.FireRate)
	require.NotNil(t, stats.MagazineSize)
	assert.Equal(t, 1.0, *stats.MagazineSize)
	assert.Equal(t, []string{"Multishot", "Quick Charge 3"}, stats.Enchantments)
	assert.Equal(t, "twang", stats.Extra["sound"])
}

func TestNormalizeStats_NestedStatsObject(t *testing.T) {
	raw, err := ExtractJSON(`{"name": "Mace", "damage": 5, "stats": {"damage": 99, "durability": "500"}}`)
	require.NoError(t, err)

	stats := NormalizeStats(raw)
	require.NotNil(t, stats.Damage)
	assert.Equal(t, 5.0, *stats.Damage)
	require.NotNil(t, stats.Durability)
	assert.Equal(t, 500.0, *stats.Durability)
	assert.Equal(t, map[string]any{"damage": 99.0}, stats.Extra)
}

func TestNormalizeStats_DuplicateKeysResolveTheSameEveryTime(t *testing.T) {
	const reply = `{"name": "Iron Sword", "title": "Tooltip", "damage": 7, "dmg": "9", "stats": {"nombre": "Hidden"}}`
	for i := 0; i < 100; i++ {
		raw, err := ExtractJSON(reply)
		require.NoError(t, err)

		stats := NormalizeStats(raw)
		require.Equal(t, "Iron Sword", stats.Name)
		require.NotNil(t, stats.Damage)
		require.Equal(t, 7.0, *stats.Damage)
		require.Equal(t, map[string]any{"title": "Tooltip", "dmg": "9", "nombre": "Hidden"}, stats.Extra)
	}
}

func TestNormalizeStats_UncoercibleAliasFallsBack(t *testing.T) {
	raw, err := ExtractJSON(`{"damage": "lots", "dmg": 6}`)
	require.NoError(t, err)

	stats := NormalizeStats(raw)
	require.NotNil(t, stats.Damage)
	assert.Equal(t, 6.0, *stats.Damage)
	assert.Equal(t, map[string]any{"damage": "lots"}, stats.Extra)
}

func TestNormalizeStats_UnparseableNumbersGoToExtra(t *testing.T) {
	raw, err := ExtractJSON(`{"damage": "very high", "range": null}`)
	require.NoError(t, err)

	stats := NormalizeStats(raw)
	assert.Nil(t, stats.Damage)
	assert.Nil(t, stats.Range)
	assert.Equal(t, "very high", stats.Extra["damage"])
}

func TestNormalizeStats_NoRecognisedFields(t *testing.T) {
	raw, err := ExtractJSON(`{"color": "red", "weight": 3}`)
	require.NoError(t, err)

	stats := NormalizeStats(raw)
	assert.Empty(t, stats.Name)
	assert.Equal(t, map[string]any{"color": "red", "weight": 3.0}, stats.Extra)
}

func TestLenientNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"7.5", 7.5, true},
		{"+7", 7, true},
		{"1,6", 1.6, true},
		{"1,600.5", 1600.5, true},
		{"1,500", 1500, true},
		{"12,345,678", 12345678, true},
		{"1,50 m", 1.5, true},
		{"-3,25", -3.25, true},
		{"-2", -2, true},
		{" 12 hearts ", 12, true},
		{"abc", 0, false},
		{true, 0, false},
		{3.0, 3, true},
	}
	for _, tt := range tests {
		got, ok := lenientNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "%v", tt.in)
		}
	}
}
