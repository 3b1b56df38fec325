package matching

import "strings"

// cityAliasGroups lists the spellings customers and providers actually type
// for each Jordanian governorate, Arabic and Latin side by side. Matching is
// done on normalized forms, so diacritics and definite articles are tolerated.
var cityAliasGroups = [][]string{
	{"amman", "عمان", "العاصمة"},
	{"irbid", "اربد"},
	{"zarqa", "zarqaa", "الزرقاء", "زرقاء"},
	{"aqaba", "العقبة", "عقبة"},
	{"salt", "balqa", "السلط", "سلط", "البلقاء"},
	{"madaba", "مادبا", "مأدبا"},
	{"jerash", "جرش"},
	{"ajloun", "عجلون"},
	{"mafraq", "المفرق", "مفرق"},
	{"karak", "الكرك", "كرك"},
	{"tafilah", "tafila", "الطفيلة", "طفيلة"},
	{"maan", "معان"},
	{"russeifa", "rusaifa", "الرصيفة", "رصيفة"},
}

var cityGroupIndex = buildCityGroupIndex()

func buildCityGroupIndex() map[string]int {
	index := make(map[string]int)
	for groupID, aliases := range cityAliasGroups {
		for _, alias := range aliases {
			index[normalizeCity(alias)] = groupID
		}
	}
	return index
}

// normalizeCity folds a city string to a canonical comparable form: trimmed,
// lowercased, Arabic diacritics and tatweel stripped, alef variants unified.
func normalizeCity(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 0x064B && r <= 0x0652: // harakat
			continue
		case r == 0x0670: // superscript alef
			continue
		case r == 0x0640: // tatweel
			continue
		case r == 'أ' || r == 'إ' || r == 'آ':
			b.WriteRune('ا')
		case r == 'ى':
			b.WriteRune('ي')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sameCity reports whether two raw city strings refer to the same place.
// Normalized equality and substring containment handle free-text entries like
// "عمان - الجبيهة"; the alias index bridges Arabic and Latin spellings.
func sameCity(a, b string) bool {
	na, nb := normalizeCity(a), normalizeCity(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	ga, okA := cityGroup(na)
	gb, okB := cityGroup(nb)
	return okA && okB && ga == gb
}

// cityGroup resolves a normalized city to its alias group, also matching when
// the free text merely contains a known alias.
func cityGroup(normalized string) (int, bool) {
	if groupID, ok := cityGroupIndex[normalized]; ok {
		return groupID, true
	}
	for alias, groupID := range cityGroupIndex {
		if strings.Contains(normalized, alias) {
			return groupID, true
		}
	}
	return 0, false
}
