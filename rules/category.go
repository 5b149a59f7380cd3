package rules

import "regexp"

// Category identifies one of the four submission categories. Only C1 and
// C3 have an actively maintained rule set; C2 and C4 are recognized by the
// CLI and dispatcher but exercise whatever rule table the reference
// service serves for them.
const (
	CategoryPUG = 1 // Plan Urbanistic General
	CategoryPUZ = 2 // Plan Urbanistic Zonal
	CategoryPUD = 3 // Plan Urbanistic de Detaliu
	CategoryCU  = 4 // Certificat de Urbanism
)

// categoryPrefixes documents the top-level directory naming convention each
// category's R4 rule typically checks against. These are not enforced
// directly - the rule table supplies the real regex in valoare_regula per
// §9.2 - but they give operators a quick reference when authoring rule
// tables for a new category.
var categoryPrefixes = map[int]*regexp.Regexp{
	CategoryPUG: regexp.MustCompile(`^PUG_`),
	CategoryPUZ: regexp.MustCompile(`^PUZ_`),
	CategoryPUD: regexp.MustCompile(`^PUD_`),
	CategoryCU:  regexp.MustCompile(`^CU_`),
}

// CategoryName returns the human-readable Romanian planning-document name
// for a category id, or "" if unrecognized.
func CategoryName(category int) string {
	switch category {
	case CategoryPUG:
		return "Plan Urbanistic General"
	case CategoryPUZ:
		return "Plan Urbanistic Zonal"
	case CategoryPUD:
		return "Plan Urbanistic de Detaliu"
	case CategoryCU:
		return "Certificat de Urbanism"
	default:
		return ""
	}
}

// ValidCategory reports whether category is one of the four recognized ids.
func ValidCategory(category int) bool {
	_, ok := categoryPrefixes[category]
	return ok
}

// ActiveCategories lists the categories this repository carries an actively
// maintained rule set for (C2 and C4 are recognized but pass through
// whatever the reference service serves for them - see the comment on the
// category constants above).
var ActiveCategories = []int{CategoryPUG, CategoryPUD}
