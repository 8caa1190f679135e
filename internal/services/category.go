package services

import "regexp"

const (
	CategoryShopping = "קניות"
	CategoryHome     = "בית"
	CategoryWork     = "עבודה"
	CategoryHealth   = "בריאות"
	CategoryPersonal = "אישי"
	CategoryStudy    = "לימודים"
	CategoryVehicle  = "רכב"
	CategoryGeneral  = "כללי"
)

type categoryRule struct {
	label   string
	pattern *regexp.Regexp
}

// Order matters: the first matching rule wins.
var categoryRules = []categoryRule{
	{CategoryShopping, regexp.MustCompile(`(?i)(קנ|חנות|סופר|קוני|רכיש)`)},
	{CategoryHome, regexp.MustCompile(`(?i)(בית|ניקיון|סידור|כביסה|מטבח)`)},
	{CategoryWork, regexp.MustCompile(`(?i)(עבודה|פרויקט|מצגת|דוח|פגישה|משרד)`)},
	{CategoryHealth, regexp.MustCompile(`(?i)(רופא|תור|ספורט|כושר|בריאות|מחלה)`)},
	{CategoryPersonal, regexp.MustCompile(`(?i)(התקשר|פגש|מכתב|אימייל|צלצל)`)},
	{CategoryStudy, regexp.MustCompile(`(?i)(לימוד|בחינה|קורס|ספר|מחקר)`)},
	{CategoryVehicle, regexp.MustCompile(`(?i)(מכונית|רכב|דלק|צמיגים|מוסך)`)},
}

// Categorize maps free text to a category label, CategoryGeneral when nothing matches.
func Categorize(text string) string {
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(text) {
			return rule.label
		}
	}
	return CategoryGeneral
}

// Categories lists every label Categorize can return, in rule order.
func Categories() []string {
	out := make([]string, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		out = append(out, rule.label)
	}
	return append(out, CategoryGeneral)
}
