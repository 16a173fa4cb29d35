package engine

import (
	"math"
	"math/rand"
	"strings"
)

// Personalization is a rendered subject/body pair plus a quality score
// in [0,1] reflecting how complete the recipient profile was.
type Personalization struct {
	Subject string
	Body    string
	Score   float64
}

var greetingVariants = []string{"Hi", "Hello", "Hey", "Greetings"}

// requiredFields are the profile attributes that count towards the
// personalization score.
var requiredFields = []string{"name", "role", "company", "industry"}

// Personalize fills {{field}} placeholders in both templates with the
// given recipient fields plus a randomly chosen greeting. Missing
// fields render as empty strings; placeholders with no matching field
// at all are left as literal text.
func Personalize(subjectTemplate, bodyTemplate string, fields map[string]string, rng *rand.Rand) Personalization {
	augmented := make(map[string]string, len(fields)+1)
	for _, field := range requiredFields {
		augmented[field] = ""
	}
	for k, v := range fields {
		augmented[k] = v
	}
	augmented["greeting"] = greetingVariants[rng.Intn(len(greetingVariants))]

	filled := 0
	for _, field := range requiredFields {
		if augmented[field] != "" {
			filled++
		}
	}
	score := math.Min(1.0, 0.15*float64(filled)+0.1+rng.Float64()*0.15)

	return Personalization{
		Subject: interpolate(subjectTemplate, augmented),
		Body:    interpolate(bodyTemplate, augmented),
		Score:   round3(score),
	}
}

func interpolate(template string, fields map[string]string) string {
	text := template
	for key, value := range fields {
		text = strings.ReplaceAll(text, "{{"+key+"}}", value)
	}
	return text
}
