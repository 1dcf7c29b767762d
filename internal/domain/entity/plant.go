package entity

import (
	"fmt"
	"strings"
)

// PlantRecord — структурированный результат распознавания растения.
type PlantRecord struct {
	Name           string `json:"name"`
	ScientificName string `json:"scientificName"`
	Family         string `json:"family"`
	Description    string `json:"description"`
	Care           string `json:"care"`
	FunFacts       string `json:"funFacts"`
}

// MissingFields возвращает JSON-имена пустых полей.
func (r PlantRecord) MissingFields() []string {
	fields := []struct {
		key   string
		value string
	}{
		{"name", r.Name},
		{"scientificName", r.ScientificName},
		{"family", r.Family},
		{"description", r.Description},
		{"care", r.Care},
		{"funFacts", r.FunFacts},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.key)
		}
	}
	return missing
}

// ShareSummary короткий текст для «поделиться» или копирования в буфер обмена.
func (r PlantRecord) ShareSummary() string {
	return fmt.Sprintf("I just identified a %s using Plantify! Scientific name: %s.", r.Name, r.ScientificName)
}
