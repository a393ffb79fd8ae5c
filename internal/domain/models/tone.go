package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ToneTrait is one scored stylistic dimension (0-100).
type ToneTrait struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ToneAnalysis is the structured result of a one-shot tone analysis request.
type ToneAnalysis struct {
	Overall    string      `json:"overall"`
	Confidence float64     `json:"confidence"`
	Traits     []ToneTrait `json:"traits"`
	Suggestion string      `json:"suggestion"`
}

// Validate checks the shape the backend promised: a non-empty label,
// confidence in [0,1] and every trait value in [0,100]. External responses
// are never trusted implicitly.
func (t ToneAnalysis) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Overall, validation.Required),
		validation.Field(&t.Confidence, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&t.Traits, validation.Each(validation.By(func(v interface{}) error {
			trait, _ := v.(ToneTrait)
			return validation.ValidateStruct(&trait,
				validation.Field(&trait.Label, validation.Required),
				validation.Field(&trait.Value, validation.Min(0.0), validation.Max(100.0)),
			)
		}))),
	)
}
