// Package fitness evaluates the cycle-ergometer fitness estimates from age,
// body measurements, physical activity rating and sex.
package fitness

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidInput indicates an input outside its accepted range.
var ErrInvalidInput = errors.New("invalid input")

const (
	MinAge = 1
	MaxAge = 150
	MinPAR = 0
	MaxPAR = 15
)

// Sex is encoded as 0 for female and 1 for male, matching the regression
// coefficients.
type Sex int

const (
	SexFemale Sex = 0
	SexMale   Sex = 1
)

// Inputs are the user-entered parameters.
type Inputs struct {
	Age    float64 // years
	Weight float64 // kg
	Height float64 // m
	PAR    float64 // physical activity rating
	Sex    Sex
}

// Results holds every derived value at full precision.
type Results struct {
	BMI             float64
	VO2MaxEstimate  float64
	WMaxEstimate    float64
	Stage1Power     float64
	SubsequentPower float64
	PredictedVO2Max float64
	TrainedVO2Max   float64
	UntrainedLower  float64
	UntrainedUpper  float64
}

// Row is a labelled result for display.
type Row struct {
	Label string
	Value float64
}

// Validate checks the inputs against their accepted ranges.
func (inputs Inputs) Validate() error {
	switch {
	case math.IsNaN(inputs.Age) || inputs.Age < MinAge || inputs.Age > MaxAge:
		return fmt.Errorf("age %v not in [%d, %d]: %w", inputs.Age, MinAge, MaxAge, ErrInvalidInput)
	case math.IsNaN(inputs.Weight) || math.IsInf(inputs.Weight, 0) || inputs.Weight <= 0:
		return fmt.Errorf("weight %v must be positive: %w", inputs.Weight, ErrInvalidInput)
	case math.IsNaN(inputs.Height) || math.IsInf(inputs.Height, 0) || inputs.Height <= 0:
		return fmt.Errorf("height %v must be positive: %w", inputs.Height, ErrInvalidInput)
	case math.IsNaN(inputs.PAR) || inputs.PAR < MinPAR || inputs.PAR > MaxPAR:
		return fmt.Errorf("PAR %v not in [%d, %d]: %w", inputs.PAR, MinPAR, MaxPAR, ErrInvalidInput)
	case inputs.Sex != SexFemale && inputs.Sex != SexMale:
		return fmt.Errorf("sex %d must be 0 or 1: %w", inputs.Sex, ErrInvalidInput)
	}
	return nil
}

// Evaluate computes every estimate in dependency order. Intermediate values
// are never rounded.
func Evaluate(inputs Inputs) (Results, error) {
	if err := inputs.Validate(); err != nil {
		return Results{}, err
	}

	sex := float64(inputs.Sex)
	var results Results
	results.BMI = inputs.Weight / (inputs.Height * inputs.Height)
	results.VO2MaxEstimate = 56.363 + 1.921*inputs.PAR - 0.381*inputs.Age - 0.754*results.BMI + 10.987*sex
	results.WMaxEstimate = ((results.VO2MaxEstimate - 7) * inputs.Weight / 1.8) / 6.12
	results.Stage1Power = results.WMaxEstimate * 0.25
	results.SubsequentPower = (results.WMaxEstimate - results.Stage1Power) / 8
	results.PredictedVO2Max = 79.9 - 0.39*inputs.Age - 13.7*sex - 0.127*(inputs.Weight*2.2)
	results.TrainedVO2Max = results.PredictedVO2Max * 1.2
	results.UntrainedLower = results.PredictedVO2Max * 0.8
	results.UntrainedUpper = results.PredictedVO2Max * 1.0
	return results, nil
}

// Rows returns the results in evaluation order with display labels.
func (results Results) Rows() []Row {
	return []Row{
		{Label: "BMI", Value: results.BMI},
		{Label: "VO2max estimate", Value: results.VO2MaxEstimate},
		{Label: "Wmax estimate", Value: results.WMaxEstimate},
		{Label: "Stage 1 power", Value: results.Stage1Power},
		{Label: "Subsequent stage power", Value: results.SubsequentPower},
		{Label: "Predicted VO2max", Value: results.PredictedVO2Max},
		{Label: "Trained VO2max", Value: results.TrainedVO2Max},
		{Label: "Untrained VO2max lower", Value: results.UntrainedLower},
		{Label: "Untrained VO2max upper", Value: results.UntrainedUpper},
	}
}

// Text renders the rows as "label: value" lines.
func (results Results) Text() string {
	var builder strings.Builder
	for _, row := range results.Rows() {
		builder.WriteString(row.Label)
		builder.WriteString(": ")
		builder.WriteString(FormatValue(row.Value))
		builder.WriteByte('\n')
	}
	return builder.String()
}

// FormatValue rounds a value to 4 decimal places for display.
func FormatValue(value float64) string {
	return fmt.Sprintf("%.4f", value)
}
