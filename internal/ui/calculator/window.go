package calculator

import (
	"fmt"
	"strconv"
	"strings"

	"breathpacer/internal/core/fitness"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

const (
	sexFemale = "Female"
	sexMale   = "Male"
)

// Window is the fitness estimate calculator.
type Window struct {
	app        fyne.App
	window     fyne.Window
	logger     zerolog.Logger
	age        *widget.Entry
	weight     *widget.Entry
	height     *widget.Entry
	par        *widget.Entry
	sex        *widget.RadioGroup
	values     []*widget.Label
	errorLabel *widget.Label
	copyButton *widget.Button
	results    *fitness.Results
}

// New creates the calculator window.
func New(app fyne.App, logger zerolog.Logger) *Window {
	window := app.NewWindow("Fitness calculator")
	calc := &Window{
		app:    app,
		window: window,
		logger: logger.With().Str("component", "calculator").Logger(),
		age:    newNumberEntry("years"),
		weight: newNumberEntry("kg"),
		height: newNumberEntry("m"),
		par:    newNumberEntry("0-15"),
		sex:    widget.NewRadioGroup([]string{sexFemale, sexMale}, nil),
	}
	calc.sex.Horizontal = true
	calc.sex.SetSelected(sexFemale)

	calc.errorLabel = widget.NewLabel("")
	calc.errorLabel.Wrapping = fyne.TextWrapWord
	calc.copyButton = widget.NewButton("Copy results", calc.copyResults)
	calc.copyButton.Disable()

	inputs := widget.NewForm(
		widget.NewFormItem("Age", calc.age),
		widget.NewFormItem("Weight", calc.weight),
		widget.NewFormItem("Height", calc.height),
		widget.NewFormItem("PAR", calc.par),
		widget.NewFormItem("Sex", calc.sex),
	)

	results := container.New(layout.NewFormLayout())
	for _, row := range (fitness.Results{}).Rows() {
		value := widget.NewLabel("-")
		calc.values = append(calc.values, value)
		results.Add(widget.NewLabelWithStyle(row.Label, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		results.Add(value)
	}

	buttons := container.NewHBox(widget.NewButton("Compute", calc.compute), layout.NewSpacer(), calc.copyButton)
	window.SetContent(container.NewPadded(container.NewVBox(inputs, buttons, calc.errorLabel, widget.NewSeparator(), results)))
	window.Resize(fyne.NewSize(400, 520))
	window.SetCloseIntercept(window.Hide)

	return calc
}

// Show displays the calculator window.
func (calc *Window) Show() {
	calc.window.Show()
	calc.window.RequestFocus()
}

func (calc *Window) compute() {
	inputs, err := parseInputs(calc.age.Text, calc.weight.Text, calc.height.Text, calc.par.Text, calc.sex.Selected)
	if err == nil {
		var results fitness.Results
		results, err = fitness.Evaluate(inputs)
		if err == nil {
			calc.showResults(results)
			return
		}
	}

	calc.logger.Debug().Err(err).Msg("calculator input rejected")
	calc.results = nil
	calc.errorLabel.SetText(err.Error())
	calc.copyButton.Disable()
	for _, value := range calc.values {
		value.SetText("-")
	}
}

func (calc *Window) showResults(results fitness.Results) {
	calc.results = &results
	calc.errorLabel.SetText("")
	for index, row := range results.Rows() {
		calc.values[index].SetText(fitness.FormatValue(row.Value))
	}
	calc.copyButton.Enable()
}

func (calc *Window) copyResults() {
	if calc.results == nil {
		return
	}
	calc.app.Clipboard().SetContent(calc.results.Text())
}

func newNumberEntry(placeholder string) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetPlaceHolder(placeholder)
	return entry
}

func parseInputs(age, weight, height, par, sex string) (fitness.Inputs, error) {
	var inputs fitness.Inputs
	fields := []struct {
		name  string
		value string
		into  *float64
	}{
		{"age", age, &inputs.Age},
		{"weight", weight, &inputs.Weight},
		{"height", height, &inputs.Height},
		{"PAR", par, &inputs.PAR},
	}
	for _, field := range fields {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(field.value), 64)
		if err != nil {
			return fitness.Inputs{}, fmt.Errorf("%s %q is not a number: %w", field.name, field.value, fitness.ErrInvalidInput)
		}
		*field.into = parsed
	}

	switch sex {
	case sexFemale:
		inputs.Sex = fitness.SexFemale
	case sexMale:
		inputs.Sex = fitness.SexMale
	default:
		return fitness.Inputs{}, fmt.Errorf("sex must be selected: %w", fitness.ErrInvalidInput)
	}
	return inputs, nil
}
