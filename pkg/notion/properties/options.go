package properties

import (
	"fmt"
	"strings"
)

// Color names accepted for options and rich text annotations.
type Color string

const (
	ColorDefault Color = "default"
	ColorGray    Color = "gray"
	ColorBrown   Color = "brown"
	ColorOrange  Color = "orange"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorPurple  Color = "purple"
	ColorPink    Color = "pink"
	ColorRed     Color = "red"
)

// Background returns the background variant of a color. Background variants
// are only valid on rich text annotations, not on options.
func (c Color) Background() Color {
	return c + "_background"
}

// Function enumerates the rollup aggregation functions the service accepts.
// Arbitrary strings are rejected server side, so the set is closed here too.
type Function string

const (
	FunctionCount            Function = "count"
	FunctionCountValues      Function = "count_values"
	FunctionEmpty            Function = "empty"
	FunctionNotEmpty         Function = "not_empty"
	FunctionUnique           Function = "unique"
	FunctionShowUnique       Function = "show_unique"
	FunctionPercentEmpty     Function = "percent_empty"
	FunctionPercentNotEmpty  Function = "percent_not_empty"
	FunctionSum              Function = "sum"
	FunctionAverage          Function = "average"
	FunctionMedian           Function = "median"
	FunctionMin              Function = "min"
	FunctionMax              Function = "max"
	FunctionRange            Function = "range"
	FunctionEarliestDate     Function = "earliest_date"
	FunctionLatestDate       Function = "latest_date"
	FunctionDateRange        Function = "date_range"
	FunctionChecked          Function = "checked"
	FunctionUnchecked        Function = "unchecked"
	FunctionPercentChecked   Function = "percent_checked"
	FunctionPercentUnchecked Function = "percent_unchecked"
	FunctionCountPerGroup    Function = "count_per_group"
	FunctionPercentPerGroup  Function = "percent_per_group"
	FunctionShowOriginal     Function = "show_original"
)

var knownFunctions = map[Function]struct{}{
	FunctionCount: {}, FunctionCountValues: {}, FunctionEmpty: {},
	FunctionNotEmpty: {}, FunctionUnique: {}, FunctionShowUnique: {},
	FunctionPercentEmpty: {}, FunctionPercentNotEmpty: {}, FunctionSum: {},
	FunctionAverage: {}, FunctionMedian: {}, FunctionMin: {}, FunctionMax: {},
	FunctionRange: {}, FunctionEarliestDate: {}, FunctionLatestDate: {},
	FunctionDateRange: {}, FunctionChecked: {}, FunctionUnchecked: {},
	FunctionPercentChecked: {}, FunctionPercentUnchecked: {},
	FunctionCountPerGroup: {}, FunctionPercentPerGroup: {},
	FunctionShowOriginal: {},
}

func (f Function) valid() bool {
	_, ok := knownFunctions[f]
	return ok
}

// NumberFormat enumerates the display formats for number columns.
type NumberFormat string

const (
	FormatNumber           NumberFormat = "number"
	FormatNumberWithCommas NumberFormat = "number_with_commas"
	FormatPercent          NumberFormat = "percent"
	FormatDollar           NumberFormat = "dollar"
	FormatEuro             NumberFormat = "euro"
	FormatPound            NumberFormat = "pound"
	FormatYen              NumberFormat = "yen"
	FormatRuble            NumberFormat = "ruble"
	FormatRupee            NumberFormat = "rupee"
	FormatWon              NumberFormat = "won"
	FormatYuan             NumberFormat = "yuan"
)

// Option is one select, multi select or status choice.
type Option struct {
	Name  string
	Color Color
}

// NewOption validates and returns an option. Commas are not valid in option
// names (a documented constraint of the select endpoints), so they are
// rejected here rather than transmitted.
func NewOption(name string, color Color) (Option, error) {
	if strings.Contains(name, ",") {
		return Option{}, fmt.Errorf("option name %q must not contain commas", name)
	}

	return Option{Name: name, Color: color}, nil
}

func (o Option) MarshalJSON() ([]byte, error) {
	obj := newWire()
	obj.Set("name", o.Name)
	if o.Color != "" {
		obj.Set("color", string(o.Color))
	}
	return obj.MarshalJSON()
}

// Group is a status column group heading.
type Group struct {
	Name  string
	Color Color
}

func NewGroup(name string, color Color) (Group, error) {
	if strings.Contains(name, ",") {
		return Group{}, fmt.Errorf("group name %q must not contain commas", name)
	}

	return Group{Name: name, Color: color}, nil
}

func (g Group) MarshalJSON() ([]byte, error) {
	obj := newWire()
	obj.Set("name", g.Name)
	if g.Color != "" {
		obj.Set("color", string(g.Color))
	}
	return obj.MarshalJSON()
}
