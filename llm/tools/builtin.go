package tools

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/types"
)

const absoluteZeroCelsius = -273.15
const absoluteZeroFahrenheit = -459.67

var weatherConditions = []string{"sunny", "cloudy", "partly cloudy", "rainy"}

// RegisterBuiltins registers the fixed tool set: weather lookup and
// forecast, arithmetic, square root, and pairwise temperature conversions.
// Weather data is simulated but schema-stable.
func RegisterBuiltins(r *Registry, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	specs := []Spec{
		{
			Name:        "getCurrentWeather",
			Description: "Get current weather for a location",
			Params:      []ParamSpec{{Name: "location", Type: ParamString, Description: "Location name"}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				location := args.String("location")
				logger.Info("getting weather", zap.String("location", location))
				temp := 15 + rand.IntN(20)
				condition := weatherConditions[rand.IntN(len(weatherConditions))]
				return fmt.Sprintf("The weather in %s is currently %d°C and %s.", location, temp, condition), nil
			},
		},
		{
			Name:        "getWeatherForecast",
			Description: "Get weather forecast for a location (1-7 days)",
			Params: []ParamSpec{
				{Name: "location", Type: ParamString, Description: "Location name"},
				{Name: "days", Type: ParamInt, Description: "Number of days (1-7)"},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				location := args.String("location")
				days := args.Int("days")
				logger.Info("getting forecast", zap.String("location", location), zap.Int("days", days))
				// Out-of-range days is an explanatory message, not an error.
				if days < 1 || days > 7 {
					return "Forecast is available for 1 to 7 days only.", nil
				}
				var b strings.Builder
				fmt.Fprintf(&b, "%d-day forecast for %s:\n", days, location)
				for i := 1; i <= days; i++ {
					temp := 15 + rand.IntN(20)
					condition := weatherConditions[rand.IntN(len(weatherConditions))]
					fmt.Fprintf(&b, "Day %d: %d°C, %s\n", i, temp, condition)
				}
				return b.String(), nil
			},
		},
		{
			Name:        "add",
			Description: "Calculate the sum of two numbers",
			Params:      numberPair(),
			Handler: func(ctx context.Context, args Args) (string, error) {
				return formatNumber(args.Float("a") + args.Float("b")), nil
			},
		},
		{
			Name:        "subtract",
			Description: "Calculate the difference between two numbers",
			Params:      numberPair(),
			Handler: func(ctx context.Context, args Args) (string, error) {
				return formatNumber(args.Float("a") - args.Float("b")), nil
			},
		},
		{
			Name:        "multiply",
			Description: "Calculate the product of two numbers",
			Params:      numberPair(),
			Handler: func(ctx context.Context, args Args) (string, error) {
				return formatNumber(args.Float("a") * args.Float("b")), nil
			},
		},
		{
			Name:        "divide",
			Description: "Calculate the division of two numbers",
			Params:      numberPair(),
			Handler: func(ctx context.Context, args Args) (string, error) {
				b := args.Float("b")
				if b == 0 {
					return "", types.NewDomainError("cannot divide by zero")
				}
				return formatNumber(args.Float("a") / b), nil
			},
		},
		{
			Name:        "power",
			Description: "Calculate the power of a number",
			Params: []ParamSpec{
				{Name: "base", Type: ParamFloat, Description: "Base number"},
				{Name: "exponent", Type: ParamFloat, Description: "Exponent"},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				return formatNumber(math.Pow(args.Float("base"), args.Float("exponent"))), nil
			},
		},
		{
			Name:        "squareRoot",
			Description: "Calculate the square root of a number",
			Params:      []ParamSpec{{Name: "number", Type: ParamFloat, Description: "Number"}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				n := args.Float("number")
				if n < 0 {
					return "", types.NewDomainError("cannot calculate square root of negative number")
				}
				return formatNumber(math.Sqrt(n)), nil
			},
		},
		{
			Name:        "celsiusToFahrenheit",
			Description: "Convert temperature from Celsius to Fahrenheit",
			Params:      []ParamSpec{{Name: "celsius", Type: ParamFloat, Description: "Temperature in Celsius"}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				c := args.Float("celsius")
				return fmt.Sprintf("%.1f°C = %.1f°F", c, c*9.0/5.0+32.0), nil
			},
		},
		{
			Name:        "fahrenheitToCelsius",
			Description: "Convert temperature from Fahrenheit to Celsius",
			Params:      []ParamSpec{{Name: "fahrenheit", Type: ParamFloat, Description: "Temperature in Fahrenheit"}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				f := args.Float("fahrenheit")
				return fmt.Sprintf("%.1f°F = %.1f°C", f, (f-32.0)*5.0/9.0), nil
			},
		},
		{
			Name:        "celsiusToKelvin",
			Description: "Convert temperature from Celsius to Kelvin",
			Params:      []ParamSpec{{Name: "celsius", Type: ParamFloat, Description: "Temperature in Celsius"}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				c := args.Float("celsius")
				if c < absoluteZeroCelsius {
					return "", types.NewDomainError("temperature cannot be below absolute zero (-273.15°C)")
				}
				return fmt.Sprintf("%.1f°C = %.2f K", c, c+273.15), nil
			},
		},
		{
			Name:        "kelvinToCelsius",
			Description: "Convert temperature from Kelvin to Celsius",
			Params:      []ParamSpec{{Name: "kelvin", Type: ParamFloat, Description: "Temperature in Kelvin"}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				k := args.Float("kelvin")
				if k < 0 {
					return "", types.NewDomainError("temperature cannot be below absolute zero (0 K)")
				}
				return fmt.Sprintf("%.2f K = %.1f°C", k, k-273.15), nil
			},
		},
		{
			Name:        "fahrenheitToKelvin",
			Description: "Convert temperature from Fahrenheit to Kelvin",
			Params:      []ParamSpec{{Name: "fahrenheit", Type: ParamFloat, Description: "Temperature in Fahrenheit"}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				f := args.Float("fahrenheit")
				if f < absoluteZeroFahrenheit {
					return "", types.NewDomainError("temperature cannot be below absolute zero (-459.67°F)")
				}
				return fmt.Sprintf("%.1f°F = %.2f K", f, (f-32.0)*5.0/9.0+273.15), nil
			},
		},
		{
			Name:        "kelvinToFahrenheit",
			Description: "Convert temperature from Kelvin to Fahrenheit",
			Params:      []ParamSpec{{Name: "kelvin", Type: ParamFloat, Description: "Temperature in Kelvin"}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				k := args.Float("kelvin")
				if k < 0 {
					return "", types.NewDomainError("temperature cannot be below absolute zero (0 K)")
				}
				return fmt.Sprintf("%.2f K = %.1f°F", k, (k-273.15)*9.0/5.0+32.0), nil
			},
		},
	}

	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			return err
		}
	}
	return nil
}

func numberPair() []ParamSpec {
	return []ParamSpec{
		{Name: "a", Type: ParamFloat, Description: "First number"},
		{Name: "b", Type: ParamFloat, Description: "Second number"},
	}
}

// formatNumber renders a result without trailing zeros, so integral
// results read as integers ("17", not "17.000000").
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
