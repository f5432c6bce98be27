package tool

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RegisterBuiltins adds the built-in demo tools to a registry.
func RegisterBuiltins(registry *Registry) error {
	builtins := []Definition{
		{
			Name:        "get_current_time",
			Description: "Get the current local time of the server.",
			Handler:     getCurrentTime,
		},
		{
			Name:        "get_weather",
			Description: "Get the current weather for a specific location.",
			Parameters: []Parameter{
				{
					Name:        "location",
					Type:        "string",
					Description: "The location to get weather for (e.g., \"Seoul\", \"New York\", \"London\").",
					Required:    true,
				},
			},
			Handler: getWeather,
		},
	}

	for _, def := range builtins {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func getCurrentTime(ctx context.Context, args map[string]interface{}) (string, error) {
	now := time.Now()
	return fmt.Sprintf("Current local time: %s", now.Format("2006-01-02 15:04:05")), nil
}

var weatherConditions = []string{
	"Sunny", "Cloudy", "Partly Cloudy", "Rainy", "Snowy", "Foggy", "Windy",
}

// getWeather returns simulated weather data. It exists to exercise the tool
// loop, not to report real conditions.
func getWeather(ctx context.Context, args map[string]interface{}) (string, error) {
	location, _ := args["location"].(string)
	if location == "" {
		return "", fmt.Errorf("location cannot be empty")
	}

	condition := weatherConditions[rand.Intn(len(weatherConditions))]
	temperature := rand.Intn(46) - 10 // -10..35 C
	humidity := rand.Intn(61) + 30    // 30..90 %
	windSpeed := rand.Intn(31)        // 0..30 km/h

	return fmt.Sprintf(
		"Weather in %s:\n"+
			"  Condition: %s\n"+
			"  Temperature: %d°C\n"+
			"  Humidity: %d%%\n"+
			"  Wind Speed: %d km/h\n"+
			"  (Note: This is simulated weather data for demonstration)",
		location, condition, temperature, humidity, windSpeed,
	), nil
}
