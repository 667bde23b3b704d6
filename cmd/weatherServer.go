package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"mcpgate/internal/bootstrap/logging"
	"mcpgate/internal/errs"
)

// cityWeather holds the canned conditions served for a known city.
type cityWeather struct {
	Temperature int
	Condition   string
	Humidity    int
}

var weatherData = map[string]cityWeather{
	"new york": {Temperature: 72, Condition: "Partly Cloudy", Humidity: 65},
	"london":   {Temperature: 58, Condition: "Rainy", Humidity: 80},
	"tokyo":    {Temperature: 68, Condition: "Clear", Humidity: 55},
	"sydney":   {Temperature: 82, Condition: "Sunny", Humidity: 45},
	"paris":    {Temperature: 62, Condition: "Overcast", Humidity: 70},
}

var defaultWeather = cityWeather{Temperature: 70, Condition: "Unknown", Humidity: 50}

var forecastConditions = []string{"Sunny", "Cloudy", "Rainy", "Clear", "Windy"}

type weatherArgs struct {
	City string `json:"city"`
}

type forecastArgs struct {
	City string `json:"city"`
	Days *int   `json:"days,omitempty"`
}

type alertsArgs struct {
	Region string `json:"region"`
}

type weatherReading struct {
	City        string `json:"city"`
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
	Humidity    int    `json:"humidity"`
	Unit        string `json:"unit"`
	Timestamp   string `json:"timestamp"`
}

type forecastDay struct {
	Day       int    `json:"day"`
	High      int    `json:"high"`
	Low       int    `json:"low"`
	Condition string `json:"condition"`
}

type forecastPayload struct {
	City     string        `json:"city"`
	Forecast []forecastDay `json:"forecast"`
}

type alertEntry struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type alertsPayload struct {
	Region string       `json:"region"`
	Alerts []alertEntry `json:"alerts"`
	Count  int          `json:"count"`
}

func lookupWeather(city string) cityWeather {
	if data, ok := weatherData[strings.ToLower(city)]; ok {
		return data
	}
	return defaultWeather
}

func handleGetWeather(_ context.Context, _ *mcp.CallToolRequest, args weatherArgs) (*mcp.CallToolResult, any, error) {
	data := lookupWeather(args.City)
	return weatherResult(weatherReading{
		City:        args.City,
		Temperature: data.Temperature,
		Condition:   data.Condition,
		Humidity:    data.Humidity,
		Unit:        "fahrenheit",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func handleGetForecast(_ context.Context, _ *mcp.CallToolRequest, args forecastArgs) (*mcp.CallToolResult, any, error) {
	days := 5
	if args.Days != nil {
		days = *args.Days
	}
	if days > 5 {
		days = 5
	}

	base := lookupWeather(args.City).Temperature
	forecast := []forecastDay{}
	for i := 0; i < days; i++ {
		forecast = append(forecast, forecastDay{
			Day:       i + 1,
			High:      base + 5 - i,
			Low:       base - 10 + i,
			Condition: forecastConditions[i%len(forecastConditions)],
		})
	}
	return weatherResult(forecastPayload{City: args.City, Forecast: forecast})
}

func handleGetAlerts(_ context.Context, _ *mcp.CallToolRequest, args alertsArgs) (*mcp.CallToolResult, any, error) {
	alerts := []alertEntry{}
	switch strings.ToLower(args.Region) {
	case "fl", "florida", "tx", "texas":
		alerts = append(alerts, alertEntry{
			Type:     "Hurricane Watch",
			Severity: "high",
			Message:  "Hurricane conditions possible within 48 hours",
		})
	}
	return weatherResult(alertsPayload{Region: args.Region, Alerts: alerts, Count: len(alerts)})
}

func weatherResult(payload any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, nil, errs.Wrap(err, "encode weather payload")
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}}}, nil, nil
}

func newWeatherServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "weather-server",
		Version: "1.0.0",
	}, &mcp.ServerOptions{HasTools: true})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_weather",
		Description: "Get current weather for a city",
	}, handleGetWeather)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_forecast",
		Description: "Get 5-day weather forecast for a city",
	}, handleGetForecast)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_alerts",
		Description: "Get weather alerts for a region",
	}, handleGetAlerts)

	return server
}

type weatherHealth struct {
	Status string `json:"status"`
	Server string `json:"server"`
}

// newWeatherHandler serves the MCP streamable transport under /mcp plus a
// plain health probe, mirroring what the gateway expects from an upstream.
func newWeatherHandler() http.Handler {
	server := newWeatherServer()
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamable)
	mux.Handle("/mcp/", streamable)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(weatherHealth{Status: "healthy", Server: "weather-server"})
	})
	return mux
}

var weatherServerCmd = &cobra.Command{
	Use:   "weather-server",
	Short: "Run the demo weather MCP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		port, _ := cmd.Flags().GetString("port")
		addr := net.JoinHostPort("0.0.0.0", port)

		server := &http.Server{
			Addr:    addr,
			Handler: newWeatherHandler(),
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		}

		logging.Info(ctx, "weather server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "weather server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve weather server")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weatherServerCmd)
	weatherServerCmd.Flags().String("port", envOr("PORT", "3001"), "Listen port")
}
