package model

import (
	"errors"
	"fmt"
)

var ErrWeatherOutOfRange = errors.New("weather score out of range")

const (
	MinWeatherScore = 0
	MaxWeatherScore = 99
)

// WeatherObservation contains the raw weather values used for scoring.
// Field names follow the weatherapi.com "current" payload.
//
//nolint:tagliatelle // external api naming
type WeatherObservation struct {
	TempC     float64 `json:"temp_c"`
	WindKph   float64 `json:"wind_kph"`
	PrecipMM  float64 `json:"precip_mm"`
	Humidity  float64 `json:"humidity"`
	Cloud     float64 `json:"cloud"`
	IsDay     int     `json:"is_day"`
	Condition struct {
		Text string `json:"text"`
		Icon string `json:"icon"`
	} `json:"condition"`
}

//nolint:tagliatelle // external api naming
type WeatherLocation struct {
	Name           string `json:"name"`
	Country        string `json:"country"`
	LocaltimeEpoch int64  `json:"localtime_epoch"`
	Localtime      string `json:"localtime"`
}

type WeatherReport struct {
	Location WeatherLocation    `json:"location"`
	Current  WeatherObservation `json:"current"`
}

// ValidateWeatherScore checks that score is within [0,99].
func ValidateWeatherScore(score int) error {
	if score < MinWeatherScore || score > MaxWeatherScore {
		return fmt.Errorf("%w: %d not in [%d,%d]",
			ErrWeatherOutOfRange, score, MinWeatherScore, MaxWeatherScore)
	}
	return nil
}
