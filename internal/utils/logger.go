package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the application logger. Development mode gives a
// human-readable console encoder, anything else the JSON production encoder.
func NewLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
