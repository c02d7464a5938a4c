package logger

import "go.uber.org/zap"

// New returns a JSON production logger when environment is "production" and a
// console development logger otherwise.
func New(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
