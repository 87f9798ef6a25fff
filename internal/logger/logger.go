package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var level = zap.NewAtomicLevel()

// Init builds the global zap logger. "prod" gets the JSON production encoder,
// anything else the colored development console.
func Init(environment string) error {
	var conf zap.Config
	if environment == "prod" {
		conf = zap.NewProductionConfig()
	} else {
		conf = zap.NewDevelopmentConfig()
	}
	conf.Level = level

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("conf.Build() -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}

// SetLevel changes the level of the global logger without rebuilding it.
func SetLevel(lvl string) error {
	if lvl == "" {
		return nil
	}
	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		return fmt.Errorf("level.UnmarshalText() -> %w", err)
	}

	return nil
}
