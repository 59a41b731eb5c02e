package config

import (
	"reflect"

	"github.com/flexprice/paycycle/internal/types"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// EventConfig holds configuration for event processing
type EventConfig struct {
	PublishDestination types.PublishDestination `mapstructure:"publish_destination" default:"memory"`
}

// decodeHooks keeps viper's default duration and slice hooks and adds decimal parsing
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		decimalHook(),
	)
}

// decimalHook lets money settings be written as plain numbers or strings in yaml and env
func decimalHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(v)
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		}
		return data, nil
	}
}
