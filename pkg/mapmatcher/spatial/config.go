package spatial

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	keyMaxHeadingOffset           = "MAX_HEADING_OFFSET_FROM_SEGMENT"
	keyMaxDistanceFromSegment     = "MAX_DISTANCE_FROM_SEGMENT"
	keyMaxAvlSpeed                = "MAX_AVL_SPEED"
	keyDistanceBetweenAvls        = "DISTANCE_BETWEEN_AVLS_FOR_INITIAL_MATCHING_WITHOUT_HEADING"
	keyDistanceFromEndOfBlock     = "DISTANCE_FROM_END_OF_BLOCK_FOR_INITIAL_MATCHING"
	keyDistanceFromLastStopForEnd = "DISTANCE_FROM_LAST_STOP_FOR_END_MATCHING"
)

// Config is read once at startup and shared read-only by every scan.
type Config struct {
	MaxHeadingOffsetFromSegment                         float64 `validate:"gte=0,lte=360"`
	MaxDistanceFromSegment                              float64 `validate:"gt=0"`
	MaxAvlSpeed                                         float64 `validate:"gt=0"`
	DistanceBetweenAvlsForInitialMatchingWithoutHeading float64 `validate:"gte=0"`
	DistanceFromEndOfBlockForInitialMatching            float64 `validate:"gte=0"`
	DistanceFromLastStopForEndMatching                  float64 `validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		MaxHeadingOffsetFromSegment:                         DEFAULT_MAX_HEADING_OFFSET_FROM_SEGMENT,
		MaxDistanceFromSegment:                              DEFAULT_MAX_DISTANCE_FROM_SEGMENT,
		MaxAvlSpeed:                                         DEFAULT_MAX_AVL_SPEED,
		DistanceBetweenAvlsForInitialMatchingWithoutHeading: DEFAULT_DISTANCE_BETWEEN_AVLS_FOR_INITIAL_MATCHING_NO_HEADING,
		DistanceFromEndOfBlockForInitialMatching:            DEFAULT_DISTANCE_FROM_END_OF_BLOCK_FOR_INITIAL_MATCHING,
		DistanceFromLastStopForEndMatching:                  DEFAULT_DISTANCE_FROM_LAST_STOP_FOR_END_MATCHING,
	}
}

func SetConfigDefaults() {
	viper.SetDefault(keyMaxHeadingOffset, DEFAULT_MAX_HEADING_OFFSET_FROM_SEGMENT)
	viper.SetDefault(keyMaxDistanceFromSegment, DEFAULT_MAX_DISTANCE_FROM_SEGMENT)
	viper.SetDefault(keyMaxAvlSpeed, DEFAULT_MAX_AVL_SPEED)
	viper.SetDefault(keyDistanceBetweenAvls, DEFAULT_DISTANCE_BETWEEN_AVLS_FOR_INITIAL_MATCHING_NO_HEADING)
	viper.SetDefault(keyDistanceFromEndOfBlock, DEFAULT_DISTANCE_FROM_END_OF_BLOCK_FOR_INITIAL_MATCHING)
	viper.SetDefault(keyDistanceFromLastStopForEnd, DEFAULT_DISTANCE_FROM_LAST_STOP_FOR_END_MATCHING)
}

// NewConfigFromViper. SetConfigDefaults must be called before for unset keys to get their defaults.
func NewConfigFromViper() (Config, error) {
	cfg := Config{
		MaxHeadingOffsetFromSegment:                         viper.GetFloat64(keyMaxHeadingOffset),
		MaxDistanceFromSegment:                              viper.GetFloat64(keyMaxDistanceFromSegment),
		MaxAvlSpeed:                                         viper.GetFloat64(keyMaxAvlSpeed),
		DistanceBetweenAvlsForInitialMatchingWithoutHeading: viper.GetFloat64(keyDistanceBetweenAvls),
		DistanceFromEndOfBlockForInitialMatching:            viper.GetFloat64(keyDistanceFromEndOfBlock),
		DistanceFromLastStopForEndMatching:                  viper.GetFloat64(keyDistanceFromLastStopForEnd),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid spatial matcher config: %w", err)
	}
	return nil
}
